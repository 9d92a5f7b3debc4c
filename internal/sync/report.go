// report.go — CSV-отчёты прогона синхронизации.
// Отчёты пишутся до применения плана: в dry-run режиме они —
// единственный результат прогона, а при сбое применения остаются
// материалом для разбора.
package sync

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/sizefmt"
)

// Имена файлов отчётов.
const (
	reportDatasetsToAdd    = "manifest.csv"
	reportFilesToAdd       = "files.csv"
	reportDatasetsToDelete = "datasets_to_delete.csv"
	reportFilesToDelete    = "files_to_delete.csv"
	reportFetchErrors      = "fetch_errors.csv"
)

// Reporter пишет CSV-отчёты плана синхронизации.
type Reporter struct {
	dir    string
	logger *slog.Logger
}

// NewReporter создаёт генератор отчётов.
// dir — каталог для CSV-файлов (DRS_REPORT_DIR).
func NewReporter(dir string, logger *slog.Logger) *Reporter {
	return &Reporter{
		dir:    dir,
		logger: logger.With(slog.String("component", "sync_reporter")),
	}
}

// WriteReports записывает все отчёты плана.
// Файлы перезаписываются при каждом прогоне.
func (r *Reporter) WriteReports(plan *model.SyncPlan, fetchErrors []model.FetchError) error {
	if err := r.writeDatasetsToAdd(plan.DatasetsToAdd, plan.FilesToAdd); err != nil {
		return err
	}
	if err := r.writeFilesToAdd(plan.FilesToAdd); err != nil {
		return err
	}
	if err := r.writeIDList(reportDatasetsToDelete, "dataset_id", plan.DatasetsToDelete); err != nil {
		return err
	}
	if err := r.writeIDList(reportFilesToDelete, "file_id", plan.FilesToDelete); err != nil {
		return err
	}
	if err := r.writeFetchErrors(fetchErrors); err != nil {
		return err
	}

	r.logger.Info("Отчёты записаны",
		slog.String("dir", r.dir),
		slog.Int("datasets_to_add", len(plan.DatasetsToAdd)),
		slog.Int("files_to_add", len(plan.FilesToAdd)),
		slog.Int("datasets_to_delete", len(plan.DatasetsToDelete)),
		slog.Int("files_to_delete", len(plan.FilesToDelete)),
		slog.Int("fetch_errors", len(fetchErrors)),
	)

	return nil
}

// writeDatasetsToAdd — отчёт по добавляемым датасетам.
// Агрегаты (число файлов и человекочитаемый размер) считаются по файлам
// плана: на момент отчёта датасета в реестре ещё нет.
func (r *Reporter) writeDatasetsToAdd(datasets []model.UpstreamDataset, files []model.UpstreamFile) error {
	counts := make(map[string]int, len(datasets))
	totals := make(map[string]int64, len(datasets))
	for i := range files {
		counts[files[i].DatasetID]++
		totals[files[i].DatasetID] += files[i].Size
	}

	rows := make([][]string, 0, len(datasets))
	for _, d := range datasets {
		rows = append(rows, []string{
			d.DatasetID,
			d.DisplayID,
			d.DatasetType,
			strDeref(d.DOIURL),
			d.GroupName,
			strDeref(d.RestrictedStudyURL),
			d.PublishedAt.UTC().Format("2006-01-02 15:04:05"),
			sizefmt.Format(totals[d.DatasetID]),
			strconv.Itoa(counts[d.DatasetID]),
			strconv.FormatBool(isProtected(d.RestrictedStudyURL)),
		})
	}
	header := []string{"dataset_id", "display_id", "dataset_type", "doi_url", "group_name", "restricted_study_url", "published_at", "pretty_size", "file_count", "is_protected"}
	return r.writeCSV(reportDatasetsToAdd, header, rows)
}

// writeFilesToAdd — отчёт по добавляемым файлам.
func (r *Reporter) writeFilesToAdd(files []model.UpstreamFile) error {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.FileID,
			f.DatasetID,
			f.Path,
			f.Checksum,
			strconv.FormatInt(f.Size, 10),
		})
	}
	header := []string{"file_id", "dataset_id", "storage_path", "checksum", "size"}
	return r.writeCSV(reportFilesToAdd, header, rows)
}

// writeIDList — одностолбцовый отчёт из идентификаторов.
func (r *Reporter) writeIDList(name, column string, ids []string) error {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id})
	}
	return r.writeCSV(name, []string{column}, rows)
}

// writeFetchErrors — отчёт по датасетам, пропущенным из-за ошибок каталога.
func (r *Reporter) writeFetchErrors(fetchErrors []model.FetchError) error {
	rows := make([][]string, 0, len(fetchErrors))
	for _, e := range fetchErrors {
		rows = append(rows, []string{e.DatasetID, e.Message})
	}
	return r.writeCSV(reportFetchErrors, []string{"dataset_id", "error"}, rows)
}

// writeCSV записывает один CSV-файл с заголовком.
func (r *Reporter) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(r.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание отчёта %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("запись заголовка %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("запись отчёта %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("запись отчёта %s: %w", path, err)
	}

	return nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
