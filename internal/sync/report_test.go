package sync

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

func readCSV(t *testing.T, dir, name string) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("открытие отчёта %s: %v", name, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("чтение отчёта %s: %v", name, err)
	}
	return rows
}

// TestWriteReports проверяет содержимое всех пяти отчётов.
func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	reporter := NewReporter(dir, testFetcherLogger())

	doi := "https://doi.org/10.0001/x"
	restricted := "https://www.ncbi.nlm.nih.gov/dbGaP/study?id=phs000001"
	plan := &model.SyncPlan{
		DatasetsToAdd: []model.UpstreamDataset{{
			DatasetID:          "ds-1",
			DisplayID:          "DATA.0001",
			DatasetType:        "RNAseq",
			DOIURL:             &doi,
			GroupName:          "Example Lab",
			RestrictedStudyURL: &restricted,
			PublishedAt:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
		FilesToAdd: []model.UpstreamFile{
			{
				FileID:    "f-1",
				DatasetID: "ds-1",
				Path:      "ns/i/a.txt",
				Checksum:  "abc",
				Size:      2048,
			},
			{
				FileID:    "f-2",
				DatasetID: "ds-1",
				Path:      "ns/i/b.txt",
				Checksum:  "def",
				Size:      1046528,
			},
		},
		DatasetsToDelete: []string{"ds-stale"},
		FilesToDelete:    []string{"f-stale"},
	}
	fetchErrors := []model.FetchError{{DatasetID: "ds-bad", Message: "каталог недоступен"}}

	if err := reporter.WriteReports(plan, fetchErrors); err != nil {
		t.Fatalf("WriteReports ошибка: %v", err)
	}

	manifest := readCSV(t, dir, "manifest.csv")
	if len(manifest) != 2 {
		t.Fatalf("manifest.csv: %d строк, ожидалось 2", len(manifest))
	}
	wantHeader := []string{"dataset_id", "display_id", "dataset_type", "doi_url", "group_name", "restricted_study_url", "published_at", "pretty_size", "file_count", "is_protected"}
	if !reflect.DeepEqual(manifest[0], wantHeader) {
		t.Errorf("manifest.csv заголовок = %v, ожидался %v", manifest[0], wantHeader)
	}
	wantRow := []string{"ds-1", "DATA.0001", "RNAseq", doi, "Example Lab", restricted, "2024-03-01 12:00:00", "1.0M", "2", "true"}
	if !reflect.DeepEqual(manifest[1], wantRow) {
		t.Errorf("manifest.csv строка = %v, ожидалась %v", manifest[1], wantRow)
	}

	files := readCSV(t, dir, "files.csv")
	if len(files) != 3 || !reflect.DeepEqual(files[1], []string{"f-1", "ds-1", "ns/i/a.txt", "abc", "2048"}) {
		t.Errorf("files.csv = %v", files)
	}

	datasetsToDelete := readCSV(t, dir, "datasets_to_delete.csv")
	if len(datasetsToDelete) != 2 || datasetsToDelete[1][0] != "ds-stale" {
		t.Errorf("datasets_to_delete.csv = %v", datasetsToDelete)
	}

	filesToDelete := readCSV(t, dir, "files_to_delete.csv")
	if len(filesToDelete) != 2 || filesToDelete[1][0] != "f-stale" {
		t.Errorf("files_to_delete.csv = %v", filesToDelete)
	}

	errReport := readCSV(t, dir, "fetch_errors.csv")
	if len(errReport) != 2 || !reflect.DeepEqual(errReport[1], []string{"ds-bad", "каталог недоступен"}) {
		t.Errorf("fetch_errors.csv = %v", errReport)
	}
}

// TestWriteReportsEmptyPlan: пустой план — отчёты из одних заголовков.
func TestWriteReportsEmptyPlan(t *testing.T) {
	dir := t.TempDir()
	reporter := NewReporter(dir, testFetcherLogger())

	if err := reporter.WriteReports(&model.SyncPlan{}, nil); err != nil {
		t.Fatalf("WriteReports ошибка: %v", err)
	}

	for _, name := range []string{
		"manifest.csv", "files.csv", "datasets_to_delete.csv", "files_to_delete.csv", "fetch_errors.csv",
	} {
		rows := readCSV(t, dir, name)
		if len(rows) != 1 {
			t.Errorf("%s: %d строк, ожидался только заголовок", name, len(rows))
		}
	}
}

// TestWriteReportsBadDir: несуществующий каталог — ошибка.
func TestWriteReportsBadDir(t *testing.T) {
	reporter := NewReporter("/несуществующий/каталог", testFetcherLogger())

	if err := reporter.WriteReports(&model.SyncPlan{}, nil); err == nil {
		t.Fatal("ожидалась ошибка записи в несуществующий каталог")
	}
}
