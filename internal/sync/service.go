// service.go — оркестратор прогона синхронизации.
//
// Один прогон:
//  1. опрос каталога датасетов;
//  2. параллельное получение перечней файлов;
//  3. чтение идентификаторов локального реестра;
//  4. построение плана (BuildPlan);
//  5. запись CSV-отчётов;
//  6. применение плана (только при execute).
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/repository"
)

// Prometheus-метрики синхронизации.
var (
	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "drs_sync_duration_seconds",
		Help:    "Длительность прогона синхронизации реестра",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s … ~204s
	})

	syncChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drs_sync_changes_total",
		Help: "Количество изменений реестра при синхронизации",
	}, []string{"operation"}) // operation: datasets_added, datasets_deleted, files_added, files_deleted

	syncFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "drs_sync_fetch_errors_total",
		Help: "Количество датасетов, пропущенных из-за ошибок файлового каталога",
	})
)

// DatasetCatalogClient — интерфейс клиента каталога датасетов.
type DatasetCatalogClient interface {
	ListPublished(ctx context.Context) ([]model.UpstreamDataset, error)
}

// fileFetcher — интерфейс сборщика перечней файлов.
type fileFetcher interface {
	FetchAll(ctx context.Context, datasets []model.UpstreamDataset) ([]model.UpstreamFile, []model.FetchError)
}

// planApplier — интерфейс применителя плана.
type planApplier interface {
	Apply(ctx context.Context, plan *model.SyncPlan) error
}

// planReporter — интерфейс генератора отчётов.
type planReporter interface {
	WriteReports(plan *model.SyncPlan, fetchErrors []model.FetchError) error
}

// Service — оркестратор синхронизации реестра с каталогами.
type Service struct {
	datasetCatalog DatasetCatalogClient
	fetcher        fileFetcher
	bundles        repository.BundleRepository
	files          repository.FileRepository
	applier        planApplier
	reporter       planReporter
	logger         *slog.Logger
}

// NewService создаёт оркестратор синхронизации.
func NewService(
	datasetCatalog DatasetCatalogClient,
	fetcher *FileFetcher,
	bundles repository.BundleRepository,
	files repository.FileRepository,
	applier *PlanApplier,
	reporter *Reporter,
	logger *slog.Logger,
) *Service {
	return &Service{
		datasetCatalog: datasetCatalog,
		fetcher:        fetcher,
		bundles:        bundles,
		files:          files,
		applier:        applier,
		reporter:       reporter,
		logger:         logger.With(slog.String("component", "sync_service")),
	}
}

// Run выполняет один прогон синхронизации.
// execute=false — dry-run: план строится и попадает в отчёты,
// реестр не меняется.
func (s *Service) Run(ctx context.Context, execute bool) (*model.SyncResult, error) {
	result := &model.SyncResult{
		RunID:     uuid.NewString(),
		DryRun:    !execute,
		StartedAt: time.Now().UTC(),
	}
	logger := s.logger.With(slog.String("run_id", result.RunID))

	logger.Info("Прогон синхронизации начат", slog.Bool("dry_run", result.DryRun))

	// 1. Каталог датасетов
	datasets, err := s.datasetCatalog.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("опрос каталога датасетов: %w", err)
	}
	logger.Info("Каталог датасетов опрошен", slog.Int("datasets", len(datasets)))

	// 2. Перечни файлов
	files, fetchErrors := s.fetcher.FetchAll(ctx, datasets)
	result.FetchErrors = fetchErrors
	syncFetchErrorsTotal.Add(float64(len(fetchErrors)))

	// 3. Локальный реестр
	localDatasetIDs, err := s.bundles.ListDatasetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение датасетов реестра: %w", err)
	}
	localFileIDs, err := s.files.ListFileIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение файлов реестра: %w", err)
	}

	// 4. План
	plan := BuildPlan(datasets, files, localDatasetIDs, localFileIDs)

	// Датасеты с ошибками получения файлов пропускаются: они не
	// добавляются (состав неизвестен), а их локальные файлы не удаляются
	// (отсутствие в выборке — следствие ошибки, не удаления из каталога)
	if len(fetchErrors) > 0 {
		if err := s.excludeFailed(ctx, plan, fetchErrors); err != nil {
			return nil, err
		}
		logger.Warn("Часть датасетов пропущена из-за ошибок файлового каталога",
			slog.Int("skipped", len(fetchErrors)),
		)
	}

	logger.Info("План построен",
		slog.Int("datasets_to_add", len(plan.DatasetsToAdd)),
		slog.Int("datasets_to_delete", len(plan.DatasetsToDelete)),
		slog.Int("files_to_add", len(plan.FilesToAdd)),
		slog.Int("files_to_delete", len(plan.FilesToDelete)),
	)

	// 5. Отчёты
	if err := s.reporter.WriteReports(plan, fetchErrors); err != nil {
		return nil, fmt.Errorf("запись отчётов: %w", err)
	}

	// 6. Применение
	if execute {
		if err := s.applier.Apply(ctx, plan); err != nil {
			return nil, err
		}
		syncChangesTotal.WithLabelValues("datasets_added").Add(float64(len(plan.DatasetsToAdd)))
		syncChangesTotal.WithLabelValues("datasets_deleted").Add(float64(len(plan.DatasetsToDelete)))
		syncChangesTotal.WithLabelValues("files_added").Add(float64(len(plan.FilesToAdd)))
		syncChangesTotal.WithLabelValues("files_deleted").Add(float64(len(plan.FilesToDelete)))
	}

	result.DatasetsAdded = len(plan.DatasetsToAdd)
	result.DatasetsDeleted = len(plan.DatasetsToDelete)
	result.FilesAdded = len(plan.FilesToAdd)
	result.FilesDeleted = len(plan.FilesToDelete)
	result.CompletedAt = time.Now().UTC()

	syncDuration.Observe(result.CompletedAt.Sub(result.StartedAt).Seconds())

	logger.Info("Прогон синхронизации завершён",
		slog.Bool("dry_run", result.DryRun),
		slog.Int("datasets_added", result.DatasetsAdded),
		slog.Int("datasets_deleted", result.DatasetsDeleted),
		slog.Int("files_added", result.FilesAdded),
		slog.Int("files_deleted", result.FilesDeleted),
		slog.Int("fetch_errors", len(result.FetchErrors)),
		slog.Duration("duration", result.CompletedAt.Sub(result.StartedAt)),
	)

	return result, nil
}

// excludeFailed правит план для датасетов, по которым не удалось получить
// файлы: убирает их из добавлений и защищает их локальные файлы
// от удаления.
func (s *Service) excludeFailed(ctx context.Context, plan *model.SyncPlan, fetchErrors []model.FetchError) error {
	failed := make(map[string]struct{}, len(fetchErrors))
	for _, e := range fetchErrors {
		failed[e.DatasetID] = struct{}{}
	}

	kept := plan.DatasetsToAdd[:0]
	for _, d := range plan.DatasetsToAdd {
		if _, ok := failed[d.DatasetID]; !ok {
			kept = append(kept, d)
		}
	}
	plan.DatasetsToAdd = kept

	// Файлы пропущенных датасетов не попали в выборку каталога; без
	// защиты они были бы удалены как отсутствующие
	protected := make(map[string]struct{})
	for datasetID := range failed {
		records, err := s.files.ListByDataset(ctx, datasetID)
		if err != nil {
			return fmt.Errorf("файлы пропущенного датасета %s: %w", datasetID, err)
		}
		for _, r := range records {
			protected[r.FileID] = struct{}{}
		}
	}
	if len(protected) > 0 {
		keptFiles := plan.FilesToDelete[:0]
		for _, id := range plan.FilesToDelete {
			if _, ok := protected[id]; !ok {
				keptFiles = append(keptFiles, id)
			}
		}
		plan.FilesToDelete = keptFiles
	}

	return nil
}
