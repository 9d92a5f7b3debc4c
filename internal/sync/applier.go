// applier.go — применение плана синхронизации к реестру.
// Весь план применяется в одной транзакции: частично применённый план
// не должен быть виден резолверу.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/datarepo/drs-registry/internal/domain/model"
	"github.com/datarepo/drs-registry/internal/repository"
	"github.com/datarepo/drs-registry/internal/sizefmt"
)

// ErrSyncFailed — применение плана прервано, транзакция откачена.
var ErrSyncFailed = errors.New("применение плана синхронизации прервано")

// txRunner — интерфейс запуска транзакций (реализуется repository.TxRunner).
type txRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// repoFactory строит репозитории поверх транзакции.
type repoFactory func(db repository.DBTX) (repository.BundleRepository, repository.FileRepository)

// PlanApplier применяет план синхронизации к реестру.
type PlanApplier struct {
	tx     txRunner
	repos  repoFactory
	logger *slog.Logger
}

// NewPlanApplier создаёт применитель плана.
func NewPlanApplier(tx *repository.TxRunner, logger *slog.Logger) *PlanApplier {
	return &PlanApplier{
		tx: tx,
		repos: func(db repository.DBTX) (repository.BundleRepository, repository.FileRepository) {
			return repository.NewBundleRepository(db), repository.NewFileRepository(db)
		},
		logger: logger.With(slog.String("component", "plan_applier")),
	}
}

// Apply применяет план в одной транзакции.
//
// Порядок операций подобран так, чтобы реестр оставался целостным
// на каждом шаге:
//  1. вставка новых датасетов (с предрассчитанными агрегатами);
//  2. вставка новых файлов;
//  3. удаление устаревших файлов;
//  4. удаление устаревших датасетов вместе с их файлами;
//  5. пересчёт агрегатов всех датасетов.
func (a *PlanApplier) Apply(ctx context.Context, plan *model.SyncPlan) error {
	if plan.Empty() {
		a.logger.Info("План пуст, изменения не требуются")
		return nil
	}

	err := a.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		bundles, files := a.repos(tx)

		// 1. Новые датасеты
		for i := range plan.DatasetsToAdd {
			d := &plan.DatasetsToAdd[i]
			record, err := a.bundleRecord(ctx, files, d, plan.FilesToAdd)
			if err != nil {
				return err
			}
			if err := bundles.Insert(ctx, record); err != nil {
				return fmt.Errorf("вставка датасета %s: %w", d.DatasetID, err)
			}
		}

		// 2. Новые файлы
		for i := range plan.FilesToAdd {
			f := &plan.FilesToAdd[i]
			record := &model.FileRecord{
				FileID:      f.FileID,
				DatasetID:   f.DatasetID,
				StoragePath: f.Path,
				Checksum:    f.Checksum,
				Size:        f.Size,
			}
			if err := files.Insert(ctx, record); err != nil {
				return fmt.Errorf("вставка файла %s: %w", f.FileID, err)
			}
		}

		// 3. Устаревшие файлы
		for _, fileID := range plan.FilesToDelete {
			if err := files.DeleteByFileID(ctx, fileID); err != nil {
				return fmt.Errorf("удаление файла %s: %w", fileID, err)
			}
		}

		// 4. Устаревшие датасеты: сначала их файлы, затем сама запись
		for _, datasetID := range plan.DatasetsToDelete {
			deleted, err := files.DeleteByDataset(ctx, datasetID)
			if err != nil {
				return fmt.Errorf("удаление файлов датасета %s: %w", datasetID, err)
			}
			if deleted > 0 {
				a.logger.Debug("Удалены файлы устаревшего датасета",
					slog.String("dataset_id", datasetID),
					slog.Int("files", deleted),
				)
			}
			if err := bundles.Delete(ctx, datasetID); err != nil {
				return fmt.Errorf("удаление датасета %s: %w", datasetID, err)
			}
		}

		// 5. Пересчёт агрегатов
		updated, err := bundles.RecomputeAggregates(ctx)
		if err != nil {
			return fmt.Errorf("пересчёт агрегатов: %w", err)
		}
		a.logger.Debug("Агрегаты пересчитаны", slog.Int("datasets", updated))

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	a.logger.Info("План применён",
		slog.Int("datasets_added", len(plan.DatasetsToAdd)),
		slog.Int("datasets_deleted", len(plan.DatasetsToDelete)),
		slog.Int("files_added", len(plan.FilesToAdd)),
		slog.Int("files_deleted", len(plan.FilesToDelete)),
	)

	return nil
}

// bundleRecord строит запись датасета с агрегатами на момент вставки:
// уже зарегистрированные файлы плюс файлы этого датасета из плана.
func (a *PlanApplier) bundleRecord(
	ctx context.Context,
	files repository.FileRepository,
	d *model.UpstreamDataset,
	filesToAdd []model.UpstreamFile,
) (*model.BundleRecord, error) {
	count, total, err := files.AggregateByDataset(ctx, d.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("агрегаты датасета %s: %w", d.DatasetID, err)
	}
	for i := range filesToAdd {
		if filesToAdd[i].DatasetID == d.DatasetID {
			count++
			total += filesToAdd[i].Size
		}
	}

	return &model.BundleRecord{
		DatasetID:   d.DatasetID,
		DisplayID:   d.DisplayID,
		PrettySize:  sizefmt.Format(total),
		CreatedAt:   d.PublishedAt,
		DatasetType: d.DatasetType,
		DOIURL:      d.DOIURL,
		GroupName:   d.GroupName,
		IsProtected: isProtected(d.RestrictedStudyURL),
		FileCount:   count,
	}, nil
}

// isProtected определяет защищённость датасета: ссылка на закрытое
// исследование в реестре dbGaP.
func isProtected(restrictedStudyURL *string) bool {
	return restrictedStudyURL != nil && strings.Contains(strings.ToLower(*restrictedStudyURL), "dbgap")
}
