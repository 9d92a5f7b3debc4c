// Пакет sync — сверка реестра с внешними каталогами.
// engine.go — построение плана синхронизации: чистая теоретико-множественная
// разность между состоянием каталогов и локальным реестром.
package sync

import (
	"sort"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// BuildPlan сравнивает состояние каталогов с локальным реестром и
// возвращает план изменений.
//
// Правила:
//   - датасет каталога, отсутствующий в реестре, — в DatasetsToAdd;
//   - датасет реестра, отсутствующий в каталоге, — в DatasetsToDelete;
//   - аналогично для файлов по FileID.
//
// Сравнение идёт только по идентификаторам: изменение метаданных
// существующей записи план не порождает. Срезы результата отсортированы
// для детерминированных отчётов.
func BuildPlan(
	upstreamDatasets []model.UpstreamDataset,
	upstreamFiles []model.UpstreamFile,
	localDatasetIDs []string,
	localFileIDs []string,
) *model.SyncPlan {
	plan := &model.SyncPlan{}

	localDatasets := toSet(localDatasetIDs)
	localFiles := toSet(localFileIDs)

	upstreamDatasetIDs := make(map[string]struct{}, len(upstreamDatasets))
	for _, d := range upstreamDatasets {
		upstreamDatasetIDs[d.DatasetID] = struct{}{}
		if _, ok := localDatasets[d.DatasetID]; !ok {
			plan.DatasetsToAdd = append(plan.DatasetsToAdd, d)
		}
	}

	upstreamFileIDs := make(map[string]struct{}, len(upstreamFiles))
	for _, f := range upstreamFiles {
		upstreamFileIDs[f.FileID] = struct{}{}
		if _, ok := localFiles[f.FileID]; !ok {
			plan.FilesToAdd = append(plan.FilesToAdd, f)
		}
	}

	for _, id := range localDatasetIDs {
		if _, ok := upstreamDatasetIDs[id]; !ok {
			plan.DatasetsToDelete = append(plan.DatasetsToDelete, id)
		}
	}

	for _, id := range localFileIDs {
		if _, ok := upstreamFileIDs[id]; !ok {
			plan.FilesToDelete = append(plan.FilesToDelete, id)
		}
	}

	sort.Slice(plan.DatasetsToAdd, func(i, j int) bool {
		return plan.DatasetsToAdd[i].DatasetID < plan.DatasetsToAdd[j].DatasetID
	})
	sort.Slice(plan.FilesToAdd, func(i, j int) bool {
		return plan.FilesToAdd[i].FileID < plan.FilesToAdd[j].FileID
	})
	sort.Strings(plan.DatasetsToDelete)
	sort.Strings(plan.FilesToDelete)

	return plan
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
