// fetcher.go — параллельное получение перечней файлов из файлового каталога.
// Ограничение concurrency через семафор-канал. Ошибка одного датасета
// не прерывает прогон: датасет пропускается и попадает в отчёт ошибок.
package sync

import (
	"context"
	"log/slog"
	"sort"
	stdsync "sync"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// FileCatalogClient — интерфейс клиента файлового каталога.
type FileCatalogClient interface {
	// ListFiles возвращает перечень файлов датасета.
	// Датасет без файлов — (nil, nil).
	ListFiles(ctx context.Context, datasetID string) ([]model.UpstreamFile, error)
}

// FileFetcher — параллельный сборщик перечней файлов.
type FileFetcher struct {
	client      FileCatalogClient
	concurrency int
	logger      *slog.Logger
}

// NewFileFetcher создаёт сборщик.
// concurrency — максимум одновременных запросов к каталогу (DRS_SYNC_CONCURRENCY).
func NewFileFetcher(client FileCatalogClient, concurrency int, logger *slog.Logger) *FileFetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FileFetcher{
		client:      client,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "file_fetcher")),
	}
}

// FetchAll запрашивает файлы всех датасетов.
// Возвращает объединённый перечень файлов и ошибки по датасетам.
// Результат отсортирован по FileID, ошибки — по DatasetID.
func (f *FileFetcher) FetchAll(ctx context.Context, datasets []model.UpstreamDataset) ([]model.UpstreamFile, []model.FetchError) {
	// Ограничение concurrency
	sem := make(chan struct{}, f.concurrency)

	var mu stdsync.Mutex
	var files []model.UpstreamFile
	var fetchErrors []model.FetchError

	var wg stdsync.WaitGroup
	for _, d := range datasets {
		wg.Add(1)
		go func(datasetID string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			datasetFiles, err := f.client.ListFiles(ctx, datasetID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.logger.Warn("Не удалось получить перечень файлов датасета",
					slog.String("dataset_id", datasetID),
					slog.String("error", err.Error()),
				)
				fetchErrors = append(fetchErrors, model.FetchError{
					DatasetID: datasetID,
					Message:   err.Error(),
				})
				return
			}
			files = append(files, datasetFiles...)
		}(d.DatasetID)
	}
	wg.Wait()

	sort.Slice(files, func(i, j int) bool { return files[i].FileID < files[j].FileID })
	sort.Slice(fetchErrors, func(i, j int) bool { return fetchErrors[i].DatasetID < fetchErrors[j].DatasetID })

	f.logger.Info("Перечни файлов получены",
		slog.Int("datasets", len(datasets)),
		slog.Int("files", len(files)),
		slog.Int("errors", len(fetchErrors)),
	)

	return files, fetchErrors
}
