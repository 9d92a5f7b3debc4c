// Точка входа drs-sync — утилита сверки реестра с внешними каталогами.
// По умолчанию выполняет dry-run: строит план и пишет CSV-отчёты.
// С флагом -execute применяет план к реестру в одной транзакции.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/datarepo/drs-registry/internal/catalog"
	"github.com/datarepo/drs-registry/internal/config"
	"github.com/datarepo/drs-registry/internal/database"
	"github.com/datarepo/drs-registry/internal/repository"
	"github.com/datarepo/drs-registry/internal/sync"
)

func main() {
	execute := flag.Bool("execute", false, "применить план к реестру (без флага — dry-run)")
	flag.Parse()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.RequireCatalogs(); err != nil {
		slog.Error("Ошибка конфигурации каталогов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("drs-sync запускается",
		slog.String("version", config.Version),
		slog.Bool("execute", *execute),
	)

	// 3. Подключение к PostgreSQL (миграции применяет drs-server)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4. Клиенты каталогов
	datasetCatalog := catalog.NewDatasetCatalogClient(
		cfg.DatasetCatalogURL, cfg.CatalogToken, cfg.DatasetCatalogTimeout, logger)
	fileCatalog := catalog.NewFileCatalogClient(
		cfg.FileCatalogURL, cfg.CatalogToken, cfg.FileCatalogTimeout, logger)

	// 5. Сервис синхронизации
	bundleRepo := repository.NewBundleRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	fetcher := sync.NewFileFetcher(fileCatalog, cfg.SyncConcurrency, logger)
	applier := sync.NewPlanApplier(repository.NewTxRunner(pool), logger)
	reporter := sync.NewReporter(cfg.ReportDir, logger)

	svc := sync.NewService(datasetCatalog, fetcher, bundleRepo, fileRepo, applier, reporter, logger)

	// 6. Прогон
	result, err := svc.Run(ctx, *execute)
	if err != nil {
		logger.Error("Прогон синхронизации завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Итог прогона",
		slog.String("run_id", result.RunID),
		slog.Bool("dry_run", result.DryRun),
		slog.Int("datasets_added", result.DatasetsAdded),
		slog.Int("datasets_deleted", result.DatasetsDeleted),
		slog.Int("files_added", result.FilesAdded),
		slog.Int("files_deleted", result.FilesDeleted),
		slog.Int("fetch_errors", len(result.FetchErrors)),
	)

	// Ошибки каталога не фатальны для прогона, но заметны в коде возврата
	if len(result.FetchErrors) > 0 {
		os.Exit(2)
	}
}
