// Точка входа drs-server — HTTP-сервер разрешения DRS-идентификаторов.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает репозитории, кэш и резолвер, запускает мониторинг зависимостей
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/datarepo/drs-registry/internal/api/handlers"
	"github.com/datarepo/drs-registry/internal/api/middleware"
	"github.com/datarepo/drs-registry/internal/config"
	"github.com/datarepo/drs-registry/internal/database"
	"github.com/datarepo/drs-registry/internal/repository"
	"github.com/datarepo/drs-registry/internal/server"
	"github.com/datarepo/drs-registry/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("drs-server запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("domain", cfg.Domain),
	)

	if os.Getenv("DRS_DEPHEALTH_GROUP") == "" {
		logger.Warn("DRS_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	bundleRepo := repository.NewBundleRepository(pool)
	fileRepo := repository.NewFileRepository(pool)

	// 6. Кэш и резолвер
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	accessURL := service.NewAccessURLBuilder(cfg.AccessDomain)
	resolver := service.NewResolverService(
		bundleRepo, fileRepo, cache, accessURL,
		cfg.Domain, cfg.ChecksumType,
		logger,
	)

	// 7. Handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool))
	apiHandler := handlers.NewAPIHandler(resolver, healthHandler, logger)

	// 8. Мониторинг зависимостей (topologymetrics)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"drs-server",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DatasetCatalogURL,
		cfg.FileCatalogURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("Мониторинг зависимостей не инициализирован",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Мониторинг зависимостей не запущен", slog.String("error", startErr.Error()))
		} else {
			defer dephealthSvc.Stop()
			logger.Info("Мониторинг зависимостей запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 9. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 10. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("drs-server остановлен")
}
