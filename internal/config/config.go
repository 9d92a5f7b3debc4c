// Пакет config — загрузка и валидация конфигурации DRS Registry
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации DRS Registry.
// Общие секции (сервер, БД, логирование) используются обоими бинарями;
// секция каталогов и синхронизации — только drs-sync.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration
	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- DRS ---

	// Domain — домен self_uri (drs://<Domain>/<id>)
	Domain string
	// AccessDomain — домен публичных access URL (https://<AccessDomain>/...)
	AccessDomain string
	// ChecksumType — алгоритм контрольных сумм, фиксированный для деплоймента
	ChecksumType string

	// --- Кэш метаданных ---

	// CacheSize — максимальное количество записей LRU-кэша
	CacheSize int
	// CacheTTL — время жизни записи кэша
	CacheTTL time.Duration

	// --- Каталоги-источники (drs-sync) ---

	// DatasetCatalogURL — endpoint bulk-запроса каталога датасетов
	DatasetCatalogURL string
	// FileCatalogURL — базовый URL файлового каталога
	FileCatalogURL string
	// CatalogToken — bearer-токен для запросов к каталогам (опционально)
	CatalogToken string
	// DatasetCatalogTimeout — таймаут bulk-запроса (по умолчанию 60s)
	DatasetCatalogTimeout time.Duration
	// FileCatalogTimeout — таймаут запроса списка файлов датасета (по умолчанию 30s)
	FileCatalogTimeout time.Duration

	// --- Синхронизация ---

	// SyncConcurrency — предел параллельных запросов списков файлов
	SyncConcurrency int
	// ReportDir — каталог для CSV-отчётов и лога ошибок прогона
	ReportDir string

	// --- Dephealth (topologymetrics) ---

	// DephealthGroup — имя группы в метриках зависимостей
	DephealthGroup string
	// DephealthCheckInterval — интервал проверки зависимостей
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// DRS_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("DRS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DRS_PORT: %w", err)
	}

	// DRS_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("DRS_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("DRS_LOG_LEVEL: %w", err)
	}

	// DRS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DRS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DRS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("DRS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("DRS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("DRS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("DRS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// DRS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("DRS_DB_HOST")
	if err != nil {
		return nil, err
	}

	// DRS_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("DRS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("DRS_DB_PORT: %w", err)
	}

	// DRS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("DRS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// DRS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("DRS_DB_USER")
	if err != nil {
		return nil, err
	}

	// DRS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("DRS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// DRS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("DRS_DB_SSL_MODE", "disable")
	switch cfg.DBSSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return nil, fmt.Errorf("DRS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- DRS ---

	// DRS_DOMAIN — домен self_uri, обязательный
	cfg.Domain, err = getEnvRequired("DRS_DOMAIN")
	if err != nil {
		return nil, err
	}

	// DRS_ACCESS_DOMAIN — домен access URL, обязательный
	cfg.AccessDomain, err = getEnvRequired("DRS_ACCESS_DOMAIN")
	if err != nil {
		return nil, err
	}

	// DRS_CHECKSUM_TYPE — алгоритм контрольных сумм (по умолчанию md5)
	cfg.ChecksumType = getEnvDefault("DRS_CHECKSUM_TYPE", "md5")

	// --- Кэш ---

	cfg.CacheSize, err = getEnvInt("DRS_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("DRS_CACHE_SIZE: %w", err)
	}
	cfg.CacheTTL, err = getEnvDuration("DRS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DRS_CACHE_TTL: %w", err)
	}

	// --- Каталоги-источники ---

	cfg.DatasetCatalogURL = getEnvDefault("DRS_DATASET_CATALOG_URL", "")
	cfg.FileCatalogURL = getEnvDefault("DRS_FILE_CATALOG_URL", "")
	cfg.CatalogToken = getEnvDefault("DRS_CATALOG_TOKEN", "")

	cfg.DatasetCatalogTimeout, err = getEnvDuration("DRS_DATASET_CATALOG_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_DATASET_CATALOG_TIMEOUT: %w", err)
	}
	cfg.FileCatalogTimeout, err = getEnvDuration("DRS_FILE_CATALOG_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_FILE_CATALOG_TIMEOUT: %w", err)
	}

	// --- Синхронизация ---

	cfg.SyncConcurrency, err = getEnvInt("DRS_SYNC_CONCURRENCY", 5)
	if err != nil {
		return nil, fmt.Errorf("DRS_SYNC_CONCURRENCY: %w", err)
	}
	if cfg.SyncConcurrency < 1 {
		return nil, fmt.Errorf("DRS_SYNC_CONCURRENCY: значение должно быть >= 1")
	}
	cfg.ReportDir = getEnvDefault("DRS_REPORT_DIR", ".")

	// --- Dephealth ---

	cfg.DephealthGroup = getEnvDefault("DRS_DEPHEALTH_GROUP", "drs")
	cfg.DephealthCheckInterval, err = getEnvDuration("DRS_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DRS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// RequireCatalogs проверяет, что параметры каталогов-источников заданы.
// Вызывается только drs-sync — сервер разрешения каталоги не использует.
func (c *Config) RequireCatalogs() error {
	if c.DatasetCatalogURL == "" {
		return fmt.Errorf("DRS_DATASET_CATALOG_URL: обязательная переменная окружения не задана")
	}
	if c.FileCatalogURL == "" {
		return fmt.Errorf("DRS_FILE_CATALOG_URL: обязательная переменная окружения не задана")
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения без пароля (для dephealth-лейблов).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
