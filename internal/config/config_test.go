package config

import (
	"log/slog"
	"testing"
	"time"
)

// setRequiredEnv задаёт минимальный набор обязательных переменных.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DRS_DB_HOST", "localhost")
	t.Setenv("DRS_DB_NAME", "drs")
	t.Setenv("DRS_DB_USER", "drs")
	t.Setenv("DRS_DB_PASSWORD", "secret")
	t.Setenv("DRS_DOMAIN", "drs.example.org")
	t.Setenv("DRS_ACCESS_DOMAIN", "files.example.org")
}

// TestLoad_Defaults проверяет значения по умолчанию.
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидался 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидался info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидался json", cfg.LogFormat)
	}
	if cfg.ChecksumType != "md5" {
		t.Errorf("ChecksumType = %q, ожидался md5", cfg.ChecksumType)
	}
	if cfg.SyncConcurrency != 5 {
		t.Errorf("SyncConcurrency = %d, ожидался 5", cfg.SyncConcurrency)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, ожидался 5m", cfg.CacheTTL)
	}
}

// TestLoad_MissingRequired проверяет ошибку при отсутствии обязательной переменной.
func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRS_DB_HOST", "")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при пустом DRS_DB_HOST")
	}
}

// TestLoad_InvalidLogLevel проверяет валидацию уровня логирования.
func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRS_LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при недопустимом DRS_LOG_LEVEL")
	}
}

// TestLoad_InvalidConcurrency проверяет валидацию предела параллелизма.
func TestLoad_InvalidConcurrency(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRS_SYNC_CONCURRENCY", "0")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка при DRS_SYNC_CONCURRENCY = 0")
	}
}

// TestRequireCatalogs проверяет обязательность URL каталогов для drs-sync.
func TestRequireCatalogs(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}
	if err := cfg.RequireCatalogs(); err == nil {
		t.Error("ожидалась ошибка при незаданных URL каталогов")
	}

	t.Setenv("DRS_DATASET_CATALOG_URL", "https://search.example.org/query")
	t.Setenv("DRS_FILE_CATALOG_URL", "https://files-api.example.org")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}
	if err := cfg.RequireCatalogs(); err != nil {
		t.Errorf("RequireCatalogs ошибка: %v", err)
	}
}

// TestDatabaseDSN проверяет сборку строки подключения.
func TestDatabaseDSN(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load ошибка: %v", err)
	}

	want := "host=localhost port=5432 dbname=drs user=drs password=secret sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN = %q, ожидалось %q", got, want)
	}
}
