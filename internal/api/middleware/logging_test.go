package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// logEntry разбирает последнюю запись JSON-лога.
func logEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("разбор записи лога %q: %v", buf.String(), err)
	}
	return entry
}

// TestRequestLoggerRouteParams: в запись лога попадают параметры
// DRS-маршрута и статус ответа.
func TestRequestLoggerRouteParams(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := chi.NewRouter()
	router.Use(RequestLogger(logger))
	router.Get("/ga4gh/drs/v1/objects/{object_id}/access/{access_method}",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ga4gh/drs/v1/objects/ds-1/access/https", nil))

	entry := logEntry(t, &buf)
	if entry["object_id"] != "ds-1" {
		t.Errorf("object_id = %v, ожидался ds-1", entry["object_id"])
	}
	if entry["access_method"] != "https" {
		t.Errorf("access_method = %v, ожидался https", entry["access_method"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v, ожидался 404", entry["status"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, ожидался WARN для 4xx", entry["level"])
	}
}

// TestRequestLoggerLevels: уровень записи зависит от статус-кода.
func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"успех", http.StatusOK, "INFO"},
		{"ошибка клиента", http.StatusConflict, "WARN"},
		{"ошибка сервера", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			router := chi.NewRouter()
			router.Use(RequestLogger(logger))
			router.Get("/datasets", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("[]"))
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets", nil))

			entry := logEntry(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, ожидался %s", entry["level"], tt.wantLevel)
			}
			if entry["bytes"] != float64(2) {
				t.Errorf("bytes = %v, ожидалось 2", entry["bytes"])
			}
			if _, ok := entry["object_id"]; ok {
				t.Error("object_id не должен попадать в запись без параметра маршрута")
			}
		})
	}
}
