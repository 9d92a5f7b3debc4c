package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubReadiness — заглушка проверки пула PostgreSQL.
type stubReadiness struct {
	status  string
	message string
}

func (s *stubReadiness) CheckReady() (string, string) { return s.status, s.message }

// TestHealthLive: liveness всегда 200, пока процесс жив.
func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}

	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Uptime  string `json:"uptime"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "drs-server" {
		t.Errorf("ответ = %+v", resp)
	}
	if resp.Uptime == "" {
		t.Error("uptime пуст")
	}
}

// TestHealthReady: итоговый статус повторяет статус PostgreSQL,
// 503 только при "fail".
func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checker    ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "пул доступен",
			checker:    &stubReadiness{status: "ok"},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "пул деградировал",
			checker:    &stubReadiness{status: "degraded", message: "мало соединений"},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "пул недоступен",
			checker:    &stubReadiness{status: "fail", message: "connection refused"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
		{
			name:       "проверка не задана",
			checker:    nil,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checker)

			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("статус = %d, ожидался %d", rec.Code, tt.wantCode)
			}

			var resp struct {
				Status   string `json:"status"`
				Database struct {
					Status string `json:"status"`
				} `json:"database"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("разбор ответа: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидался %q", resp.Status, tt.wantStatus)
			}
			if resp.Database.Status != tt.wantStatus {
				t.Errorf("database.status = %q, ожидался %q", resp.Database.Status, tt.wantStatus)
			}
		})
	}
}
