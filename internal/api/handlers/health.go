// health.go — liveness/readiness зонды и Prometheus endpoint.
// Единственная жёсткая зависимость сервера разрешения — PostgreSQL,
// поэтому readiness сводится к состоянию пула соединений: каталоги
// нужны только прогону синхронизации и на готовность не влияют.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datarepo/drs-registry/internal/config"
)

// Имя сервиса в ответах зондов.
const serviceName = "drs-server"

// Статусы зависимостей.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// ReadinessChecker — проверка готовности пула PostgreSQL.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	db          ReadinessChecker
	started     time.Time
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// db — проверка PostgreSQL (nil — readiness всегда "fail").
func NewHealthHandler(db ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		db:          db,
		started:     time.Now(),
		promHandler: promhttp.Handler(),
	}
}

// databaseStatus — состояние пула PostgreSQL в ответе readiness.
type databaseStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// livenessResponse — ответ liveness probe.
type livenessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// readinessResponse — ответ readiness probe.
type readinessResponse struct {
	Status   string         `json:"status"`
	Service  string         `json:"service"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// HealthLive — liveness probe. Возвращает 200, пока процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := livenessResponse{
		Status:  statusOK,
		Service: serviceName,
		Version: config.Version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe.
// Итоговый статус повторяет статус PostgreSQL: без реестра сервер
// не может разрешить ни один объект. 503 только при "fail",
// "degraded" остаётся 200 — пул ещё отвечает.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := readinessResponse{
		Service: serviceName,
		Version: config.Version,
	}

	if h.db != nil {
		status, msg := h.db.CheckReady()
		resp.Database = databaseStatus{Status: status, Message: msg}
	} else {
		resp.Database = databaseStatus{Status: statusFail, Message: "пул не инициализирован"}
	}
	resp.Status = resp.Database.Status

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == statusFail {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
