// handler.go — основной обработчик API сервера разрешения.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/datarepo/drs-registry/internal/domain/model"
)

// ObjectResolver — интерфейс сервиса разрешения идентификаторов.
type ObjectResolver interface {
	Resolve(ctx context.Context, objectID string) (*model.DRSObject, error)
	ResolveAccessURL(ctx context.Context, objectID, method string) (string, error)
	ListDatasetIDs(ctx context.Context) ([]string, error)
}

// APIHandler — основной обработчик API.
type APIHandler struct {
	resolver ObjectResolver
	health   *HealthHandler
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	resolver ObjectResolver,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		resolver: resolver,
		health:   health,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
