// objects.go — обработчики DRS endpoints.
// GET /ga4gh/drs/v1/objects/{object_id} — разрешение идентификатора
// GET /ga4gh/drs/v1/objects/{object_id}/access/{access_method} — URL доступа
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/datarepo/drs-registry/internal/api/errors"
	"github.com/datarepo/drs-registry/internal/service"
)

// GetObject — разрешение DRS-идентификатора в объект или бандл.
func (h *APIHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	objectID := chi.URLParam(r, "object_id")
	if objectID == "" {
		apierrors.ValidationError(w, "Идентификатор объекта не указан")
		return
	}

	obj, err := h.resolver.Resolve(r.Context(), objectID)
	if err != nil {
		h.writeResolveError(w, r, objectID, err)
		return
	}

	writeJSON(w, http.StatusOK, obj)
}

// GetObjectAccess — URL доступа к объекту по методу доступа.
// Ответ: {"url": "https://..."}.
func (h *APIHandler) GetObjectAccess(w http.ResponseWriter, r *http.Request) {
	objectID := chi.URLParam(r, "object_id")
	method := chi.URLParam(r, "access_method")
	if objectID == "" || method == "" {
		apierrors.ValidationError(w, "Идентификатор объекта или метод доступа не указан")
		return
	}

	url, err := h.resolver.ResolveAccessURL(r.Context(), objectID, method)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedAccessMethod) {
			apierrors.UnsupportedAccessMethod(w, "Unsupported access method.")
			return
		}
		h.writeResolveError(w, r, objectID, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// writeResolveError сопоставляет ошибки резолвера с HTTP-ответами.
func (h *APIHandler) writeResolveError(w http.ResponseWriter, r *http.Request, objectID string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "No object found.")
	case errors.Is(err, service.ErrIntegrityViolation):
		apierrors.IntegrityViolation(w, "More than one object found.")
	default:
		h.logger.Error("Ошибка разрешения идентификатора",
			slog.String("object_id", objectID),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
