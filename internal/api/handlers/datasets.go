// datasets.go — служебный endpoint перечня датасетов.
// GET /datasets — JSON-массив идентификаторов зарегистрированных датасетов.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/datarepo/drs-registry/internal/api/errors"
)

// ListDatasets — отсортированный список идентификаторов датасетов.
func (h *APIHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ids, err := h.resolver.ListDatasetIDs(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка датасетов",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	// Пустой реестр — пустой массив, не null
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}
