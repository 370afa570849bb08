package handlers

import (
	"net/http"

	"itemViewerBack/internal/services"
)

type HealthHandler struct {
	Store *services.ItemStore
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	state := h.Store.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"mode":    state.Mode,
		"loading": state.Loading,
		"warning": state.Warning,
	})
}
