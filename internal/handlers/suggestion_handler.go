package handlers

import (
	"net/http"

	"itemViewerBack/internal/models"
	"itemViewerBack/internal/services"
)

type SuggestionHandler struct {
	Store   *services.ItemStore
	Service *services.SuggestionService
}

func (h *SuggestionHandler) GetOutfitSuggestions(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		http.Error(w, "Missing item ID", http.StatusBadRequest)
		return
	}

	item, ok := h.Store.LookupByID(id)
	if !ok {
		http.Error(w, models.ErrItemNotFound.Error(), http.StatusNotFound)
		return
	}

	result := h.Service.GetOutfitSuggestions(r.Context(), item, h.Store.Items())
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
