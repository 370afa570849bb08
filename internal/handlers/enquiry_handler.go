package handlers

import (
	"net/http"

	"itemViewerBack/internal/models"
	"itemViewerBack/internal/services"
)

type EnquiryHandler struct {
	Store   *services.ItemStore
	Service *services.EnquiryService
}

func (h *EnquiryHandler) SendEnquiry(w http.ResponseWriter, r *http.Request) {
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

	result := h.Service.HandleEnquiry(r.Context(), item)
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
