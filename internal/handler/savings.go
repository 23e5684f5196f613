package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

// ListSavings returns the caller's savings records with their count
func (h *Handler) ListSavings(w http.ResponseWriter, r *http.Request) {
	savings, err := h.svc.ListSavings(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	count := len(savings)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: list(savings)})
}

func (h *Handler) CreateSaving(w http.ResponseWriter, r *http.Request) {
	var in service.SavingInput
	if !h.decode(w, r, &in) {
		return
	}
	saving, err := h.svc.CreateSaving(r.Context(), caller(r), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, saving)
}

func (h *Handler) UpdateSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Saving")
	if !ok {
		return
	}
	var in service.SavingUpdateInput
	if !h.decode(w, r, &in) {
		return
	}
	saving, err := h.svc.UpdateSaving(r.Context(), caller(r), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, saving)
}

func (h *Handler) DeleteSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Saving")
	if !ok {
		return
	}
	if err := h.svc.DeleteSaving(r.Context(), caller(r), id); err != nil {
		WriteError(w, h.log, err)
		return
	}
	deleted(w)
}

func (h *Handler) SavingsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.SavingsSummary(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}
