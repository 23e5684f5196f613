package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	count := len(users)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: list(users)})
}

// ToggleSuspension suspends an active user or reinstates a suspended one
func (h *Handler) ToggleSuspension(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User")
	if !ok {
		return
	}
	user, err := h.svc.ToggleSuspension(r.Context(), caller(r), id)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	flags, err := h.svc.ListFeatures(r.Context())
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, list(flags))
}

func (h *Handler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	var in service.FeatureInput
	if !h.decode(w, r, &in) {
		return
	}
	flag, err := h.svc.CreateFeature(r.Context(), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, flag)
}

func (h *Handler) UpdateFeature(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Feature")
	if !ok {
		return
	}
	var in service.FeatureInput
	if !h.decode(w, r, &in) {
		return
	}
	flag, err := h.svc.UpdateFeature(r.Context(), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, flag)
}

func (h *Handler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Feature")
	if !ok {
		return
	}
	if err := h.svc.DeleteFeature(r.Context(), id); err != nil {
		WriteError(w, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: "Feature removed"})
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.ListContacts(r.Context())
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	count := len(contacts)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Data: list(contacts)})
}
