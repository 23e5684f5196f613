package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

// SubmitContact stores a contact form message
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.SubmitContact(r.Context(), in); err != nil {
		WriteError(w, h.log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: "Message received!"})
}

// CurrencyRates serves ?base=USD
func (h *Handler) CurrencyRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.svc.CurrencyRates(r.Context(), r.URL.Query().Get("base"))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, rates)
}
