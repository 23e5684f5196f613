package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}
	token, err := h.svc.Register(r.Context(), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !h.decode(w, r, &in) {
		return
	}
	token, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Token: token})
}

// Me returns the caller's profile
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

type savingsBalance struct {
	Savings float64 `json:"savings"`
}

// Savings returns the caller's cached savings balance
func (h *Handler) Savings(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.UserSavings(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, savingsBalance{Savings: balance})
}

type adjustSavingsRequest struct {
	Amount float64 `json:"amount"`
}

// UpdateSavings moves the cached savings balance by a signed amount
func (h *Handler) UpdateSavings(w http.ResponseWriter, r *http.Request) {
	var in adjustSavingsRequest
	if !h.decode(w, r, &in) {
		return
	}
	balance, err := h.svc.AdjustUserSavings(r.Context(), caller(r), in.Amount)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, savingsBalance{Savings: balance})
}
