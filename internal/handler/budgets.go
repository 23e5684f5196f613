package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.ListBudgets(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, list(budgets))
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var in service.BudgetInput
	if !h.decode(w, r, &in) {
		return
	}
	budget, err := h.svc.CreateBudget(r.Context(), caller(r), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, budget)
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Budget")
	if !ok {
		return
	}
	var in service.BudgetInput
	if !h.decode(w, r, &in) {
		return
	}
	budget, err := h.svc.UpdateBudget(r.Context(), caller(r), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Budget")
	if !ok {
		return
	}
	if err := h.svc.DeleteBudget(r.Context(), caller(r), id); err != nil {
		WriteError(w, h.log, err)
		return
	}
	deleted(w)
}
