package handler

import (
	"net/http"

	"github.com/finaurial/finance-tracker/internal/service"
)

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListGoals(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, list(goals))
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var in service.GoalInput
	if !h.decode(w, r, &in) {
		return
	}
	goal, err := h.svc.CreateGoal(r.Context(), caller(r), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, goal)
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Goal")
	if !ok {
		return
	}
	var in service.GoalUpdateInput
	if !h.decode(w, r, &in) {
		return
	}
	goal, err := h.svc.UpdateGoal(r.Context(), caller(r), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, goal)
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Goal")
	if !ok {
		return
	}
	if err := h.svc.DeleteGoal(r.Context(), caller(r), id); err != nil {
		WriteError(w, h.log, err)
		return
	}
	deleted(w)
}

// Contribute adds money to a goal
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Goal")
	if !ok {
		return
	}
	var in service.ContributionInput
	if !h.decode(w, r, &in) {
		return
	}
	goal, err := h.svc.Contribute(r.Context(), caller(r), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, goal)
}
