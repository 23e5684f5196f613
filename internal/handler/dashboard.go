package handler

import (
	"net/http"
)

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.DashboardSummary(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

// CumulativeSavings serves ?months=N&end=YYYY-MM&source=transactions|savings
func (h *Handler) CumulativeSavings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.svc.CumulativeSavings(r.Context(), caller(r), q.Get("source"), windowQuery(q))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, series)
}

func (h *Handler) MonthlyCategoryExpenses(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.svc.MonthlyCategoryExpenses(r.Context(), caller(r), windowQuery(r.URL.Query()))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, matrix)
}
