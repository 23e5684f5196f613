package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/finaurial/finance-tracker/internal/export"
	"github.com/finaurial/finance-tracker/internal/service"
)

// ListTransactions returns one filtered, sorted page of transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListTransactions(r.Context(), caller(r), service.TransactionQuery{
		Type:      q.Get("type"),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Sort:      q.Get("sort"),
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		All:       strings.EqualFold(q.Get("all"), "true"),
	})
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	count := len(page.Items)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Total: &page.Total, Data: list(page.Items)})
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if !h.decode(w, r, &in) {
		return
	}
	tx, err := h.svc.CreateTransaction(r.Context(), caller(r), in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, tx)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Transaction")
	if !ok {
		return
	}
	var in service.TransactionInput
	if !h.decode(w, r, &in) {
		return
	}
	tx, err := h.svc.UpdateTransaction(r.Context(), caller(r), id, in)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Transaction")
	if !ok {
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), caller(r), id); err != nil {
		WriteError(w, h.log, err)
		return
	}
	deleted(w)
}

// Reports returns last month's report
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Report(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// Summary returns all-time income and expense totals
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.TransactionSummary(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	series, err := h.svc.MonthlySummary(r.Context(), caller(r), windowQuery(r.URL.Query()))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, series)
}

func (h *Handler) SpendingBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	breakdown, err := h.svc.SpendingBreakdown(r.Context(), caller(r), q.Get("period"), windowQuery(q))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, list(breakdown))
}

func (h *Handler) CategorySpending(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.CategorySpending(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, list(totals))
}

// ExportTransactions streams the caller's transactions as a csv or xlsx attachment
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if errors.Is(err, export.ErrUnsupportedFormat) {
		WriteFailure(w, http.StatusBadRequest, `Format must be "csv" or "xlsx"`)
		return
	}

	txs, err := h.svc.ExportTransactions(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, txs); err != nil {
		WriteError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// SeedSample creates one random transaction for the caller
func (h *Handler) SeedSample(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.SeedSampleTransaction(r.Context(), caller(r))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, tx)
}
