// Package handler exposes the service layer over JSON HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc *service.Service
	log *logrus.Logger
	now func() time.Time
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// decode reads a JSON body into dst, answering 400 itself on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// caller returns the identity placed in the context by the auth middleware
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// pathID parses the {id} route variable, answering 404 itself when malformed
func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		WriteFailure(w, http.StatusNotFound, what+" not found")
		return uuid.Nil, false
	}
	return id, true
}

func windowQuery(q url.Values) service.WindowQuery {
	return service.WindowQuery{
		Months:    q.Get("months"),
		End:       q.Get("end"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
}

func deleted(w http.ResponseWriter) {
	writeData(w, http.StatusOK, map[string]interface{}{})
}

// Health reports whether the store answers
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Error: "Store unavailable"})
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
