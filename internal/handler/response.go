package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every JSON response
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// WriteJSON encodes body with status
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteFailure sends an error envelope with a single message
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: message})
}

// WriteError maps a service error onto its status code and envelope.
// Unexpected errors are logged and reported as a generic server error.
func WriteError(w http.ResponseWriter, log *logrus.Logger, err error) {
	var verr *service.ValidationError
	var nerr *service.NotFoundError

	switch {
	case errors.As(err, &verr):
		env := Envelope{Error: strings.Join(verr.Messages, "; ")}
		if len(verr.Messages) > 1 {
			env.Errors = verr.Messages
		}
		WriteJSON(w, http.StatusBadRequest, env)
	case errors.Is(err, service.ErrUnauthorized):
		WriteFailure(w, http.StatusUnauthorized, "No token, authorization denied")
	case errors.Is(err, service.ErrForbidden):
		WriteFailure(w, http.StatusForbidden, capitalize(err.Error()))
	case errors.As(err, &nerr):
		WriteFailure(w, http.StatusNotFound, nerr.Message)
	case errors.Is(err, service.ErrNotFound):
		WriteFailure(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrConflict):
		WriteFailure(w, http.StatusBadRequest, capitalize(err.Error()))
	default:
		log.WithError(err).Error("Request failed")
		WriteFailure(w, http.StatusInternalServerError, "Server Error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// list keeps empty collections encoded as [] instead of null
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
