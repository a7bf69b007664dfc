// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/middleware"
)

// envelope is the API-wide response shape. Success responses carry
// data (and pagination for lists); failures carry a message and, for
// validation failures, the full list of violated fields.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes a page of a list response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// An encode failure here means the connection is gone; there is
	// nothing useful left to send.
	_ = json.NewEncoder(w).Encode(body)
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondList writes a success envelope with pagination.
func respondList(w http.ResponseWriter, data any, p *Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: p})
}

// respondError is the terminal error mapper: every failure that
// reaches a handler funnels through here exactly once. It logs the
// full internal detail and renders only the classified kind's status
// and client-safe message; unclassified errors render a generic 500.
func respondError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	message := "Something went wrong on the server"
	var fields []string
	if e := apperr.From(err); e != nil && kind != apperr.KindInternal {
		message = e.Message
		fields = e.Fields
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("kind", kind.String()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, status, envelope{Success: false, Message: message, Errors: fields})
}

// NotFound handles requests for routes that do not exist.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "Resource not found"})
}

// MethodNotAllowed handles requests with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Message: "Method not allowed"})
}
