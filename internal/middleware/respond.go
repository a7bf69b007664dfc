package middleware

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope matches the API-wide response envelope for failures.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSONError writes a failure envelope. Middleware rejections use
// the same response shape as the handler-level error mapper so clients
// see one format regardless of where a request was stopped.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Message: message})
}
