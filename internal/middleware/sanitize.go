package middleware

import (
	"net/http"

	"github.com/rosterd/rosterd/internal/sanitize"
)

// SanitizeQuery rewrites the request's query string before handlers see
// it: values are stripped of markup and operator characters, and
// repeated parameters collapse to their last value.
func SanitizeQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if len(q) > 0 {
			r.URL.RawQuery = sanitize.Query(q).Encode()
		}
		next.ServeHTTP(w, r)
	})
}
