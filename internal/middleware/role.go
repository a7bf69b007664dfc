package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/rosterd/rosterd/internal/auth"
)

// RequireRole returns middleware that enforces role-based authorization.
// Must be applied after Auth. A request without a principal (auth never
// ran) is unauthorized; a principal whose role is outside the permitted
// set is forbidden, with the offending role named in the message.
// The check has no side effects and never touches the store.
func RequireRole(permitted ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !slices.Contains(permitted, principal.Role) {
				writeJSONError(w, http.StatusForbidden,
					fmt.Sprintf("User role %s is not authorized to access this route", principal.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
