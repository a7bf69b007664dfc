package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/model"
	"github.com/rosterd/rosterd/internal/repository"
)

// UserStore resolves a verified credential's subject to a user.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenIssuer
	Users  UserStore
}

// Auth returns a middleware that authenticates requests via a bearer
// token. A missing or malformed header is rejected before any store
// access. On success the resolved principal (never the credential hash)
// is attached to the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				logAuthFailure(cfg.Logger, r, "missing_credential")
				writeJSONError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				switch apperr.KindOf(err) {
				case apperr.KindExpiredCredential:
					logAuthFailure(cfg.Logger, r, "expired_credential")
					writeJSONError(w, http.StatusUnauthorized, "Token expired")
				default:
					logAuthFailure(cfg.Logger, r, "invalid_credential")
					writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			user, err := cfg.Users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// Valid signature, but the principal no longer exists.
					logAuthFailure(cfg.Logger, r, "unknown_principal")
					writeJSONError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				cfg.Logger.Error("user lookup failed during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				status := apperr.KindOf(err).HTTPStatus()
				if status == http.StatusInternalServerError {
					writeJSONError(w, status, "Something went wrong on the server")
				} else {
					writeJSONError(w, status, "Database operation timed out")
				}
				return
			}

			cfg.Logger.Info("authentication successful",
				slog.String("user_id", user.ID),
				slog.String("role", user.Role),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), user.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the credential out of the Authorization
// header. Only the Bearer scheme is accepted.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}
