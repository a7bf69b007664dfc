package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/handler/dto"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/model"
	"github.com/rosterd/rosterd/internal/repository"
)

// CredentialStore resolves an email to a stored user for login.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandler serves credential exchange.
type AuthHandler struct {
	logger  *slog.Logger
	users   CredentialStore
	tokens  *auth.TokenIssuer
	metrics metrics.Recorder
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(logger *slog.Logger, users CredentialStore, tokens *auth.TokenIssuer, rec metrics.Recorder) *AuthHandler {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &AuthHandler{logger: logger, users: users, tokens: tokens, metrics: rec}
}

// loginResponse carries the issued token.
type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/auth/login: verifies the password against the
// stored argon2id hash and issues a bearer token. Unknown email and
// wrong password produce the same response, so the endpoint does not
// leak which emails exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	req.Sanitize()
	if err := req.Validate(); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.rejectLogin(w, r, "unknown_email")
			return
		}
		respondError(h.logger, w, r, err)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.rejectLogin(w, r, "password_mismatch")
		return
	}

	token, err := h.tokens.Sign(user.ID)
	if err != nil {
		respondError(h.logger, w, r, apperr.Wrap(apperr.KindInternal, "Something went wrong on the server", err))
		return
	}

	h.metrics.IncLoginSuccess()
	h.logger.Info("login successful",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)
	respondData(w, http.StatusOK, loginResponse{Token: token})
}

// rejectLogin logs the real reason server-side and returns the uniform
// invalid-credentials response.
func (h *AuthHandler) rejectLogin(w http.ResponseWriter, r *http.Request, reason string) {
	h.metrics.IncLoginFailure()
	respondError(h.logger, w, r,
		apperr.New(apperr.KindInvalidCredential, "Invalid email or password"))
	h.logger.Warn("login rejected",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
	)
}
