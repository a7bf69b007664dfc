package dto

import "strings"

// LoginRequest is the payload for credential exchange.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Sanitize trims the email; the password is opaque and passes through
// untouched so hashing sees exactly what the user typed.
func (r *LoginRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks the login fields.
func (r *LoginRequest) Validate() error {
	return translateValidation(validate.Struct(r))
}
