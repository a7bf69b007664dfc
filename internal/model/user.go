package model

import "time"

// Roles form a closed set; every user carries exactly one.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account that can authenticate against the API.
// Registration happens out-of-band (see scripts/bootstrap-user.go);
// the API itself only reads users during authentication.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// PasswordHash is the argon2id hash of the user's credential.
	// Never serialized and never attached to a request context.
	PasswordHash string `json:"-"`
}

// Principal is the authenticated identity attached to a request context
// after credential verification. It deliberately omits the credential hash.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Principal derives the context-safe identity from a user.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
