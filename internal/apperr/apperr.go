// Package apperr defines the application's error taxonomy.
// Failures are classified once, as close to their origin as possible
// (store errors at the repository boundary, credential errors at the
// auth guard), and carry a Kind discriminant that the HTTP layer maps
// to a status code and client-safe message.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for HTTP status mapping.
type Kind int

const (
	// KindInternal is the fallback for unclassified failures.
	KindInternal Kind = iota
	// KindValidation indicates one or more field constraints were violated.
	KindValidation
	// KindDuplicate indicates a unique-field collision (e.g. email).
	KindDuplicate
	// KindMalformedID indicates a supplied id is not a valid identifier.
	KindMalformedID
	// KindUnauthorized indicates a missing or malformed credential.
	KindUnauthorized
	// KindInvalidCredential indicates a credential with a bad signature.
	KindInvalidCredential
	// KindExpiredCredential indicates a validly-signed but expired credential.
	KindExpiredCredential
	// KindForbidden indicates the principal's role is not permitted.
	KindForbidden
	// KindNotFound indicates the entity is absent for the given id.
	KindNotFound
	// KindTimeout indicates a request or store deadline was exceeded.
	KindTimeout
)

// HTTPStatus returns the canonical status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindMalformedID:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindUnauthorized, KindInvalidCredential, KindExpiredCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindMalformedID:
		return "malformed_id"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindExpiredCredential:
		return "expired_credential"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to return to clients;
// the wrapped cause is for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	// Fields lists every violated field for validation failures.
	Fields []string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a classified error with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error. The cause is retained for logs
// but never rendered to clients.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation creates a validation failure enumerating every violated field.
func Validation(message string, fields []string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// KindOf extracts the Kind from an error chain.
// Unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From extracts the *Error from a chain, or nil if the error is unclassified.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
