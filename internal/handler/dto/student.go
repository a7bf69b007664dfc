// Package dto defines the request payloads for the HTTP surface and
// their validation rules.
package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/sanitize"
)

// validate is shared; a validator.Validate caches struct metadata and
// is safe for concurrent use.
var validate = validator.New()

// CreateStudentRequest is the payload for creating a student.
// Age is a pointer so an explicit zero is distinguishable from absent.
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Age   *int   `json:"age" validate:"required,gte=0,lte=120"`
	Grade string `json:"grade" validate:"required,min=1,max=20"`
	Email string `json:"email" validate:"required,email"`
}

// Sanitize strips markup and operator characters from the free-text
// fields. Runs before validation so a value that is only markup fails
// the required check.
func (r *CreateStudentRequest) Sanitize() {
	r.Name = sanitize.String(r.Name)
	r.Grade = sanitize.String(r.Grade)
	r.Email = strings.TrimSpace(r.Email)
}

// Validate checks every field constraint and reports all violations.
func (r *CreateStudentRequest) Validate() error {
	return translateValidation(validate.Struct(r))
}

// UpdateStudentRequest is the payload for a partial update. Only
// supplied fields change; each is validated only when present.
type UpdateStudentRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Age   *int    `json:"age" validate:"omitempty,gte=0,lte=120"`
	Grade *string `json:"grade" validate:"omitempty,min=1,max=20"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// Sanitize strips markup and operator characters from supplied fields.
func (r *UpdateStudentRequest) Sanitize() {
	if r.Name != nil {
		*r.Name = sanitize.String(*r.Name)
	}
	if r.Grade != nil {
		*r.Grade = sanitize.String(*r.Grade)
	}
	if r.Email != nil {
		*r.Email = strings.TrimSpace(*r.Email)
	}
}

// Validate checks supplied fields and reports all violations. An update
// with no fields at all is itself a validation failure.
func (r *UpdateStudentRequest) Validate() error {
	if r.Name == nil && r.Age == nil && r.Grade == nil && r.Email == nil {
		return apperr.Validation("Validation failed", []string{"at least one field must be provided"})
	}
	return translateValidation(validate.Struct(r))
}

// ListStudentsQuery carries the parsed, defaulted list parameters.
type ListStudentsQuery struct {
	Search string
	Page   int
	Limit  int
}

// ParseListQuery reads page, limit and search from a query string.
// Absent or non-numeric values fall back to defaults; page floors at 1
// and limit clamps to [1, maxLimit]. The search term arrives already
// sanitized by the query middleware.
func ParseListQuery(q url.Values, defaultLimit, maxLimit int) ListStudentsQuery {
	out := ListStudentsQuery{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
		Limit:  defaultLimit,
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		out.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v >= 1 {
		out.Limit = v
	}
	if out.Limit > maxLimit {
		out.Limit = maxLimit
	}
	return out
}

// translateValidation converts validator output into a classified
// failure enumerating every violated field.
func translateValidation(err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindInternal, "Something went wrong on the server", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, fieldMessage(e))
	}
	return apperr.Validation("Validation failed", fields)
}

// fieldMessage renders one violation as a plain sentence.
func fieldMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is required", field)
	case "email":
		return fmt.Sprintf("field %s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("field %s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("field %s must be at most %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("field %s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("field %s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("field %s is invalid", field)
	}
}
