// Package model defines domain entities for the application.
package model

import "time"

// Student represents a single student record.
// The id is generated by the store; created_at is set once at creation
// and never updated.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Grade     string    `json:"grade"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
