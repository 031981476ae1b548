// Package domain defines the core domain models for Dew.
//
// Domain models are pure value objects without any IO dependencies.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Todo constraints.
const (
	MaxIDLength    = 128
	MaxTitleLength = 1024
)

// Status is the completion state of a todo.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusCompleted:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus.WithDetails("unknown status " + `"` + s + `"`)
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusActive
	}
	return StatusCompleted
}

// UnmarshalJSON rejects anything but the two known status strings.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidStatus.WithCause(err)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Todo is a single todo record.
type Todo struct {
	// ID is the caller-supplied identifier. Immutable once stored.
	ID string `json:"id"`

	// Title is free-form text.
	Title string `json:"title"`

	// Status is Active or Completed.
	Status Status `json:"status"`

	// Created is set once at creation and only used for display ordering.
	Created time.Time `json:"created"`
}

// NewTodo creates an active todo with a fresh UUID and the current time.
func NewTodo(title string) *Todo {
	return &Todo{
		ID:      uuid.NewString(),
		Title:   title,
		Status:  StatusActive,
		Created: time.Now().UTC(),
	}
}

// Clone returns a copy of the todo.
func (t *Todo) Clone() *Todo {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Validate checks the todo against the record constraints.
func (t *Todo) Validate() error {
	if t.ID == "" {
		return ErrTodoValidation.WithDetails("id is required")
	}
	if len(t.ID) > MaxIDLength {
		return ErrTodoValidation.WithDetails("id too long")
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTodoValidation.WithDetails("title too long")
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus.WithDetails("unknown status " + `"` + string(t.Status) + `"`)
	}
	if t.Created.IsZero() {
		return ErrTodoValidation.WithDetails("created is required")
	}
	return nil
}

// IsCompleted reports whether the todo is completed.
func (t *Todo) IsCompleted() bool {
	return t.Status == StatusCompleted
}
