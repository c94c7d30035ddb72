// Package domain holds the quote rules: request validation, age and premium
// calculation, and the salutation table used to infer sex from a name.
//
// Errors defined here describe business outcomes. The HTTP adapter maps
// them to status codes and the CLI maps them to exit codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is by adapters.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError reports a missing quote, cache entry or remote record.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError returns a *NotFoundError. id may be empty.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// FieldError is one rejected request field with the message shown to the
// client. Field uses the wire names (nome, cpf, ...) or "geral".
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors collects every field error found in one request, in the
// order the checks ran.
type ValidationErrors struct {
	Fields []FieldError
}

// Add appends a field error.
func (e *ValidationErrors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns e when it holds at least one field error and nil otherwise.
func (e *ValidationErrors) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

func (e *ValidationErrors) Error() string {
	var b strings.Builder

	b.WriteString("validation failed: ")

	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}

		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
	}

	return b.String()
}

func (e *ValidationErrors) Unwrap() error { return ErrValidation }

// FieldErrors returns the field errors carried anywhere in err's chain.
func FieldErrors(err error) []FieldError {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return verr.Fields
	}

	return nil
}

// UnavailableError reports a dependency that could not serve the request:
// the database, or genderize.io when a lookup is attempted.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError returns a *UnavailableError. reason may be empty.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
