// Package errors defines the domain error taxonomy for the marketplace and
// its mapping to RFC 7807 problem responses. Every error here is terminal
// for the request: callers map each type to a distinct HTTP outcome and
// never retry internally.
package errors

import "fmt"

// NotFoundError indicates a referenced item, listing, collection or user
// does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError for the given resource and identifier.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AuthorizationError indicates the acting address does not hold the required
// relationship to the resource (owner or seller).
type AuthorizationError struct {
	Detail string
}

func (e *AuthorizationError) Error() string {
	return e.Detail
}

// NewAuthorization creates an AuthorizationError.
func NewAuthorization(detail string) *AuthorizationError {
	return &AuthorizationError{Detail: detail}
}

// InvalidStateError indicates the requested transition is illegal from the
// resource's current state, e.g. settling a non-active listing.
type InvalidStateError struct {
	Detail string
}

func (e *InvalidStateError) Error() string {
	return e.Detail
}

// NewInvalidState creates an InvalidStateError.
func NewInvalidState(detail string) *InvalidStateError {
	return &InvalidStateError{Detail: detail}
}

// ValidationError indicates a missing or malformed required field.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Detail)
	}
	return e.Detail
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(field, detail string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail}
}

// ConflictError indicates the resource already exists, e.g. registering an
// item whose token/contract pair is taken.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

// NewConflict creates a ConflictError.
func NewConflict(resource, detail string) *ConflictError {
	return &ConflictError{Resource: resource, Detail: detail}
}
