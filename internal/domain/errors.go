package domain

import (
	"errors"
	"fmt"
)

// DuplicateEntityError is returned when adding an entity whose id already exists
type DuplicateEntityError struct {
	ID string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity %q already exists", e.ID)
}

// NotFoundError is returned when an operation names a missing entity or relationship
type NotFoundError struct {
	What string // "entity" or "relationship"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.ID)
}

// InvalidSelectionError is returned when a relationship is requested without
// exactly two distinct selected entities
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Reason
}

// MalformedImportError is returned when an import payload fails validation.
// The live graph is never touched when this is returned.
type MalformedImportError struct {
	Reason string
	Cause  error
}

func (e *MalformedImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed import: %s: %v", e.Reason, e.Cause)
	}
	return "malformed import: " + e.Reason
}

func (e *MalformedImportError) Unwrap() error {
	return e.Cause
}

// EntityNotFound builds a NotFoundError for an entity id
func EntityNotFound(id string) error {
	return &NotFoundError{What: "entity", ID: id}
}

// RelationshipNotFound builds a NotFoundError for a relationship id
func RelationshipNotFound(id string) error {
	return &NotFoundError{What: "relationship", ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDuplicate reports whether err wraps a DuplicateEntityError
func IsDuplicate(err error) bool {
	var target *DuplicateEntityError
	return errors.As(err, &target)
}

// IsInvalidSelection reports whether err wraps an InvalidSelectionError
func IsInvalidSelection(err error) bool {
	var target *InvalidSelectionError
	return errors.As(err, &target)
}

// IsMalformedImport reports whether err wraps a MalformedImportError
func IsMalformedImport(err error) bool {
	var target *MalformedImportError
	return errors.As(err, &target)
}
