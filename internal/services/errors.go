package services

import (
	"fmt"
	"sort"
	"strings"
)

// Domain error taxonomy. Handlers map these to HTTP statuses with
// errors.As; nothing below is ever swallowed.

// NotFoundError: a referenced entity id does not exist.
type NotFoundError struct {
	Entity string
	IDs    []uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s_not_found: %s", e.Entity, joinIDs(e.IDs))
}

func notFound(entity string, ids ...uint) *NotFoundError {
	return &NotFoundError{Entity: entity, IDs: ids}
}

// InvalidStateError: the operation is not legal in the entity's current
// lifecycle state (confirming a non-draft entry, invoicing a non-confirmed
// entry, updating a sent invoice).
type InvalidStateError struct {
	Msg string
	IDs []uint
}

func (e *InvalidStateError) Error() string {
	if len(e.IDs) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, joinIDs(e.IDs))
}

// ConflictError: a mutation blocked by a dependent-entity or immutability
// rule (deleting a client with projects, editing a billed entry).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// ValidationError: structurally invalid input, field -> violation code.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return "validation_failed: " + strings.Join(fields, " ")
}

func invalidField(field, code string) *ValidationError {
	return &ValidationError{Violations: map[string]string{field: code}}
}

// ConfigurationError: billing is not configured yet — no profile exists
// and the project carries no rate of its own.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "id " + strings.Join(parts, ",")
}
