package graph

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced entity is absent from the store.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity.
func NotFound(kind EntityKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ConflictError indicates a write would violate an identity uniqueness
// invariant, e.g. a duplicate definition path.
type ConflictError struct {
	Kind   EntityKind
	ID     string
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s conflict: %s", e.Kind, e.ID, e.Detail)
	}
	return fmt.Sprintf("%s %s already exists", e.Kind, e.ID)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// InvalidTransitionError indicates an illegal status change, e.g. resolving
// an already-resolved annotation.
type InvalidTransitionError struct {
	Kind EntityKind
	ID   string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: invalid transition %s -> %s", e.Kind, e.ID, e.From, e.To)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var t *InvalidTransitionError
	return errors.As(err, &t)
}

// AmbiguousCanonicalError indicates drift computation could not determine the
// canonical content hash: no explicit canonical is set and the machine hashes
// tie with no strict plurality. Callers must adopt a canonical explicitly.
type AmbiguousCanonicalError struct {
	DefinitionID string
	Hashes       []string
}

func (e *AmbiguousCanonicalError) Error() string {
	return fmt.Sprintf("definition %s: canonical state is ambiguous between hashes [%s]; adopt a canonical explicitly",
		e.DefinitionID, strings.Join(e.Hashes, ", "))
}

// IsAmbiguousCanonical reports whether err is (or wraps) an AmbiguousCanonicalError.
func IsAmbiguousCanonical(err error) bool {
	var a *AmbiguousCanonicalError
	return errors.As(err, &a)
}

// DegradedModeWarning is a non-fatal warning: the structural write succeeded
// but a best-effort side channel (semantic indexing) was unavailable. It is
// returned alongside the result, never instead of it.
type DegradedModeWarning struct {
	Op  string
	Err error
}

func (w *DegradedModeWarning) Error() string {
	return fmt.Sprintf("degraded mode: %s: %v", w.Op, w.Err)
}

func (w *DegradedModeWarning) Unwrap() error {
	return w.Err
}
