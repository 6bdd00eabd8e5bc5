package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConfiguration is returned when the store credential is missing.
	ErrConfiguration = errors.New("store not configured")
	// ErrStoreUnavailable wraps connection and query failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when a mutation targets a missing id.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports caller-level input problems per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BulkError lists the entities whose delete failed during a bulk clear.
type BulkError struct {
	Op     string
	Failed map[string]error
}

func (e *BulkError) Error() string {
	ids := e.FailedIDs()
	return fmt.Sprintf("%s: %d of the deletes failed (%s)", e.Op, len(ids), strings.Join(ids, ", "))
}

func (e *BulkError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unwrap exposes the causes so errors.Is sees e.g. ErrStoreUnavailable.
func (e *BulkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		errs = append(errs, e.Failed[id])
	}
	return errs
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
