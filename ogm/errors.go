package ogm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Load when the query matched zero rows.
	ErrNotFound = errors.New("no results found")

	// ErrMultipleResults is returned when exactly one row was expected but
	// the database returned more.
	ErrMultipleResults = errors.New("one result expected, but more than one found")
)

// ValidationError reports a local precondition failure: missing or
// conflicting fields, raised before any network call where possible.
type ValidationError struct {
	Entity string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

func validationErr(entity, format string, args ...any) error {
	return &ValidationError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// AmbiguousDispatchError reports a node whose label set matches two or more
// registered schemas with equal specificity and equal priority.
type AmbiguousDispatchError struct {
	Labels     []string
	Candidates []string
}

func (e *AmbiguousDispatchError) Error() string {
	return fmt.Sprintf("labels [%s] match schemas [%s] with equal specificity; set an explicit priority",
		strings.Join(e.Labels, ", "), strings.Join(e.Candidates, ", "))
}
