package cypher

import (
	"errors"
	"fmt"
)

// Chain-legality violations detectable from builder state alone. They are
// reported before any network call is made.
var (
	// ErrInvalidMatchChain is returned when pattern elements are linked in an
	// illegal order, e.g. two node patterns back to back, or a WHERE with no
	// preceding pattern clause.
	ErrInvalidMatchChain = errors.New("invalid match query when linking")

	// ErrNoVariablesMatched is returned when a projection needs variables
	// (RETURN *) but none were declared anywhere in the chain.
	ErrNoVariablesMatched = errors.New("no variables have been matched in the query")

	// ErrNoConnection is returned by terminal calls on a builder constructed
	// without a database connection.
	ErrNoConnection = errors.New("builder has no database connection")

	// ErrConsumed is returned when a terminal call is made on a builder that
	// was already executed. Builders are single-use.
	ErrConsumed = errors.New("builder already executed")
)

// SerializationError reports a value the serializer cannot render as a Cypher
// literal.
type SerializationError struct {
	Value any
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize value of type %T to a Cypher literal", e.Value)
}

// UsageError reports an illegal builder call sequence or argument. It wraps
// one of the sentinel errors above when a more specific cause exists.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("cypher: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

func usageErr(op string, err error) error {
	return &UsageError{Op: op, Err: err}
}

func usagef(op, format string, args ...any) error {
	return &UsageError{Op: op, Err: fmt.Errorf(format, args...)}
}
