package db

import "fmt"

// DatabaseError wraps a server-side or transport failure. The original
// driver message is preserved verbatim; callers assert on substrings of it.
type DatabaseError struct {
	Query string
	Err   error
}

func (e *DatabaseError) Error() string {
	return e.Err.Error()
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// WrapError attaches the failing query to a driver error. A nil err returns
// nil.
func WrapError(query string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Query: query, Err: err}
}

// ConversionError reports a row value the configured ValueConverter could not
// rewrite.
type ConversionError struct {
	Variable string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting result variable %q: %v", e.Variable, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
