package db

//go:generate mockgen -destination=mocks/mock_db.go -package=mocks github.com/memgraph/ogm/db Client,Rows

import (
	"context"
)

// Executor runs Cypher text against a graph database. Implementations wrap a
// driver session pool; one outstanding query per handle at a time.
type Executor interface {
	// Execute runs a side-effect query and discards any returned rows.
	Execute(ctx context.Context, query string, params map[string]any) error

	// ExecuteAndFetch runs a query and returns a lazy, single-pass row
	// cursor. Every call issues a fresh round trip; the cursor must be
	// closed.
	ExecuteAndFetch(ctx context.Context, query string, params map[string]any) (Rows, error)
}

// Rows is a lazy cursor over query results. Values blocks only at the network
// boundary while the next row batch is received.
type Rows interface {
	// Next advances to the next row, returning false at the end of the
	// stream or on error.
	Next(ctx context.Context) bool

	// Values returns the current row as a mapping from projected variable
	// name to converted value.
	Values() map[string]any

	// Err returns the first error encountered while streaming, if any.
	Err() error

	// Close releases the underlying session. Safe to call more than once.
	Close(ctx context.Context) error
}

// SchemaManager reads and mutates server-side constraints and indexes.
type SchemaManager interface {
	GetIndexes(ctx context.Context) ([]Index, error)
	CreateIndex(ctx context.Context, index Index) error
	DropIndex(ctx context.Context, index Index) error

	// EnsureIndexes diffs the server state against the desired set, dropping
	// extras and creating missing entries. Idempotent.
	EnsureIndexes(ctx context.Context, indexes []Index) error

	GetConstraints(ctx context.Context) ([]Constraint, error)
	CreateConstraint(ctx context.Context, constraint Constraint) error
	DropConstraint(ctx context.Context, constraint Constraint) error

	// EnsureConstraints diffs the server state against the desired set,
	// dropping extras and creating missing entries. Idempotent.
	EnsureConstraints(ctx context.Context, constraints []Constraint) error
}

// Client is the full database collaborator consumed by the model layer.
type Client interface {
	Executor
	SchemaManager
}

// ValueConverter rewrites raw driver values (nodes, relationships, paths,
// temporal scalars) into host types before rows are handed to callers.
type ValueConverter interface {
	Convert(value any) (any, error)
}

// PropertyStorage persists large property values outside the graph, addressed
// by the owning entity's server-assigned id.
type PropertyStorage interface {
	SaveProperty(ctx context.Context, id int64, key string, value string) error
	LoadProperty(ctx context.Context, id int64, key string) (string, error)
	DeleteProperty(ctx context.Context, id int64, key string) error
}
