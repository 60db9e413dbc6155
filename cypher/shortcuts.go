package cypher

// Chain entry points mirroring the clause vocabulary: each starts a fresh
// builder opened with the corresponding clause.

// Match starts a builder with a MATCH clause.
func Match(opts ...Option) *Builder {
	return New(opts...).Match()
}

// OptionalMatch starts a builder with an OPTIONAL MATCH clause.
func OptionalMatch(opts ...Option) *Builder {
	return New(opts...).OptionalMatch()
}

// Create starts a builder with a CREATE clause.
func Create(opts ...Option) *Builder {
	return New(opts...).Create()
}

// Merge starts a builder with a MERGE clause.
func Merge(opts ...Option) *Builder {
	return New(opts...).Merge()
}

// Call starts a builder with a CALL clause.
func Call(procedure string, args []any, opts ...Option) *Builder {
	return New(opts...).Call(procedure, args...)
}

// Unwind starts a builder with an UNWIND clause.
func Unwind(listExpression, variable string, opts ...Option) *Builder {
	return New(opts...).Unwind(listExpression, variable)
}

// With starts a builder with a WITH clause.
func With(results []any, opts ...Option) *Builder {
	return New(opts...).With(results...)
}

// Foreach starts a builder with a FOREACH clause.
func Foreach(variable, listExpression, updateClauses string, opts ...Option) *Builder {
	return New(opts...).Foreach(variable, listExpression, updateClauses)
}

// LoadCSV starts a builder with a LOAD CSV clause (Memgraph dialect).
func LoadCSV(path string, header bool, row string, opts ...Option) *Builder {
	return New(opts...).LoadCSV(path, header, row)
}
