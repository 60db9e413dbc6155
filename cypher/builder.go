package cypher

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/memgraph/ogm/db"
)

// Dialect selects the clause vocabulary of the target server. The Memgraph
// dialect carries the richer clause set (LOAD CSV); the Neo4j dialect rejects
// the extensions before execution.
type Dialect int

const (
	DialectMemgraph Dialect = iota
	DialectNeo4j
)

// NodeEntity supplies labels and properties for a node pattern built from a
// model instance.
type NodeEntity interface {
	PatternLabels() []string
	PatternProperties() map[string]any
}

// RelationshipEntity supplies the type tag and properties for a relationship
// pattern built from a model instance.
type RelationshipEntity interface {
	PatternType() string
	PatternProperties() map[string]any
}

// NodePattern describes one node element of a pattern. Zero-value fields are
// omitted from the rendered fragment. When Entity is set it supplies labels
// and properties instead of the explicit fields.
type NodePattern struct {
	Variable   string
	Labels     []string
	Properties Props
	Entity     NodeEntity
}

// RelationshipPattern describes one relationship element of a pattern.
type RelationshipPattern struct {
	Variable   string
	Type       string
	Properties Props
	Undirected bool
	Entity     RelationshipEntity
}

// Operand is the right-hand side of a WHERE or SET condition: either a
// literal run through the value serializer, or a raw expression spliced in
// verbatim (variable references, properties, labels).
type Operand struct {
	expr    string
	literal any
	isExpr  bool
}

// Literal wraps a native value; it renders through Serialize.
func Literal(v any) Operand { return Operand{literal: v} }

// Expr wraps a raw Cypher expression; no quoting is applied.
func Expr(s string) Operand { return Operand{expr: s, isExpr: true} }

// Alias pairs a projected expression with the name it is returned under.
type Alias struct {
	Expr string
	Name string
}

// As builds a projection alias; RETURN/WITH/YIELD render it as "expr AS name"
// unless the alias equals the expression or is empty.
func As(expr, name string) Alias { return Alias{Expr: expr, Name: name} }

// Ordering pairs an ORDER BY expression with a direction.
type Ordering struct {
	Expr string
	Dir  Order
}

// By builds an ORDER BY item with an explicit direction.
func By(expr string, dir Order) Ordering { return Ordering{Expr: expr, Dir: dir} }

// Builder accumulates an ordered sequence of clause fragments and renders
// them into one Cypher query. A builder is single-use and not safe for
// concurrent callers; start a new chain per logical query.
type Builder struct {
	conn     db.Executor
	dialect  Dialect
	clauses  []clause
	vars     map[string]struct{}
	params   map[string]any
	consumed bool
	err      error
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithConnection injects the database collaborator used by terminal calls.
func WithConnection(conn db.Executor) Option {
	return func(b *Builder) { b.conn = conn }
}

// WithDialect selects the server dialect. The default is Memgraph.
func WithDialect(d Dialect) Option {
	return func(b *Builder) { b.dialect = d }
}

// WithParameters attaches query parameters passed through to the server
// verbatim. Temporal and other non-literal values travel this way instead of
// being inlined.
func WithParameters(params map[string]any) Option {
	return func(b *Builder) {
		for k, v := range params {
			b.params[k] = v
		}
	}
}

// New creates an empty builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		vars:   make(map[string]struct{}),
		params: make(map[string]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) append(c clause) *Builder {
	if b.err != nil {
		return b
	}
	b.clauses = append(b.clauses, c)
	return b
}

func (b *Builder) lastKind() (clauseKind, bool) {
	if len(b.clauses) == 0 {
		return 0, false
	}
	return b.clauses[len(b.clauses)-1].Kind(), true
}

func (b *Builder) hasKind(kinds ...clauseKind) bool {
	for _, c := range b.clauses {
		for _, k := range kinds {
			if c.Kind() == k {
				return true
			}
		}
	}
	return false
}

func (b *Builder) declare(variable string) {
	if variable != "" {
		b.vars[variable] = struct{}{}
	}
}

// Match starts a MATCH clause.
func (b *Builder) Match() *Builder {
	return b.append(matchClause{})
}

// OptionalMatch starts an OPTIONAL MATCH clause; missing parts of the pattern
// bind to null.
func (b *Builder) OptionalMatch() *Builder {
	return b.append(matchClause{optional: true})
}

// Create starts a CREATE clause. String properties of patterns inside a
// CREATE render double-quoted; every other clause single-quotes.
func (b *Builder) Create() *Builder {
	return b.append(createClause{})
}

// Merge starts a MERGE clause.
func (b *Builder) Merge() *Builder {
	return b.append(mergeClause{})
}

// patternQuote picks the string quoting for pattern properties based on the
// most recent keyword clause. The CREATE path double-quotes for
// compatibility; see the serializer notes.
func (b *Builder) patternQuote() quoteStyle {
	for i := len(b.clauses) - 1; i >= 0; i-- {
		switch b.clauses[i].Kind() {
		case kindCreate:
			return doubleQuote
		case kindMatch, kindMerge:
			return singleQuote
		}
	}
	return singleQuote
}

// Node appends a node pattern. Two adjacent node patterns are an invalid
// chain.
func (b *Builder) Node(p NodePattern) *Builder {
	if b.err != nil {
		return b
	}
	if last, ok := b.lastKind(); ok && last == kindNode {
		return b.fail(usageErr("node", ErrInvalidMatchChain))
	}

	labels := p.Labels
	props := p.Properties
	if p.Entity != nil {
		labels = p.Entity.PatternLabels()
		props = p.Entity.PatternProperties()
	}

	propsText, err := serializeProperties(props, b.patternQuote())
	if err != nil {
		return b.fail(err)
	}
	b.declare(p.Variable)
	return b.append(nodeClause{
		variable:   p.Variable,
		labels:     SerializeLabels(labels),
		properties: propsText,
	})
}

// To appends a relationship pattern pointing at the next node. An empty
// pattern still renders brackets: -[]->.
func (b *Builder) To(p RelationshipPattern) *Builder {
	return b.relationship(p, false)
}

// From appends a relationship pattern pointing back at the previous node:
// <-[]-.
func (b *Builder) From(p RelationshipPattern) *Builder {
	return b.relationship(p, true)
}

func (b *Builder) relationship(p RelationshipPattern, reversed bool) *Builder {
	if b.err != nil {
		return b
	}
	if last, ok := b.lastKind(); ok && last == kindRelationship {
		return b.fail(usageErr("to", ErrInvalidMatchChain))
	}

	relType := p.Type
	props := p.Properties
	if p.Entity != nil {
		relType = p.Entity.PatternType()
		props = p.Entity.PatternProperties()
	}

	propsText, err := serializeProperties(props, b.patternQuote())
	if err != nil {
		return b.fail(err)
	}
	b.declare(p.Variable)
	return b.append(relationshipClause{
		variable:   p.Variable,
		relType:    SerializeLabels([]string{relType}),
		properties: propsText,
		directed:   !p.Undirected,
		reversed:   reversed,
	})
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// baseIdent extracts the leading variable of an item expression like "n" or
// "n.age". Anything more complex opts out of static checking.
func baseIdent(item string) (string, bool) {
	base, _, _ := strings.Cut(item, ".")
	if identRe.MatchString(base) {
		return base, true
	}
	return "", false
}

func (b *Builder) checkItemDeclared(op, item string) error {
	base, ok := baseIdent(item)
	if !ok {
		return nil
	}
	if _, declared := b.vars[base]; !declared {
		return usageErr(op, fmt.Errorf("variable %q: %w", base, ErrInvalidMatchChain))
	}
	return nil
}

func (b *Builder) condition(op string, item string, operator Operator, v Operand) (string, error) {
	if !operator.valid() {
		return "", usagef(op, "unsupported operator %q", string(operator))
	}
	if err := b.checkItemDeclared(op, item); err != nil {
		return "", err
	}

	value := v.expr
	if !v.isExpr {
		rendered, err := Serialize(v.literal)
		if err != nil {
			return "", err
		}
		value = rendered
	}

	sep := " "
	if operator == OpLabelFilter {
		sep = ""
	}
	return strings.Join([]string{item, string(operator), value}, sep), nil
}

func (b *Builder) where(op string, keyword whereKeyword, negated bool, item string, operator Operator, v Operand) *Builder {
	if b.err != nil {
		return b
	}
	if !b.hasKind(kindMatch, kindCreate, kindMerge, kindNode, kindUnwind, kindWith, kindCall, kindLoadCSV) {
		return b.fail(usageErr(op, ErrInvalidMatchChain))
	}
	cond, err := b.condition(op, item, operator, v)
	if err != nil {
		return b.fail(err)
	}
	kw := string(keyword)
	if negated {
		kw += " NOT"
	}
	return b.append(whereClause{keyword: kw, condition: cond})
}

// Where appends a WHERE condition: item operator value.
func (b *Builder) Where(item string, operator Operator, v Operand) *Builder {
	return b.where("where", kwWhere, false, item, operator, v)
}

// WhereNot appends a WHERE NOT condition.
func (b *Builder) WhereNot(item string, operator Operator, v Operand) *Builder {
	return b.where("where_not", kwWhere, true, item, operator, v)
}

// AndWhere extends the current WHERE with AND.
func (b *Builder) AndWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("and_where", kwAnd, false, item, operator, v)
}

// AndNotWhere extends the current WHERE with AND NOT.
func (b *Builder) AndNotWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("and_not_where", kwAnd, true, item, operator, v)
}

// OrWhere extends the current WHERE with OR.
func (b *Builder) OrWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("or_where", kwOr, false, item, operator, v)
}

// OrNotWhere extends the current WHERE with OR NOT.
func (b *Builder) OrNotWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("or_not_where", kwOr, true, item, operator, v)
}

// XorWhere extends the current WHERE with XOR.
func (b *Builder) XorWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("xor_where", kwXor, false, item, operator, v)
}

// XorNotWhere extends the current WHERE with XOR NOT.
func (b *Builder) XorNotWhere(item string, operator Operator, v Operand) *Builder {
	return b.where("xor_not_where", kwXor, true, item, operator, v)
}

// Set appends a SET clause: assignment, increment, label set or map
// replacement depending on the operator.
func (b *Builder) Set(item string, operator Operator, v Operand) *Builder {
	if b.err != nil {
		return b
	}
	cond, err := b.condition("set", item, operator, v)
	if err != nil {
		return b.fail(err)
	}
	return b.append(setClause{condition: cond})
}

// Call invokes a procedure with positional arguments. String arguments render
// double-quoted, everything else as a bare literal.
func (b *Builder) Call(procedure string, args ...any) *Builder {
	if b.err != nil {
		return b
	}
	rendered, err := serializeProcedureArgs(args)
	if err != nil {
		return b.fail(err)
	}
	return b.append(callClause{procedure: procedure, arguments: rendered})
}

// CallRaw invokes a procedure with an argument string spliced in verbatim.
func (b *Builder) CallRaw(procedure, rawArgs string) *Builder {
	return b.append(callClause{procedure: procedure, arguments: rawArgs})
}

// Unwind expands a list expression into a row per element bound to variable.
func (b *Builder) Unwind(listExpression, variable string) *Builder {
	if b.err != nil {
		return b
	}
	b.declare(variable)
	return b.append(unwindClause{listExpression: listExpression, variable: variable})
}

// projection renders RETURN/WITH/YIELD results. Accepted item forms: a plain
// string, an Alias, or a map[string]string of expression to alias (rendered
// in sorted key order).
func (b *Builder) projection(op string, declareOnly bool, results []any) (string, error) {
	var parts []string
	appendItem := func(expr, alias string) error {
		if !declareOnly {
			if err := b.checkItemDeclared(op, expr); err != nil {
				return err
			}
		}
		if alias != "" && alias != expr {
			parts = append(parts, expr+" AS "+alias)
			b.declare(alias)
		} else {
			parts = append(parts, expr)
			if base, ok := baseIdent(expr); ok {
				b.declare(base)
			}
		}
		return nil
	}

	for _, result := range results {
		switch r := result.(type) {
		case string:
			if err := appendItem(r, ""); err != nil {
				return "", err
			}
		case Alias:
			if err := appendItem(r.Expr, r.Name); err != nil {
				return "", err
			}
		case map[string]string:
			keys := make([]string, 0, len(r))
			for k := range r {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := appendItem(k, r[k]); err != nil {
					return "", err
				}
			}
		default:
			return "", usagef(op, "unsupported projection item of type %T", result)
		}
	}
	return strings.Join(parts, ", "), nil
}

func (b *Builder) result(op, keyword string, kind clauseKind, declareOnly bool, results []any) *Builder {
	if b.err != nil {
		return b
	}
	if len(results) == 0 {
		// A bare * needs at least one variable in scope; procedure calls
		// introduce theirs server-side.
		if len(b.vars) == 0 && !b.hasKind(kindCall, kindRaw) && kind != kindYield {
			return b.fail(usageErr(op, ErrNoVariablesMatched))
		}
		return b.append(resultClause{keyword: keyword, kind: kind})
	}
	proj, err := b.projection(op, declareOnly, results)
	if err != nil {
		return b.fail(err)
	}
	return b.append(resultClause{keyword: keyword, kind: kind, projection: proj})
}

// Return projects results out of the query. With no arguments it renders
// RETURN *.
func (b *Builder) Return(results ...any) *Builder {
	return b.result("return", "RETURN", kindReturn, false, results)
}

// With pipes results from one query part into the next.
func (b *Builder) With(results ...any) *Builder {
	return b.result("with", "WITH", kindWith, false, results)
}

// Yield binds names produced by a preceding CALL. Yielded names enter the
// variable scope.
func (b *Builder) Yield(results ...any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.hasKind(kindCall) {
		return b.fail(usageErr("yield", ErrInvalidMatchChain))
	}
	return b.result("yield", "YIELD", kindYield, true, results)
}

// Union combines this query with the following one, removing duplicates.
func (b *Builder) Union() *Builder {
	return b.append(unionClause{})
}

// UnionAll combines this query with the following one, keeping duplicates.
func (b *Builder) UnionAll() *Builder {
	return b.append(unionClause{all: true})
}

// Delete removes the named nodes or relationships.
func (b *Builder) Delete(expressions ...string) *Builder {
	return b.delete("delete", false, expressions)
}

// DetachDelete removes nodes along with their relationships.
func (b *Builder) DetachDelete(expressions ...string) *Builder {
	return b.delete("detach_delete", true, expressions)
}

func (b *Builder) delete(op string, detach bool, expressions []string) *Builder {
	if b.err != nil {
		return b
	}
	for _, expr := range expressions {
		if err := b.checkItemDeclared(op, expr); err != nil {
			return b.fail(err)
		}
	}
	return b.append(deleteClause{expressions: expressions, detach: detach})
}

// Remove drops labels or properties from matched entities.
func (b *Builder) Remove(items ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, item := range items {
		if err := b.checkItemDeclared("remove", item); err != nil {
			return b.fail(err)
		}
	}
	return b.append(removeClause{items: items})
}

// OrderBy sorts the projected results. Items are property expressions or
// By(expr, dir) pairs. Legal only after a projecting clause.
func (b *Builder) OrderBy(items ...any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.hasKind(kindReturn, kindWith, kindYield) {
		return b.fail(usagef("order_by", "ORDER BY before any RETURN/WITH clause"))
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch i := item.(type) {
		case string:
			parts = append(parts, i)
		case Ordering:
			parts = append(parts, i.Expr+" "+string(i.Dir))
		default:
			return b.fail(usagef("order_by", "unsupported ordering item of type %T", item))
		}
	}
	return b.append(orderByClause{expression: strings.Join(parts, ", ")})
}

// Limit caps the number of returned rows. Legal only after a projecting
// clause.
func (b *Builder) Limit(expression any) *Builder {
	return b.page("limit", expression)
}

// Skip drops leading rows from the result. Legal only after a projecting
// clause.
func (b *Builder) Skip(expression any) *Builder {
	return b.page("skip", expression)
}

func (b *Builder) page(op string, expression any) *Builder {
	if b.err != nil {
		return b
	}
	if !b.hasKind(kindReturn, kindWith, kindYield) {
		return b.fail(usagef(op, "%s before any RETURN/WITH clause", strings.ToUpper(op)))
	}
	var text string
	switch e := expression.(type) {
	case string:
		text = e
	case int:
		text = strconv.Itoa(e)
	case int64:
		text = strconv.FormatInt(e, 10)
	default:
		return b.fail(usagef(op, "unsupported %s expression of type %T", op, expression))
	}
	if op == "limit" {
		return b.append(limitClause{expression: text})
	}
	return b.append(skipClause{expression: text})
}

// Foreach iterates a list expression and runs the update clauses once per
// element. The update argument is typically another builder's Render output.
func (b *Builder) Foreach(variable, listExpression, updateClauses string) *Builder {
	if b.err != nil {
		return b
	}
	b.declare(variable)
	return b.append(foreachClause{
		variable:      variable,
		expression:    listExpression,
		updateClauses: strings.TrimSpace(updateClauses),
	})
}

// LoadCSV streams rows from a CSV file, binding each to the row variable.
// Memgraph dialect only.
func (b *Builder) LoadCSV(path string, header bool, row string) *Builder {
	if b.err != nil {
		return b
	}
	if b.dialect != DialectMemgraph {
		return b.fail(usagef("load_csv", "LOAD CSV is not supported by this dialect"))
	}
	b.declare(row)
	return b.append(loadCSVClause{path: path, header: header, row: row})
}

// AddCustomCypher splices raw Cypher text into the chain at this position.
func (b *Builder) AddCustomCypher(text string) *Builder {
	if b.err != nil {
		return b
	}
	return b.append(rawClause{text: text})
}

// Err reports the first chain error, if any, without executing.
func (b *Builder) Err() error { return b.err }

// Params returns the parameters sent along with the rendered query.
func (b *Builder) Params() map[string]any { return b.params }

var spaceRuns = regexp.MustCompile(`\s\s+`)

// Render concatenates the accumulated clause fragments into the final query
// string. Pure: it may be called repeatedly and does not consume the builder.
func (b *Builder) Render() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	var sb strings.Builder
	for _, c := range b.clauses {
		sb.WriteString(c.Render())
	}
	return spaceRuns.ReplaceAllString(sb.String(), " "), nil
}

func (b *Builder) terminal(op string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.consumed {
		return "", usageErr(op, ErrConsumed)
	}
	if b.conn == nil {
		return "", usageErr(op, ErrNoConnection)
	}
	query, err := b.Render()
	if err != nil {
		return "", err
	}
	b.consumed = true
	return query, nil
}

// Execute renders the chain and runs it for its side effects. Any returned
// rows are discarded; use Fetch when values are needed. The builder is
// consumed.
func (b *Builder) Execute(ctx context.Context) error {
	query, err := b.terminal("execute")
	if err != nil {
		return err
	}
	return b.conn.Execute(ctx, query, b.params)
}

// Fetch renders the chain, runs it, and returns a lazy row cursor. Each call
// site owns closing the cursor. The builder is consumed.
func (b *Builder) Fetch(ctx context.Context) (db.Rows, error) {
	query, err := b.terminal("execute_and_fetch")
	if err != nil {
		return nil, err
	}
	return b.conn.ExecuteAndFetch(ctx, query, b.params)
}

// GetSingle runs the query and returns the named variable from the first
// row, or nil when the result is empty.
func (b *Builder) GetSingle(ctx context.Context, retrieve string) (any, error) {
	rows, err := b.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	if !rows.Next(ctx) {
		return nil, rows.Err()
	}
	return rows.Values()[retrieve], nil
}
