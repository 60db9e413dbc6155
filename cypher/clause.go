package cypher

import (
	"fmt"
	"strings"
)

// clauseKind classifies clause fragments for chain-legality checks. Rendering
// never depends on it.
type clauseKind int

const (
	kindMatch clauseKind = iota
	kindCreate
	kindMerge
	kindNode
	kindRelationship
	kindWhere
	kindCall
	kindYield
	kindUnwind
	kindWith
	kindReturn
	kindUnion
	kindDelete
	kindRemove
	kindSet
	kindOrderBy
	kindLimit
	kindSkip
	kindForeach
	kindLoadCSV
	kindRaw
)

// clause is one fragment of a query under construction. Render is pure and
// idempotent; fragments carry their own surrounding whitespace and the
// builder collapses runs of spaces at the end.
type clause interface {
	Kind() clauseKind
	Render() string
}

type matchClause struct{ optional bool }

func (c matchClause) Kind() clauseKind { return kindMatch }
func (c matchClause) Render() string {
	if c.optional {
		return " OPTIONAL MATCH "
	}
	return " MATCH "
}

type createClause struct{}

func (createClause) Kind() clauseKind { return kindCreate }
func (createClause) Render() string   { return " CREATE " }

type mergeClause struct{}

func (mergeClause) Kind() clauseKind { return kindMerge }
func (mergeClause) Render() string   { return " MERGE " }

type nodeClause struct {
	variable   string
	labels     string
	properties string
}

func (c nodeClause) Kind() clauseKind { return kindNode }
func (c nodeClause) Render() string {
	props := c.properties
	if props != "" {
		props = " " + props
	}
	return fmt.Sprintf("(%s%s%s)", c.variable, c.labels, props)
}

type relationshipClause struct {
	variable   string
	relType    string
	properties string
	directed   bool
	reversed   bool
}

func (c relationshipClause) Kind() clauseKind { return kindRelationship }
func (c relationshipClause) Render() string {
	inner := c.variable + c.relType + c.properties
	if !c.directed {
		return fmt.Sprintf("-[%s]-", inner)
	}
	if c.reversed {
		return fmt.Sprintf("<-[%s]-", inner)
	}
	return fmt.Sprintf("-[%s]->", inner)
}

type whereClause struct {
	keyword   string // WHERE, AND, OR, XOR, possibly suffixed with NOT
	condition string
}

func (c whereClause) Kind() clauseKind { return kindWhere }
func (c whereClause) Render() string {
	return fmt.Sprintf(" %s %s ", c.keyword, c.condition)
}

type callClause struct {
	procedure string
	arguments string
}

func (c callClause) Kind() clauseKind { return kindCall }
func (c callClause) Render() string {
	return fmt.Sprintf(" CALL %s(%s) ", c.procedure, c.arguments)
}

type unwindClause struct {
	listExpression string
	variable       string
}

func (c unwindClause) Kind() clauseKind { return kindUnwind }
func (c unwindClause) Render() string {
	return fmt.Sprintf(" UNWIND %s AS %s ", c.listExpression, c.variable)
}

// resultClause backs RETURN, WITH and YIELD, which share projection syntax.
type resultClause struct {
	keyword    string
	kind       clauseKind
	projection string // empty projects *
}

func (c resultClause) Kind() clauseKind { return c.kind }
func (c resultClause) Render() string {
	if c.projection == "" {
		return fmt.Sprintf(" %s * ", c.keyword)
	}
	return fmt.Sprintf(" %s %s ", c.keyword, c.projection)
}

type unionClause struct{ all bool }

func (c unionClause) Kind() clauseKind { return kindUnion }
func (c unionClause) Render() string {
	if c.all {
		return " UNION ALL "
	}
	return " UNION "
}

type deleteClause struct {
	expressions []string
	detach      bool
}

func (c deleteClause) Kind() clauseKind { return kindDelete }
func (c deleteClause) Render() string {
	detach := ""
	if c.detach {
		detach = "DETACH"
	}
	return fmt.Sprintf(" %s DELETE %s ", detach, strings.Join(c.expressions, ", "))
}

type removeClause struct{ items []string }

func (c removeClause) Kind() clauseKind { return kindRemove }
func (c removeClause) Render() string {
	return fmt.Sprintf(" REMOVE %s ", strings.Join(c.items, ", "))
}

type setClause struct{ condition string }

func (c setClause) Kind() clauseKind { return kindSet }
func (c setClause) Render() string   { return fmt.Sprintf(" SET %s", c.condition) }

type orderByClause struct{ expression string }

func (c orderByClause) Kind() clauseKind { return kindOrderBy }
func (c orderByClause) Render() string   { return fmt.Sprintf(" ORDER BY %s ", c.expression) }

type limitClause struct{ expression string }

func (c limitClause) Kind() clauseKind { return kindLimit }
func (c limitClause) Render() string   { return fmt.Sprintf(" LIMIT %s ", c.expression) }

type skipClause struct{ expression string }

func (c skipClause) Kind() clauseKind { return kindSkip }
func (c skipClause) Render() string   { return fmt.Sprintf(" SKIP %s ", c.expression) }

type foreachClause struct {
	variable      string
	expression    string
	updateClauses string
}

func (c foreachClause) Kind() clauseKind { return kindForeach }
func (c foreachClause) Render() string {
	return fmt.Sprintf(" FOREACH ( %s IN %s | %s ) ", c.variable, c.expression, c.updateClauses)
}

type loadCSVClause struct {
	path   string
	header bool
	row    string
}

func (c loadCSVClause) Kind() clauseKind { return kindLoadCSV }
func (c loadCSVClause) Render() string {
	mode := "NO"
	if c.header {
		mode = "WITH"
	}
	return fmt.Sprintf(" LOAD CSV FROM '%s' %s HEADER AS %s ", c.path, mode, c.row)
}

type rawClause struct{ text string }

func (c rawClause) Kind() clauseKind { return kindRaw }
func (c rawClause) Render() string   { return c.text }
