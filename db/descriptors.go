package db

import (
	"fmt"
	"strings"
)

// ConstraintKind distinguishes the server-enforced rule a constraint carries.
type ConstraintKind string

const (
	ConstraintExists ConstraintKind = "exists"
	ConstraintUnique ConstraintKind = "unique"
)

// Index describes a label or label-property index. Equality is structural.
type Index struct {
	Label    string
	Property string // empty for a label-only index
}

// Key returns a stable identity used for set-difference operations.
func (i Index) Key() string {
	return i.Label + "|" + i.Property
}

func (i Index) String() string {
	if i.Property == "" {
		return ":" + i.Label
	}
	return fmt.Sprintf(":%s(%s)", i.Label, i.Property)
}

// Constraint describes an existence or uniqueness rule scoped to a label.
// Uniqueness constraints may span a property tuple. Equality is structural
// over label, properties and kind.
type Constraint struct {
	Label      string
	Properties []string
	Kind       ConstraintKind
}

// Key returns a stable identity used for set-difference operations.
func (c Constraint) Key() string {
	return c.Label + "|" + strings.Join(c.Properties, ",") + "|" + string(c.Kind)
}

func (c Constraint) String() string {
	return fmt.Sprintf(":%s(%s) %s", c.Label, strings.Join(c.Properties, ", "), c.Kind)
}

// DiffIndexes computes which current indexes to drop and which desired ones
// to create so that the server converges on the desired set.
func DiffIndexes(current, desired []Index) (drop, create []Index) {
	have := make(map[string]Index, len(current))
	for _, idx := range current {
		have[idx.Key()] = idx
	}
	want := make(map[string]Index, len(desired))
	for _, idx := range desired {
		want[idx.Key()] = idx
	}
	for key, idx := range have {
		if _, ok := want[key]; !ok {
			drop = append(drop, idx)
		}
	}
	for key, idx := range want {
		if _, ok := have[key]; !ok {
			create = append(create, idx)
		}
	}
	return drop, create
}

// DiffConstraints computes which current constraints to drop and which
// desired ones to create.
func DiffConstraints(current, desired []Constraint) (drop, create []Constraint) {
	have := make(map[string]Constraint, len(current))
	for _, c := range current {
		have[c.Key()] = c
	}
	want := make(map[string]Constraint, len(desired))
	for _, c := range desired {
		want[c.Key()] = c
	}
	for key, c := range have {
		if _, ok := want[key]; !ok {
			drop = append(drop, c)
		}
	}
	for key, c := range want {
		if _, ok := have[key]; !ok {
			create = append(create, c)
		}
	}
	return drop, create
}
