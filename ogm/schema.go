package ogm

import (
	"fmt"
	"reflect"

	"github.com/memgraph/ogm/cypher"
	"github.com/memgraph/ogm/db"
)

// Field describes one declared property of an entity schema: its name, an
// optional default, and the constraint/index flags that drive schema
// registration.
type Field struct {
	Name       string
	Default    any
	HasDefault bool
	Index      bool
	Exists     bool
	Unique     bool
	OnDisk     bool
	Label      string // overrides the declaring schema's label for constraints
}

// FieldOption configures a field at schema-build time.
type FieldOption func(*Field)

// WithDefault sets the value applied when an instance leaves the field unset.
func WithDefault(v any) FieldOption {
	return func(f *Field) {
		f.Default = v
		f.HasDefault = true
	}
}

// Indexed flags the field for a label-property index.
func Indexed() FieldOption {
	return func(f *Field) { f.Index = true }
}

// Required flags the field with an existence constraint.
func Required() FieldOption {
	return func(f *Field) { f.Exists = true }
}

// Unique flags the field with a uniqueness constraint.
func Unique() FieldOption {
	return func(f *Field) { f.Unique = true }
}

// OnDisk routes the field through the configured property storage instead of
// the graph itself.
func OnDisk() FieldOption {
	return func(f *Field) { f.OnDisk = true }
}

// WithLabel keys the field's constraints to an explicit label instead of the
// declaring schema's own label.
func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

// NodeSchema is an immutable entity descriptor: one declared label, the union
// of trait labels, and the effective field list. Build one through
// NewNodeSchema.
type NodeSchema struct {
	label    string
	labels   []string
	traits   []*NodeSchema
	fields   []Field
	priority int
}

// NodeSchemaBuilder assembles a NodeSchema.
type NodeSchemaBuilder struct {
	label    string
	traits   []*NodeSchema
	fields   []Field
	priority int
}

// NewNodeSchema starts a schema for entities carrying the given label.
func NewNodeSchema(label string) *NodeSchemaBuilder {
	return &NodeSchemaBuilder{label: label}
}

// Trait merges another schema into this one: its labels join the label set
// and its fields are inherited unless redeclared. Traits compose; no type
// inheritance is involved.
func (b *NodeSchemaBuilder) Trait(t *NodeSchema) *NodeSchemaBuilder {
	b.traits = append(b.traits, t)
	return b
}

// Field declares a property. Redeclaring a trait field overrides its
// descriptor for this schema, though the trait's constraint remains keyed to
// the trait's label.
func (b *NodeSchemaBuilder) Field(name string, opts ...FieldOption) *NodeSchemaBuilder {
	f := Field{Name: name}
	for _, opt := range opts {
		opt(&f)
	}
	b.fields = append(b.fields, f)
	return b
}

// Priority sets the dispatch tie-break rank; higher wins when two schemas
// match a node with equal specificity.
func (b *NodeSchemaBuilder) Priority(p int) *NodeSchemaBuilder {
	b.priority = p
	return b
}

// Build freezes the schema. The label set is the schema's own label followed
// by the trait union in declaration order, duplicates removed.
func (b *NodeSchemaBuilder) Build() *NodeSchema {
	s := &NodeSchema{
		label:    b.label,
		traits:   append([]*NodeSchema(nil), b.traits...),
		priority: b.priority,
	}

	seen := map[string]struct{}{b.label: {}}
	s.labels = []string{b.label}
	for _, t := range b.traits {
		for _, l := range t.labels {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			s.labels = append(s.labels, l)
		}
	}

	// Trait fields first, own declarations override by name.
	byName := map[string]int{}
	for _, t := range b.traits {
		for _, f := range t.fields {
			if i, ok := byName[f.Name]; ok {
				s.fields[i] = f
				continue
			}
			byName[f.Name] = len(s.fields)
			s.fields = append(s.fields, f)
		}
	}
	for _, f := range b.fields {
		if i, ok := byName[f.Name]; ok {
			s.fields[i] = f
			continue
		}
		byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s
}

// Label returns the schema's own declared label.
func (s *NodeSchema) Label() string { return s.label }

// Labels returns the full label set: own label first, then trait labels in
// declaration order.
func (s *NodeSchema) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Priority returns the dispatch tie-break rank.
func (s *NodeSchema) Priority() int { return s.priority }

// Fields returns the effective field descriptors.
func (s *NodeSchema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Field looks up an effective field descriptor by name.
func (s *NodeSchema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// constraintLabel resolves the label a field's constraints are keyed to.
func constraintLabel(ownLabel string, f Field) string {
	if f.Label != "" {
		return f.Label
	}
	return ownLabel
}

// ownDescriptors derives constraints and indexes from fields declared
// directly on this schema, keyed by its own label (or a field override).
func (s *NodeSchema) ownDescriptors() ([]db.Constraint, []db.Index) {
	var constraints []db.Constraint
	var indexes []db.Index
	for _, f := range s.declaredFields() {
		label := constraintLabel(s.label, f)
		if f.Exists {
			constraints = append(constraints, db.Constraint{Label: label, Properties: []string{f.Name}, Kind: db.ConstraintExists})
		}
		if f.Unique {
			constraints = append(constraints, db.Constraint{Label: label, Properties: []string{f.Name}, Kind: db.ConstraintUnique})
		}
		if f.Index {
			indexes = append(indexes, db.Index{Label: label, Property: f.Name})
		}
	}
	return constraints, indexes
}

// declaredFields returns the fields declared on this schema itself, i.e. the
// effective fields minus those inherited unchanged from traits.
func (s *NodeSchema) declaredFields() []Field {
	inherited := map[string]Field{}
	for _, t := range s.traits {
		for _, f := range t.fields {
			inherited[f.Name] = f
		}
	}
	var own []Field
	for _, f := range s.fields {
		if inh, ok := inherited[f.Name]; ok && sameField(inh, f) {
			continue
		}
		own = append(own, f)
	}
	return own
}

// sameField reports whether two fields declare identical behavior. Default
// may hold a slice or map, so it needs a structural comparison rather than ==.
func sameField(a, b Field) bool {
	return a.Name == b.Name &&
		a.HasDefault == b.HasDefault &&
		a.Index == b.Index &&
		a.Exists == b.Exists &&
		a.Unique == b.Unique &&
		a.OnDisk == b.OnDisk &&
		a.Label == b.Label &&
		reflect.DeepEqual(a.Default, b.Default)
}

// Constraints collects the schema's constraint descriptors: its own plus
// every trait's, each keyed by the label that declared the field. Duplicate
// (label, property, kind) triples collapse to one descriptor.
func (s *NodeSchema) Constraints() []db.Constraint {
	seen := map[string]struct{}{}
	var out []db.Constraint
	var walk func(schema *NodeSchema)
	walk = func(schema *NodeSchema) {
		constraints, _ := schema.ownDescriptors()
		for _, c := range constraints {
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			out = append(out, c)
		}
		for _, t := range schema.traits {
			walk(t)
		}
	}
	walk(s)
	return out
}

// Indexes collects the schema's index descriptors, trait-inclusive and
// de-duplicated like Constraints.
func (s *NodeSchema) Indexes() []db.Index {
	seen := map[string]struct{}{}
	var out []db.Index
	var walk func(schema *NodeSchema)
	walk = func(schema *NodeSchema) {
		_, indexes := schema.ownDescriptors()
		for _, idx := range indexes {
			if _, ok := seen[idx.Key()]; ok {
				continue
			}
			seen[idx.Key()] = struct{}{}
			out = append(out, idx)
		}
		for _, t := range schema.traits {
			walk(t)
		}
	}
	walk(s)
	return out
}

// New instantiates a node bound to this schema. Unset fields with defaults
// are filled in; unknown property keys are rejected when the schema declares
// any fields.
func (s *NodeSchema) New(props cypher.Props) (*Node, error) {
	properties := map[string]any{}
	if len(s.fields) > 0 {
		for key := range props {
			if _, ok := s.Field(key); !ok {
				return nil, validationErr(s.label, "unknown property %q", key)
			}
		}
	}
	for k, v := range props {
		properties[k] = v
	}
	for _, f := range s.fields {
		if _, set := properties[f.Name]; !set && f.HasDefault {
			properties[f.Name] = f.Default
		}
	}
	return &Node{
		labels: s.Labels(),
		props:  properties,
		schema: s,
	}, nil
}

// MustNew is New for statically-known property sets; it panics on a schema
// violation.
func (s *NodeSchema) MustNew(props cypher.Props) *Node {
	n, err := s.New(props)
	if err != nil {
		panic(fmt.Sprintf("ogm: %v", err))
	}
	return n
}

// RelationshipSchema is an immutable descriptor for a relationship type.
type RelationshipSchema struct {
	relType string
	fields  []Field
}

// RelationshipSchemaBuilder assembles a RelationshipSchema.
type RelationshipSchemaBuilder struct {
	relType string
	fields  []Field
}

// NewRelationshipSchema starts a schema for relationships with the given
// type tag.
func NewRelationshipSchema(relType string) *RelationshipSchemaBuilder {
	return &RelationshipSchemaBuilder{relType: relType}
}

// Field declares a property on the relationship.
func (b *RelationshipSchemaBuilder) Field(name string, opts ...FieldOption) *RelationshipSchemaBuilder {
	f := Field{Name: name}
	for _, opt := range opts {
		opt(&f)
	}
	b.fields = append(b.fields, f)
	return b
}

// Build freezes the schema.
func (b *RelationshipSchemaBuilder) Build() *RelationshipSchema {
	return &RelationshipSchema{
		relType: b.relType,
		fields:  append([]Field(nil), b.fields...),
	}
}

// Type returns the relationship type tag.
func (s *RelationshipSchema) Type() string { return s.relType }

// Fields returns the declared field descriptors.
func (s *RelationshipSchema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// New instantiates a relationship bound to this schema. Endpoint ids may be
// zero-valued pointers until the endpoints are saved.
func (s *RelationshipSchema) New(startID, endID *int64, props cypher.Props) (*Relationship, error) {
	properties := map[string]any{}
	if len(s.fields) > 0 {
		for key := range props {
			found := false
			for _, f := range s.fields {
				if f.Name == key {
					found = true
					break
				}
			}
			if !found {
				return nil, validationErr(s.relType, "unknown property %q", key)
			}
		}
	}
	for k, v := range props {
		properties[k] = v
	}
	for _, f := range s.fields {
		if _, set := properties[f.Name]; !set && f.HasDefault {
			properties[f.Name] = f.Default
		}
	}
	return &Relationship{
		relType: s.relType,
		startID: startID,
		endID:   endID,
		props:   properties,
		schema:  s,
	}, nil
}
