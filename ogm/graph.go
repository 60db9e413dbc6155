package ogm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/memgraph/ogm/cypher"
)

// Node is an in-memory graph vertex. Its id is nil until the node has been
// saved or loaded; labels and properties are mutable until then.
type Node struct {
	id     *int64
	labels []string
	props  map[string]any
	schema *NodeSchema
}

// NewNode builds a schema-less node with the given labels.
func NewNode(labels []string, props cypher.Props) *Node {
	properties := map[string]any{}
	for k, v := range props {
		properties[k] = v
	}
	return &Node{
		labels: append([]string(nil), labels...),
		props:  properties,
	}
}

// ID returns the graph-assigned id, or false when the node is unsaved.
func (n *Node) ID() (int64, bool) {
	if n.id == nil {
		return 0, false
	}
	return *n.id, true
}

// Labels returns the node's label set in declaration order.
func (n *Node) Labels() []string {
	return append([]string(nil), n.labels...)
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Property returns a property value and whether it is set.
func (n *Node) Property(key string) (any, bool) {
	v, ok := n.props[key]
	return v, ok
}

// SetProperty sets a property. When the node is schema-bound the key must be
// a declared field.
func (n *Node) SetProperty(key string, value any) error {
	if n.schema != nil && len(n.schema.fields) > 0 {
		if _, ok := n.schema.Field(key); !ok {
			return validationErr(n.schema.label, "unknown property %q", key)
		}
	}
	if n.props == nil {
		n.props = map[string]any{}
	}
	n.props[key] = value
	return nil
}

// Properties returns a copy of the node's property map.
func (n *Node) Properties() map[string]any {
	out := make(map[string]any, len(n.props))
	for k, v := range n.props {
		out[k] = v
	}
	return out
}

// Schema returns the node's schema, or nil for generic nodes.
func (n *Node) Schema() *NodeSchema { return n.schema }

// PatternLabels implements cypher.NodeEntity.
func (n *Node) PatternLabels() []string { return n.Labels() }

// PatternProperties implements cypher.NodeEntity. On-disk fields never enter
// the graph pattern.
func (n *Node) PatternProperties() map[string]any {
	out := make(map[string]any, len(n.props))
	for k, v := range n.props {
		if n.schema != nil {
			if f, ok := n.schema.Field(k); ok && f.OnDisk {
				continue
			}
		}
		out[k] = v
	}
	return out
}

func (n *Node) String() string {
	keys := make([]string, 0, len(n.props))
	for k := range n.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(cypher.SerializeLabels(n.labels))
	b.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, n.props[k])
	}
	b.WriteString("})")
	return b.String()
}

// Relationship is an in-memory graph edge between two saved or about-to-be
// saved nodes.
type Relationship struct {
	id      *int64
	relType string
	startID *int64
	endID   *int64
	props   map[string]any
	schema  *RelationshipSchema
}

// NewRelationship builds a schema-less relationship of the given type.
func NewRelationship(relType string, startID, endID *int64, props cypher.Props) *Relationship {
	properties := map[string]any{}
	for k, v := range props {
		properties[k] = v
	}
	return &Relationship{
		relType: relType,
		startID: startID,
		endID:   endID,
		props:   properties,
	}
}

// ID returns the graph-assigned id, or false when the relationship is
// unsaved.
func (r *Relationship) ID() (int64, bool) {
	if r.id == nil {
		return 0, false
	}
	return *r.id, true
}

// Type returns the relationship type tag.
func (r *Relationship) Type() string { return r.relType }

// StartID returns the start node id, or false when unset.
func (r *Relationship) StartID() (int64, bool) {
	if r.startID == nil {
		return 0, false
	}
	return *r.startID, true
}

// EndID returns the end node id, or false when unset.
func (r *Relationship) EndID() (int64, bool) {
	if r.endID == nil {
		return 0, false
	}
	return *r.endID, true
}

// SetEndpoints binds the relationship to saved endpoint ids.
func (r *Relationship) SetEndpoints(startID, endID int64) {
	r.startID = &startID
	r.endID = &endID
}

// Property returns a property value and whether it is set.
func (r *Relationship) Property(key string) (any, bool) {
	v, ok := r.props[key]
	return v, ok
}

// SetProperty sets a property, schema-checked like Node.SetProperty.
func (r *Relationship) SetProperty(key string, value any) error {
	if r.schema != nil && len(r.schema.fields) > 0 {
		found := false
		for _, f := range r.schema.fields {
			if f.Name == key {
				found = true
				break
			}
		}
		if !found {
			return validationErr(r.relType, "unknown property %q", key)
		}
	}
	if r.props == nil {
		r.props = map[string]any{}
	}
	r.props[key] = value
	return nil
}

// Properties returns a copy of the relationship's property map.
func (r *Relationship) Properties() map[string]any {
	out := make(map[string]any, len(r.props))
	for k, v := range r.props {
		out[k] = v
	}
	return out
}

// Schema returns the relationship's schema, or nil for generic ones.
func (r *Relationship) Schema() *RelationshipSchema { return r.schema }

// PatternType implements cypher.RelationshipEntity.
func (r *Relationship) PatternType() string { return r.relType }

// PatternProperties implements cypher.RelationshipEntity.
func (r *Relationship) PatternProperties() map[string]any {
	return r.Properties()
}

// Path is an alternating node/relationship sequence as returned by path
// queries. It always holds len(nodes) == len(relationships)+1.
type Path struct {
	nodes         []*Node
	relationships []*Relationship
}

// NewPath validates the alternation invariant and builds a path.
func NewPath(nodes []*Node, relationships []*Relationship) (*Path, error) {
	if len(nodes) == 0 || len(nodes) != len(relationships)+1 {
		return nil, fmt.Errorf("path requires len(nodes) == len(relationships)+1, got %d nodes and %d relationships",
			len(nodes), len(relationships))
	}
	return &Path{
		nodes:         append([]*Node(nil), nodes...),
		relationships: append([]*Relationship(nil), relationships...),
	}, nil
}

// Nodes returns the path's nodes in traversal order.
func (p *Path) Nodes() []*Node {
	return append([]*Node(nil), p.nodes...)
}

// Relationships returns the path's relationships in traversal order.
func (p *Path) Relationships() []*Relationship {
	return append([]*Relationship(nil), p.relationships...)
}

// Len returns the number of relationships in the path.
func (p *Path) Len() int { return len(p.relationships) }
