package ogm

import (
	"context"
	"errors"
	"sort"

	"github.com/memgraph/ogm/cypher"
	"github.com/memgraph/ogm/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// OpOption configures a persistence operation.
type OpOption func(*opOptions)

type opOptions struct {
	storage db.PropertyStorage
}

// WithPropertyStorage routes fields flagged OnDisk through the given storage
// instead of the graph.
func WithPropertyStorage(s db.PropertyStorage) OpOption {
	return func(o *opOptions) { o.storage = s }
}

func applyOpts(opts []OpOption) opOptions {
	var o opOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// onDiskFields returns the node's set on-disk field values, or an error when
// on-disk fields are declared but no storage was supplied.
func (n *Node) onDiskFields(o opOptions) (map[string]string, error) {
	if n.schema == nil {
		return nil, nil
	}
	out := map[string]string{}
	for _, f := range n.schema.fields {
		if !f.OnDisk {
			continue
		}
		if o.storage == nil {
			return nil, validationErr(n.schema.label, "field %q is stored on disk but no property storage was provided", f.Name)
		}
		v, set := n.props[f.Name]
		if !set {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, validationErr(n.schema.label, "on-disk field %q requires a string value, got %T", f.Name, v)
		}
		out[f.Name] = s
	}
	return out, nil
}

// Save persists the node. An unsaved node with set unique fields is first
// matched against the graph: exactly one hit adopts that node's id and turns
// the save into an update, more than one is a validation failure. Saved
// nodes update their properties in place.
func (n *Node) Save(ctx context.Context, conn db.Executor, opts ...OpOption) error {
	o := applyOpts(opts)
	onDisk, err := n.onDiskFields(o)
	if err != nil {
		return err
	}

	if n.id == nil {
		if err := n.adoptByUniqueFields(ctx, conn); err != nil {
			return err
		}
	}

	if n.id == nil {
		if err := n.create(ctx, conn); err != nil {
			return err
		}
	} else {
		if err := n.update(ctx, conn); err != nil {
			return err
		}
	}

	for key, value := range onDisk {
		if err := o.storage.SaveProperty(ctx, *n.id, key, value); err != nil {
			return err
		}
	}
	return nil
}

// adoptByUniqueFields looks for an existing node carrying the same values in
// the schema's unique fields and adopts its id when exactly one exists.
func (n *Node) adoptByUniqueFields(ctx context.Context, conn db.Executor) error {
	if n.schema == nil {
		return nil
	}
	var unique []Field
	for _, f := range n.schema.fields {
		if !f.Unique {
			continue
		}
		if _, set := n.props[f.Name]; set {
			unique = append(unique, f)
		}
	}
	if len(unique) == 0 {
		return nil
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Name < unique[j].Name })

	q := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "node", Labels: n.labels})
	for i, f := range unique {
		if i == 0 {
			q = q.Where("node."+f.Name, cypher.OpEqual, cypher.Literal(n.props[f.Name]))
		} else {
			q = q.AndWhere("node."+f.Name, cypher.OpEqual, cypher.Literal(n.props[f.Name]))
		}
	}
	rows, err := q.Return(cypher.As("id(node)", "node_id")).Fetch(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	var ids []int64
	for rows.Next(ctx) {
		id, ok := asInt64(rows.Values()["node_id"])
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(ids) > 1 {
		return validationErr(n.schema.label, "unique fields match %d existing nodes", len(ids))
	}
	if len(ids) == 1 {
		n.id = &ids[0]
	}
	return nil
}

func (n *Node) create(ctx context.Context, conn db.Executor) error {
	rows, err := cypher.Create(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "node", Entity: n}).
		Return("node").
		Fetch(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	if !rows.Next(ctx) {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	saved, err := asNode(rows.Values()["node"])
	if err != nil {
		return err
	}
	n.id = saved.id
	return nil
}

func (n *Node) update(ctx context.Context, conn db.Executor) error {
	keys := sortedKeys(n.PatternProperties())
	if len(keys) == 0 {
		// Nothing to set; a MATCH with no SET is not a valid statement.
		return nil
	}
	q := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "node"}).
		Where("id(node)", cypher.OpEqual, cypher.Literal(*n.id))
	for _, key := range keys {
		q = q.Set("node."+key, cypher.OpAssignment, cypher.Literal(n.props[key]))
	}
	return q.Execute(ctx)
}

// Load fills the node in from the graph. An id locates the node directly;
// otherwise at least one unique or indexed field must be set. Locally set
// properties that disagree with the stored values are a validation failure;
// unset properties are populated from the store.
func (n *Node) Load(ctx context.Context, conn db.Executor, opts ...OpOption) error {
	o := applyOpts(opts)
	if n.schema != nil && o.storage == nil {
		for _, f := range n.schema.fields {
			if f.OnDisk {
				return validationErr(n.schema.label, "field %q is stored on disk but no property storage was provided", f.Name)
			}
		}
	}

	q := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "node", Labels: n.labels})

	if n.id != nil {
		q = q.Where("id(node)", cypher.OpEqual, cypher.Literal(*n.id))
	} else {
		keys, err := n.lookupKeys()
		if err != nil {
			return err
		}
		for i, key := range keys {
			if i == 0 {
				q = q.Where("node."+key, cypher.OpEqual, cypher.Literal(n.props[key]))
			} else {
				q = q.AndWhere("node."+key, cypher.OpEqual, cypher.Literal(n.props[key]))
			}
		}
	}

	rows, err := q.Return("node").Fetch(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	if !rows.Next(ctx) {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	loaded, err := asNode(rows.Values()["node"])
	if err != nil {
		return err
	}
	if rows.Next(ctx) {
		return ErrMultipleResults
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := n.absorb(loaded); err != nil {
		return err
	}

	if n.schema != nil && o.storage != nil {
		for _, f := range n.schema.fields {
			if !f.OnDisk {
				continue
			}
			v, err := o.storage.LoadProperty(ctx, *n.id, f.Name)
			if err != nil {
				return err
			}
			n.props[f.Name] = v
		}
	}
	return nil
}

// lookupKeys returns the set fields usable to locate the node: unique or
// indexed schema fields, or every set property for schema-less nodes.
func (n *Node) lookupKeys() ([]string, error) {
	entity := "node"
	if n.schema != nil {
		entity = n.schema.label
	}
	var keys []string
	if n.schema != nil && len(n.schema.fields) > 0 {
		for _, f := range n.schema.fields {
			if !f.Unique && !f.Index {
				continue
			}
			if _, set := n.props[f.Name]; set {
				keys = append(keys, f.Name)
			}
		}
	} else {
		for k := range n.props {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, validationErr(entity, "load requires an id or at least one set unique or indexed field")
	}
	sort.Strings(keys)
	return keys, nil
}

// absorb merges a loaded node into this one. Conflicting set properties are
// rejected; the comparison runs through the value serializer so numeric
// widths do not produce false mismatches.
func (n *Node) absorb(loaded *Node) error {
	entity := "node"
	if n.schema != nil {
		entity = n.schema.label
	}
	for k, local := range n.props {
		if n.schema != nil {
			if f, ok := n.schema.Field(k); ok && f.OnDisk {
				continue
			}
		}
		stored, ok := loaded.props[k]
		if !ok {
			continue
		}
		localText, err := cypher.Serialize(local)
		if err != nil {
			return err
		}
		storedText, err := cypher.Serialize(stored)
		if err != nil {
			return err
		}
		if localText != storedText {
			return validationErr(entity, "property %q conflicts with the stored value", k)
		}
	}
	for k, v := range loaded.props {
		if _, set := n.props[k]; !set {
			n.props[k] = v
		}
	}
	n.id = loaded.id
	n.labels = loaded.labels
	return nil
}

// GetOrCreate loads the node when it exists and saves it otherwise. The
// returned flag reports whether a new node was created.
func (n *Node) GetOrCreate(ctx context.Context, conn db.Executor, opts ...OpOption) (bool, error) {
	err := n.Load(ctx, conn, opts...)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := n.Save(ctx, conn, opts...); err != nil {
		return false, err
	}
	return true, nil
}

// Save persists the relationship between two already-saved endpoints.
func (r *Relationship) Save(ctx context.Context, conn db.Executor) error {
	entity := r.relType
	if r.startID == nil || r.endID == nil {
		return validationErr(entity, "both endpoint nodes must be saved before the relationship")
	}

	rows, err := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "start_node"}).
		Where("id(start_node)", cypher.OpEqual, cypher.Literal(*r.startID)).
		Match().
		Node(cypher.NodePattern{Variable: "end_node"}).
		Where("id(end_node)", cypher.OpEqual, cypher.Literal(*r.endID)).
		Create().
		Node(cypher.NodePattern{Variable: "start_node"}).
		To(cypher.RelationshipPattern{Variable: "rel", Entity: r}).
		Node(cypher.NodePattern{Variable: "end_node"}).
		Return("rel").
		Fetch(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	if !rows.Next(ctx) {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	saved, err := asRelationship(rows.Values()["rel"])
	if err != nil {
		return err
	}
	r.id = saved.id
	return nil
}

// Load fills the relationship in by id, or by endpoints and type when
// unsaved.
func (r *Relationship) Load(ctx context.Context, conn db.Executor) error {
	q := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "start_node"}).
		To(cypher.RelationshipPattern{Variable: "rel", Type: r.relType}).
		Node(cypher.NodePattern{Variable: "end_node"})

	switch {
	case r.id != nil:
		q = q.Where("id(rel)", cypher.OpEqual, cypher.Literal(*r.id))
	case r.startID != nil && r.endID != nil:
		q = q.Where("id(start_node)", cypher.OpEqual, cypher.Literal(*r.startID)).
			AndWhere("id(end_node)", cypher.OpEqual, cypher.Literal(*r.endID))
	default:
		return validationErr(r.relType, "load requires an id or both endpoint ids")
	}

	rows, err := q.Return("rel").Fetch(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	if !rows.Next(ctx) {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	loaded, err := asRelationship(rows.Values()["rel"])
	if err != nil {
		return err
	}
	if rows.Next(ctx) {
		return ErrMultipleResults
	}
	if err := rows.Err(); err != nil {
		return err
	}

	r.id = loaded.id
	r.startID = loaded.startID
	r.endID = loaded.endID
	for k, v := range loaded.props {
		if _, set := r.props[k]; !set {
			if r.props == nil {
				r.props = map[string]any{}
			}
			r.props[k] = v
		}
	}
	return nil
}

// asNode accepts both converted and raw driver node values; clients without
// a value converter hand back driver types directly.
func asNode(value any) (*Node, error) {
	switch v := value.(type) {
	case *Node:
		return v, nil
	case dbtype.Node:
		props := make(map[string]any, len(v.Props))
		for k, p := range v.Props {
			props[k] = p
		}
		id := v.Id
		return &Node{id: &id, labels: append([]string(nil), v.Labels...), props: props}, nil
	default:
		return nil, validationErr("node", "query returned %T instead of a node", value)
	}
}

func asRelationship(value any) (*Relationship, error) {
	switch v := value.(type) {
	case *Relationship:
		return v, nil
	case dbtype.Relationship:
		props := make(map[string]any, len(v.Props))
		for k, p := range v.Props {
			props[k] = p
		}
		id, startID, endID := v.Id, v.StartId, v.EndId
		return &Relationship{id: &id, relType: v.Type, startID: &startID, endID: &endID, props: props}, nil
	default:
		return nil, validationErr("relationship", "query returned %T instead of a relationship", value)
	}
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
