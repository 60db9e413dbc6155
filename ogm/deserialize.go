package ogm

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/memgraph/ogm/db"
)

// Convert implements db.ValueConverter over the registry: driver graph
// values become *Node, *Relationship, and *Path instances dispatched through
// registered schemas; driver temporal values become their closest Go
// representation; containers are converted recursively.
func (r *Registry) Convert(value any) (any, error) {
	switch v := value.(type) {
	case dbtype.Node:
		return r.convertNode(v)
	case dbtype.Relationship:
		return r.convertRelationship(v)
	case dbtype.Path:
		return r.convertPath(v)
	case dbtype.Date:
		return v.Time(), nil
	case dbtype.LocalTime:
		return time.Time(v), nil
	case dbtype.Time:
		return time.Time(v), nil
	case dbtype.LocalDateTime:
		return time.Time(v), nil
	case dbtype.Duration:
		// No lossless Go equivalent for a calendar duration; pass it through.
		return v, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := r.Convert(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			converted, err := r.Convert(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	default:
		return value, nil
	}
}

func (r *Registry) convertNode(v dbtype.Node) (*Node, error) {
	props, err := r.convertProps(v.Props)
	if err != nil {
		return nil, err
	}
	schema, err := r.ResolveNode(v.Labels)
	if err != nil {
		return nil, err
	}
	id := v.Id
	return &Node{
		id:     &id,
		labels: append([]string(nil), v.Labels...),
		props:  props,
		schema: schema,
	}, nil
}

func (r *Registry) convertRelationship(v dbtype.Relationship) (*Relationship, error) {
	props, err := r.convertProps(v.Props)
	if err != nil {
		return nil, err
	}
	id, startID, endID := v.Id, v.StartId, v.EndId
	return &Relationship{
		id:      &id,
		relType: v.Type,
		startID: &startID,
		endID:   &endID,
		props:   props,
		schema:  r.ResolveRelationship(v.Type),
	}, nil
}

func (r *Registry) convertPath(v dbtype.Path) (*Path, error) {
	nodes := make([]*Node, len(v.Nodes))
	for i, n := range v.Nodes {
		converted, err := r.convertNode(n)
		if err != nil {
			return nil, err
		}
		nodes[i] = converted
	}
	rels := make([]*Relationship, len(v.Relationships))
	for i, rel := range v.Relationships {
		converted, err := r.convertRelationship(rel)
		if err != nil {
			return nil, err
		}
		rels[i] = converted
	}
	return NewPath(nodes, rels)
}

func (r *Registry) convertProps(props map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(props))
	for k, v := range props {
		converted, err := r.Convert(v)
		if err != nil {
			return nil, err
		}
		out[k] = converted
	}
	return out, nil
}

var _ db.ValueConverter = (*Registry)(nil)
