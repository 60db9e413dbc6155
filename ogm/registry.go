package ogm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/memgraph/ogm/db"
)

// Registry maps label sets to node schemas and type tags to relationship
// schemas, and dispatches raw database records to the most specific
// registered schema. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*NodeSchema
	rels  map[string]*RelationshipSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes: map[string]*NodeSchema{},
		rels:  map[string]*RelationshipSchema{},
	}
}

func labelKey(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// RegisterNode adds a node schema. Registering a second schema with the same
// label set fails.
func (r *Registry) RegisterNode(s *NodeSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := labelKey(s.Labels())
	if existing, ok := r.nodes[key]; ok {
		return fmt.Errorf("node schema for labels %v already registered as %q", s.Labels(), existing.Label())
	}
	r.nodes[key] = s
	return nil
}

// RegisterRelationship adds a relationship schema. One schema per type tag.
func (r *Registry) RegisterRelationship(s *RelationshipSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rels[s.Type()]; ok {
		return fmt.Errorf("relationship schema for type %q already registered", s.Type())
	}
	r.rels[s.Type()] = s
	return nil
}

// Reset drops all registered schemas.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = map[string]*NodeSchema{}
	r.rels = map[string]*RelationshipSchema{}
}

// ResolveNode picks the schema for a stored label set. A schema is a
// candidate when all of its labels appear on the record; among candidates
// the one matching the most labels wins, then the highest Priority. Two
// candidates left standing is an AmbiguousDispatchError. No candidate at all
// resolves to nil, meaning a generic Node should be produced.
func (r *Registry) ResolveNode(labels []string) (*NodeSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	have := map[string]struct{}{}
	for _, l := range labels {
		have[l] = struct{}{}
	}

	var candidates []*NodeSchema
	best := 0
	for _, s := range r.nodes {
		matched := 0
		subset := true
		for _, l := range s.Labels() {
			if _, ok := have[l]; !ok {
				subset = false
				break
			}
			matched++
		}
		if !subset {
			continue
		}
		switch {
		case matched > best:
			best = matched
			candidates = candidates[:0]
			candidates = append(candidates, s)
		case matched == best && matched > 0:
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	top := candidates[0].Priority()
	winners := []*NodeSchema{candidates[0]}
	for _, s := range candidates[1:] {
		switch {
		case s.Priority() > top:
			top = s.Priority()
			winners = winners[:0]
			winners = append(winners, s)
		case s.Priority() == top:
			winners = append(winners, s)
		}
	}
	if len(winners) == 1 {
		return winners[0], nil
	}

	names := make([]string, len(winners))
	for i, s := range winners {
		names[i] = s.Label()
	}
	sort.Strings(names)
	return nil, &AmbiguousDispatchError{Labels: labels, Candidates: names}
}

// ResolveRelationship picks the schema for a relationship type, or nil when
// none is registered.
func (r *Registry) ResolveRelationship(relType string) *RelationshipSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rels[relType]
}

// Constraints aggregates every registered schema's constraints, duplicates
// removed, in a stable order.
func (r *Registry) Constraints() []db.Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []db.Constraint
	for _, s := range r.sortedNodes() {
		for _, c := range s.Constraints() {
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Indexes aggregates every registered schema's indexes, duplicates removed,
// in a stable order.
func (r *Registry) Indexes() []db.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []db.Index
	for _, s := range r.sortedNodes() {
		for _, idx := range s.Indexes() {
			if _, ok := seen[idx.Key()]; ok {
				continue
			}
			seen[idx.Key()] = struct{}{}
			out = append(out, idx)
		}
	}
	return out
}

// sortedNodes returns registered node schemas ordered by own label, for
// deterministic aggregation. Callers hold the lock.
func (r *Registry) sortedNodes() []*NodeSchema {
	out := make([]*NodeSchema, 0, len(r.nodes))
	for _, s := range r.nodes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}

// EnsureSchema reconciles the database's indexes and constraints with the
// registry's declarations: anything declared but missing is created,
// anything present but undeclared is dropped.
func (r *Registry) EnsureSchema(ctx context.Context, client db.Client) error {
	if err := client.EnsureIndexes(ctx, r.Indexes()); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}
	if err := client.EnsureConstraints(ctx, r.Constraints()); err != nil {
		return fmt.Errorf("failed to ensure constraints: %w", err)
	}
	return nil
}
