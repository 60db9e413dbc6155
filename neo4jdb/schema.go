package neo4jdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/memgraph/ogm/db"
)

func createIndexStatement(index db.Index) (string, error) {
	if index.Property == "" {
		return "", fmt.Errorf("neo4j indexes require a property, label-only index on :%s is not supported", index.Label)
	}
	return fmt.Sprintf("CREATE INDEX FOR (n:%s) ON (n.%s)", index.Label, index.Property), nil
}

func createConstraintStatement(constraint db.Constraint) (string, error) {
	switch constraint.Kind {
	case db.ConstraintExists:
		if len(constraint.Properties) != 1 {
			return "", fmt.Errorf("existence constraint requires exactly one property, got %d", len(constraint.Properties))
		}
		return fmt.Sprintf("CREATE CONSTRAINT FOR (n:%s) REQUIRE n.%s IS NOT NULL",
			constraint.Label, constraint.Properties[0]), nil
	case db.ConstraintUnique:
		if len(constraint.Properties) == 0 {
			return "", fmt.Errorf("uniqueness constraint requires at least one property")
		}
		refs := make([]string, len(constraint.Properties))
		for i, p := range constraint.Properties {
			refs[i] = "n." + p
		}
		requirement := refs[0]
		if len(refs) > 1 {
			requirement = "(" + strings.Join(refs, ", ") + ")"
		}
		return fmt.Sprintf("CREATE CONSTRAINT FOR (n:%s) REQUIRE %s IS UNIQUE",
			constraint.Label, requirement), nil
	default:
		return "", fmt.Errorf("unknown constraint kind %q", constraint.Kind)
	}
}

func (c *Client) rememberName(key, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[key] = name
}

func (c *Client) lookupName(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[key]
	return name, ok
}

// GetIndexes reads the server's index catalog via SHOW INDEXES. Indexes
// backing constraints and token lookup indexes are excluded; drop names are
// cached for DropIndex.
func (c *Client) GetIndexes(ctx context.Context) ([]db.Index, error) {
	rows, err := c.ExecuteAndFetch(ctx, "SHOW INDEXES", nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	var indexes []db.Index
	for rows.Next(ctx) {
		values := rows.Values()
		if owner, ok := values["owningConstraint"].(string); ok && owner != "" {
			continue
		}
		labels := stringList(values["labelsOrTypes"])
		properties := stringList(values["properties"])
		if len(labels) != 1 || len(properties) != 1 {
			continue
		}
		index := db.Index{Label: labels[0], Property: properties[0]}
		if name, ok := values["name"].(string); ok {
			c.rememberName(index.Key(), name)
		}
		indexes = append(indexes, index)
	}
	return indexes, rows.Err()
}

// CreateIndex creates a label-property index.
func (c *Client) CreateIndex(ctx context.Context, index db.Index) error {
	stmt, err := createIndexStatement(index)
	if err != nil {
		return err
	}
	return c.Execute(ctx, stmt, nil)
}

// DropIndex drops an index. The server-side name must be known, which means
// a prior GetIndexes in this client's lifetime.
func (c *Client) DropIndex(ctx context.Context, index db.Index) error {
	name, ok := c.lookupName(index.Key())
	if !ok {
		return fmt.Errorf("no server-side name known for index %s", index.String())
	}
	return c.Execute(ctx, fmt.Sprintf("DROP INDEX %s IF EXISTS", name), nil)
}

// DropIndexes drops every index on the server.
func (c *Client) DropIndexes(ctx context.Context) error {
	current, err := c.GetIndexes(ctx)
	if err != nil {
		return err
	}
	for _, index := range current {
		if err := c.DropIndex(ctx, index); err != nil {
			return err
		}
	}
	return nil
}

// EnsureIndexes reconciles the server's indexes with the desired set.
func (c *Client) EnsureIndexes(ctx context.Context, indexes []db.Index) error {
	current, err := c.GetIndexes(ctx)
	if err != nil {
		return err
	}
	drop, create := db.DiffIndexes(current, indexes)
	for _, index := range drop {
		c.log.Debug("dropping index", "index", index.String(), "client_id", c.id)
		if err := c.DropIndex(ctx, index); err != nil {
			return err
		}
	}
	for _, index := range create {
		c.log.Debug("creating index", "index", index.String(), "client_id", c.id)
		if err := c.CreateIndex(ctx, index); err != nil {
			return err
		}
	}
	return nil
}

// GetConstraints reads the server's constraint catalog via SHOW CONSTRAINTS,
// caching drop names.
func (c *Client) GetConstraints(ctx context.Context) ([]db.Constraint, error) {
	rows, err := c.ExecuteAndFetch(ctx, "SHOW CONSTRAINTS", nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	var constraints []db.Constraint
	for rows.Next(ctx) {
		values := rows.Values()
		kind, _ := values["type"].(string)
		labels := stringList(values["labelsOrTypes"])
		properties := stringList(values["properties"])
		if len(labels) != 1 || len(properties) == 0 {
			continue
		}

		var constraint db.Constraint
		switch kind {
		case "UNIQUENESS", "NODE_KEY":
			constraint = db.Constraint{Label: labels[0], Properties: properties, Kind: db.ConstraintUnique}
		case "NODE_PROPERTY_EXISTENCE":
			constraint = db.Constraint{Label: labels[0], Properties: properties, Kind: db.ConstraintExists}
		default:
			continue
		}
		if name, ok := values["name"].(string); ok {
			c.rememberName(constraint.Key(), name)
		}
		constraints = append(constraints, constraint)
	}
	return constraints, rows.Err()
}

// CreateConstraint creates an existence or uniqueness constraint.
func (c *Client) CreateConstraint(ctx context.Context, constraint db.Constraint) error {
	stmt, err := createConstraintStatement(constraint)
	if err != nil {
		return err
	}
	return c.Execute(ctx, stmt, nil)
}

// DropConstraint drops a constraint by its cached server-side name.
func (c *Client) DropConstraint(ctx context.Context, constraint db.Constraint) error {
	name, ok := c.lookupName(constraint.Key())
	if !ok {
		return fmt.Errorf("no server-side name known for constraint %s", constraint.String())
	}
	return c.Execute(ctx, fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", name), nil)
}

// EnsureConstraints reconciles the server's constraints with the desired
// set.
func (c *Client) EnsureConstraints(ctx context.Context, constraints []db.Constraint) error {
	current, err := c.GetConstraints(ctx)
	if err != nil {
		return err
	}
	drop, create := db.DiffConstraints(current, constraints)
	for _, constraint := range drop {
		c.log.Debug("dropping constraint", "constraint", constraint.String(), "client_id", c.id)
		if err := c.DropConstraint(ctx, constraint); err != nil {
			return err
		}
	}
	for _, constraint := range create {
		c.log.Debug("creating constraint", "constraint", constraint.String(), "client_id", c.id)
		if err := c.CreateConstraint(ctx, constraint); err != nil {
			return err
		}
	}
	return nil
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case string:
		return []string{v}
	default:
		return nil
	}
}
