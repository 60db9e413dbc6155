package memgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/memgraph/ogm/db"
)

// Statement builders are split out so the exact server syntax is testable
// without a connection.

func createIndexStatement(index db.Index) string {
	if index.Property == "" {
		return fmt.Sprintf("CREATE INDEX ON :%s", index.Label)
	}
	return fmt.Sprintf("CREATE INDEX ON :%s(%s)", index.Label, index.Property)
}

func dropIndexStatement(index db.Index) string {
	if index.Property == "" {
		return fmt.Sprintf("DROP INDEX ON :%s", index.Label)
	}
	return fmt.Sprintf("DROP INDEX ON :%s(%s)", index.Label, index.Property)
}

func constraintAssertion(constraint db.Constraint) (string, error) {
	switch constraint.Kind {
	case db.ConstraintExists:
		if len(constraint.Properties) != 1 {
			return "", fmt.Errorf("existence constraint requires exactly one property, got %d", len(constraint.Properties))
		}
		return fmt.Sprintf("EXISTS (n.%s)", constraint.Properties[0]), nil
	case db.ConstraintUnique:
		if len(constraint.Properties) == 0 {
			return "", fmt.Errorf("uniqueness constraint requires at least one property")
		}
		refs := make([]string, len(constraint.Properties))
		for i, p := range constraint.Properties {
			refs[i] = "n." + p
		}
		return strings.Join(refs, ", ") + " IS UNIQUE", nil
	default:
		return "", fmt.Errorf("unknown constraint kind %q", constraint.Kind)
	}
}

func createConstraintStatement(constraint db.Constraint) (string, error) {
	assertion, err := constraintAssertion(constraint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE CONSTRAINT ON (n:%s) ASSERT %s", constraint.Label, assertion), nil
}

func dropConstraintStatement(constraint db.Constraint) (string, error) {
	assertion, err := constraintAssertion(constraint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DROP CONSTRAINT ON (n:%s) ASSERT %s", constraint.Label, assertion), nil
}

// GetIndexes reads the server's index catalog via SHOW INDEX INFO.
func (c *Client) GetIndexes(ctx context.Context) ([]db.Index, error) {
	rows, err := c.ExecuteAndFetch(ctx, "SHOW INDEX INFO", nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	var indexes []db.Index
	for rows.Next(ctx) {
		values := rows.Values()
		kind, _ := values["index type"].(string)
		label, _ := values["label"].(string)
		switch kind {
		case "label":
			indexes = append(indexes, db.Index{Label: label})
		case "label+property":
			property, _ := values["property"].(string)
			indexes = append(indexes, db.Index{Label: label, Property: property})
		default:
			// Edge or point indexes are outside the managed set.
			continue
		}
	}
	return indexes, rows.Err()
}

// CreateIndex creates a label or label-property index.
func (c *Client) CreateIndex(ctx context.Context, index db.Index) error {
	return c.Execute(ctx, createIndexStatement(index), nil)
}

// DropIndex drops an index.
func (c *Client) DropIndex(ctx context.Context, index db.Index) error {
	return c.Execute(ctx, dropIndexStatement(index), nil)
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

// GetConstraints reads the server's constraint catalog via SHOW CONSTRAINT
// INFO.
func (c *Client) GetConstraints(ctx context.Context) ([]db.Constraint, error) {
	rows, err := c.ExecuteAndFetch(ctx, "SHOW CONSTRAINT INFO", nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close(ctx)

	var constraints []db.Constraint
	for rows.Next(ctx) {
		values := rows.Values()
		kind, _ := values["constraint type"].(string)
		label, _ := values["label"].(string)
		properties := constraintProperties(values["properties"])
		switch kind {
		case "exists":
			constraints = append(constraints, db.Constraint{Label: label, Properties: properties, Kind: db.ConstraintExists})
		case "unique":
			constraints = append(constraints, db.Constraint{Label: label, Properties: properties, Kind: db.ConstraintUnique})
		default:
			continue
		}
	}
	return constraints, rows.Err()
}

// constraintProperties normalizes the properties column, which the server
// returns as a bare string for single-property constraints and a list for
// composites.
func constraintProperties(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
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
	default:
		return nil
	}
}

// CreateConstraint creates an existence or uniqueness constraint.
func (c *Client) CreateConstraint(ctx context.Context, constraint db.Constraint) error {
	stmt, err := createConstraintStatement(constraint)
	if err != nil {
		return err
	}
	return c.Execute(ctx, stmt, nil)
}

// DropConstraint drops a constraint.
func (c *Client) DropConstraint(ctx context.Context, constraint db.Constraint) error {
	stmt, err := dropConstraintStatement(constraint)
	if err != nil {
		return err
	}
	return c.Execute(ctx, stmt, nil)
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
