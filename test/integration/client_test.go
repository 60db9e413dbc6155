//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memgraph/ogm/cypher"
)

func TestClient_ExecuteAndFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	err := client.Execute(ctx, "CREATE (:"+label+" {name: $name})", map[string]any{"name": "Alice"})
	require.NoError(t, err)

	rows, err := client.ExecuteAndFetch(ctx, "MATCH (n:"+label+") RETURN n", nil)
	require.NoError(t, err)
	defer func() { _ = rows.Close(ctx) }()

	require.True(t, rows.Next(ctx))
	node, ok := rows.Values()["n"].(dbtype.Node)
	require.True(t, ok, "expected a raw driver node, got %T", rows.Values()["n"])
	assert.Equal(t, "Alice", node.Props["name"])

	assert.False(t, rows.Next(ctx))
	require.NoError(t, rows.Err())
}

func TestClient_ExecuteReportsServerErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	err := client.Execute(ctx, "THIS IS NOT CYPHER", nil)
	require.Error(t, err)
}

func TestBuilder_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	err := cypher.Create(cypher.WithConnection(client)).
		Node(cypher.NodePattern{Labels: []string{label}, Properties: cypher.Props{"name": "Ron", "age": 35}}).
		Execute(ctx)
	require.NoError(t, err)

	got, err := cypher.Match(cypher.WithConnection(client)).
		Node(cypher.NodePattern{Variable: "p", Labels: []string{label}}).
		Where("p.age", cypher.OpGreaterThan, cypher.Literal(30)).
		Return(cypher.As("p.name", "name")).
		GetSingle(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ron", got)
}

func TestBuilder_ParametersTravelToServer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	err := client.Execute(ctx, "CREATE (:"+label+" {name: 'Ann'}), (:"+label+" {name: 'Bob'})", nil)
	require.NoError(t, err)

	rows, err := cypher.Match(
		cypher.WithConnection(client),
		cypher.WithParameters(map[string]any{"name": "Bob"}),
	).
		Node(cypher.NodePattern{Variable: "p", Labels: []string{label}}).
		Where("p.name", cypher.OpEqual, cypher.Expr("$name")).
		Return("p").
		Fetch(ctx)
	require.NoError(t, err)
	defer func() { _ = rows.Close(ctx) }()

	var names []string
	for rows.Next(ctx) {
		node := rows.Values()["p"].(dbtype.Node)
		names = append(names, node.Props["name"].(string))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Bob"}, names)
}

func TestBuilder_UnwindAndOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rows, err := cypher.Unwind("[3, 1, 2]", "x", cypher.WithConnection(client)).
		Return("x").
		OrderBy("x").
		Fetch(ctx)
	require.NoError(t, err)
	defer func() { _ = rows.Close(ctx) }()

	var got []int64
	for rows.Next(ctx) {
		got = append(got, rows.Values()["x"].(int64))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2, 3}, got)
}
