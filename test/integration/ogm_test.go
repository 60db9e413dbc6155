//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memgraph/ogm/cypher"
	"github.com/memgraph/ogm/memgraph"
	"github.com/memgraph/ogm/ogm"
	"github.com/memgraph/ogm/test/integration/containerrunner"
)

// modelClient opens a client whose fetched rows are rewritten through the
// given registry, the wiring the model layer expects.
func modelClient(t *testing.T, reg *ogm.Registry) *memgraph.Client {
	t.Helper()
	ctx := context.Background()

	c, err := memgraph.NewClient(ctx, containerrunner.GetConfig(), memgraph.WithConverter(reg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestNode_SaveAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Field("age").
		Build()
	require.NoError(t, reg.RegisterNode(person))

	conn := modelClient(t, reg)

	ron := person.MustNew(cypher.Props{"name": "Ron", "age": 35})
	require.NoError(t, ron.Save(ctx, conn))

	id, ok := ron.ID()
	require.True(t, ok, "save should adopt the server-assigned id")

	// A fresh instance with the unique key loads the stored state.
	loaded := person.MustNew(cypher.Props{"name": "Ron"})
	require.NoError(t, loaded.Load(ctx, conn))

	loadedID, ok := loaded.ID()
	require.True(t, ok)
	assert.Equal(t, id, loadedID)

	age, ok := loaded.Property("age")
	require.True(t, ok)
	assert.Equal(t, int64(35), age)
}

func TestNode_SaveUpdatesExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Field("age").
		Build()
	require.NoError(t, reg.RegisterNode(person))

	conn := modelClient(t, reg)

	ron := person.MustNew(cypher.Props{"name": "Ron", "age": 35})
	require.NoError(t, ron.Save(ctx, conn))
	firstID, _ := ron.ID()

	// Saving an instance with the same unique key adopts the stored node
	// instead of creating a duplicate.
	older := person.MustNew(cypher.Props{"name": "Ron", "age": 36})
	require.NoError(t, older.Save(ctx, conn))
	secondID, _ := older.ID()
	assert.Equal(t, firstID, secondID)

	loaded := person.MustNew(cypher.Props{"name": "Ron"})
	require.NoError(t, loaded.Load(ctx, conn))

	age, _ := loaded.Property("age")
	assert.Equal(t, int64(36), age)
}

func TestNode_LoadMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Build()
	require.NoError(t, reg.RegisterNode(person))

	conn := modelClient(t, reg)

	ghost := person.MustNew(cypher.Props{"name": "Nobody"})
	err := ghost.Load(ctx, conn)
	require.ErrorIs(t, err, ogm.ErrNotFound)
}

func TestNode_GetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Field("age").
		Build()
	require.NoError(t, reg.RegisterNode(person))

	conn := modelClient(t, reg)

	first := person.MustNew(cypher.Props{"name": "Ann", "age": 28})
	created, err := first.GetOrCreate(ctx, conn)
	require.NoError(t, err)
	assert.True(t, created)

	second := person.MustNew(cypher.Props{"name": "Ann"})
	created, err = second.GetOrCreate(ctx, conn)
	require.NoError(t, err)
	assert.False(t, created)

	age, _ := second.Property("age")
	assert.Equal(t, int64(28), age)
}

func TestRelationship_SaveAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()
	relType := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Build()
	rated := ogm.NewRelationshipSchema(relType).
		Field("stars").
		Build()
	require.NoError(t, reg.RegisterNode(person))
	require.NoError(t, reg.RegisterRelationship(rated))

	conn := modelClient(t, reg)

	alice := person.MustNew(cypher.Props{"name": "Alice"})
	movie := person.MustNew(cypher.Props{"name": "Bob"})
	require.NoError(t, alice.Save(ctx, conn))
	require.NoError(t, movie.Save(ctx, conn))

	startID, _ := alice.ID()
	endID, _ := movie.ID()

	rel, err := rated.New(&startID, &endID, cypher.Props{"stars": 5})
	require.NoError(t, err)
	require.NoError(t, rel.Save(ctx, conn))

	_, ok := rel.ID()
	require.True(t, ok, "save should adopt the server-assigned id")

	loaded, err := rated.New(&startID, &endID, nil)
	require.NoError(t, err)
	require.NoError(t, loaded.Load(ctx, conn))

	stars, _ := loaded.Property("stars")
	assert.Equal(t, int64(5), stars)
}

func TestRegistry_ConvertFetchedGraph(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	label := uniqueLabel()

	reg := ogm.NewRegistry()
	person := ogm.NewNodeSchema(label).
		Field("name", ogm.Unique()).
		Build()
	require.NoError(t, reg.RegisterNode(person))

	conn := modelClient(t, reg)

	ron := person.MustNew(cypher.Props{"name": "Ron"})
	require.NoError(t, ron.Save(ctx, conn))

	rows, err := cypher.Match(cypher.WithConnection(conn)).
		Node(cypher.NodePattern{Variable: "p", Labels: []string{label}}).
		Return("p").
		Fetch(ctx)
	require.NoError(t, err)
	defer func() { _ = rows.Close(ctx) }()

	require.True(t, rows.Next(ctx))
	node, ok := rows.Values()["p"].(*ogm.Node)
	require.True(t, ok, "expected a model node, got %T", rows.Values()["p"])

	name, _ := node.Property("name")
	assert.Equal(t, "Ron", name)
	assert.True(t, node.HasLabel(label))
	require.NoError(t, rows.Err())
}
