package ogm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/memgraph/ogm/cypher"
	"github.com/memgraph/ogm/db/mocks"
	"github.com/memgraph/ogm/ogm"
)

func TestNodeSave_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	rows := mocks.NewMockRows(ctrl)
	rows.EXPECT().Next(gomock.Any()).Return(true)
	rows.EXPECT().Values().Return(map[string]any{
		"node": dbtype.Node{Id: 42, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}},
	})
	rows.EXPECT().Close(gomock.Any()).Return(nil)

	conn := mocks.NewMockClient(ctrl)
	conn.EXPECT().
		ExecuteAndFetch(gomock.Any(), ` CREATE (node:Person {name: "Ron"}) RETURN node `, gomock.Any()).
		Return(rows, nil)

	n := ogm.NewNode([]string{"Person"}, cypher.Props{"name": "Ron"})
	require.NoError(t, n.Save(ctx, conn))

	id, saved := n.ID()
	assert.True(t, saved)
	assert.Equal(t, int64(42), id)
}

func TestNodeSave_UpdateExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	reg := ogm.NewRegistry()
	converted, err := reg.Convert(dbtype.Node{Id: 42, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}})
	require.NoError(t, err)
	n := converted.(*ogm.Node)
	require.NoError(t, n.SetProperty("age", 36))

	conn := mocks.NewMockClient(ctrl)
	conn.EXPECT().
		Execute(gomock.Any(), " MATCH (node) WHERE id(node) = 42 SET node.age = 36 SET node.name = 'Ron'", gomock.Any()).
		Return(nil)

	require.NoError(t, n.Save(ctx, conn))

	id, _ := n.ID()
	assert.Equal(t, int64(42), id, "identity survives updates")
}

func TestNodeSave_NoPropertiesSkipsUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	reg := ogm.NewRegistry()
	converted, err := reg.Convert(dbtype.Node{Id: 42, Labels: []string{"Person"}, Props: map[string]any{}})
	require.NoError(t, err)
	n := converted.(*ogm.Node)

	// No SET clauses to emit, so no statement reaches the server.
	conn := mocks.NewMockClient(ctrl)
	require.NoError(t, n.Save(ctx, conn))
}

func TestNodeSave_AdoptsUniqueMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	schema := ogm.NewNodeSchema("Person").
		Field("name", ogm.Unique()).
		Field("age").
		Build()
	n, err := schema.New(cypher.Props{"name": "Ron", "age": 35})
	require.NoError(t, err)

	lookup := mocks.NewMockRows(ctrl)
	lookup.EXPECT().Next(gomock.Any()).Return(true)
	lookup.EXPECT().Values().Return(map[string]any{"node_id": int64(7)})
	lookup.EXPECT().Next(gomock.Any()).Return(false)
	lookup.EXPECT().Err().Return(nil)
	lookup.EXPECT().Close(gomock.Any()).Return(nil)

	conn := mocks.NewMockClient(ctrl)
	conn.EXPECT().
		ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN id(node) AS node_id ", gomock.Any()).
		Return(lookup, nil)
	conn.EXPECT().
		Execute(gomock.Any(), " MATCH (node) WHERE id(node) = 7 SET node.age = 35 SET node.name = 'Ron'", gomock.Any()).
		Return(nil)

	require.NoError(t, n.Save(ctx, conn))

	id, saved := n.ID()
	assert.True(t, saved)
	assert.Equal(t, int64(7), id)
}

func TestNodeSave_MultipleUniqueMatchesFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	schema := ogm.NewNodeSchema("Person").
		Field("name", ogm.Unique()).
		Build()
	n, err := schema.New(cypher.Props{"name": "Ron"})
	require.NoError(t, err)

	lookup := mocks.NewMockRows(ctrl)
	gomock.InOrder(
		lookup.EXPECT().Next(gomock.Any()).Return(true),
		lookup.EXPECT().Values().Return(map[string]any{"node_id": int64(1)}),
		lookup.EXPECT().Next(gomock.Any()).Return(true),
		lookup.EXPECT().Values().Return(map[string]any{"node_id": int64(2)}),
		lookup.EXPECT().Next(gomock.Any()).Return(false),
		lookup.EXPECT().Err().Return(nil),
		lookup.EXPECT().Close(gomock.Any()).Return(nil),
	)

	conn := mocks.NewMockClient(ctrl)
	conn.EXPECT().
		ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(lookup, nil)

	err = n.Save(ctx, conn)
	var verr *ogm.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNodeLoad(t *testing.T) {
	ctx := context.Background()
	schema := ogm.NewNodeSchema("Person").
		Field("name", ogm.Unique()).
		Field("age").
		Build()

	t.Run("populates unset fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron"})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"node": dbtype.Node{Id: 9, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron", "age": int64(35)}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(false),
			rows.EXPECT().Err().Return(nil),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN node ", gomock.Any()).
			Return(rows, nil)

		require.NoError(t, n.Load(ctx, conn))

		id, saved := n.ID()
		assert.True(t, saved)
		assert.Equal(t, int64(9), id)
		age, _ := n.Property("age")
		assert.Equal(t, int64(35), age)
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ghost"})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		rows.EXPECT().Next(gomock.Any()).Return(false)
		rows.EXPECT().Err().Return(nil)
		rows.EXPECT().Close(gomock.Any()).Return(nil)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(rows, nil)

		assert.ErrorIs(t, n.Load(ctx, conn), ogm.ErrNotFound)
	})

	t.Run("more than one row fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron"})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"node": dbtype.Node{Id: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(rows, nil)

		assert.ErrorIs(t, n.Load(ctx, conn), ogm.ErrMultipleResults)
	})

	t.Run("conflicting set property fails validation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron", "age": 20})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"node": dbtype.Node{Id: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron", "age": int64(35)}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(false),
			rows.EXPECT().Err().Return(nil),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(rows, nil)

		var verr *ogm.ValidationError
		assert.ErrorAs(t, n.Load(ctx, conn), &verr)
	})

	t.Run("numeric width differences are not conflicts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron", "age": 35})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"node": dbtype.Node{Id: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron", "age": int64(35)}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(false),
			rows.EXPECT().Err().Return(nil),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(rows, nil)

		assert.NoError(t, n.Load(ctx, conn))
	})

	t.Run("requires a lookup key", func(t *testing.T) {
		n, err := schema.New(cypher.Props{"age": 35})
		require.NoError(t, err)

		var verr *ogm.ValidationError
		assert.ErrorAs(t, n.Load(ctx, nil), &verr)
	})
}

func TestNodeGetOrCreate(t *testing.T) {
	ctx := context.Background()
	schema := ogm.NewNodeSchema("Person").
		Field("name", ogm.Unique()).
		Build()

	t.Run("existing node returns created=false", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron"})
		require.NoError(t, err)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"node": dbtype.Node{Id: 5, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(false),
			rows.EXPECT().Err().Return(nil),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(rows, nil)

		created, err := n.GetOrCreate(ctx, conn)
		require.NoError(t, err)
		assert.False(t, created)

		id, _ := n.ID()
		assert.Equal(t, int64(5), id)
	})

	t.Run("missing node is created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron"})
		require.NoError(t, err)

		loadRows := mocks.NewMockRows(ctrl)
		loadRows.EXPECT().Next(gomock.Any()).Return(false)
		loadRows.EXPECT().Err().Return(nil)
		loadRows.EXPECT().Close(gomock.Any()).Return(nil)

		adoptRows := mocks.NewMockRows(ctrl)
		adoptRows.EXPECT().Next(gomock.Any()).Return(false)
		adoptRows.EXPECT().Err().Return(nil)
		adoptRows.EXPECT().Close(gomock.Any()).Return(nil)

		createRows := mocks.NewMockRows(ctrl)
		createRows.EXPECT().Next(gomock.Any()).Return(true)
		createRows.EXPECT().Values().Return(map[string]any{
			"node": dbtype.Node{Id: 6, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}},
		})
		createRows.EXPECT().Close(gomock.Any()).Return(nil)

		conn := mocks.NewMockClient(ctrl)
		gomock.InOrder(
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN node ", gomock.Any()).
				Return(loadRows, nil),
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN id(node) AS node_id ", gomock.Any()).
				Return(adoptRows, nil),
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), ` CREATE (node:Person {name: "Ron"}) RETURN node `, gomock.Any()).
				Return(createRows, nil),
		)

		created, err := n.GetOrCreate(ctx, conn)
		require.NoError(t, err)
		assert.True(t, created)

		id, _ := n.ID()
		assert.Equal(t, int64(6), id)
	})

	t.Run("wrapped not-found still creates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"name": "Ron"})
		require.NoError(t, err)

		adoptRows := mocks.NewMockRows(ctrl)
		adoptRows.EXPECT().Next(gomock.Any()).Return(false)
		adoptRows.EXPECT().Err().Return(nil)
		adoptRows.EXPECT().Close(gomock.Any()).Return(nil)

		createRows := mocks.NewMockRows(ctrl)
		createRows.EXPECT().Next(gomock.Any()).Return(true)
		createRows.EXPECT().Values().Return(map[string]any{
			"node": dbtype.Node{Id: 7, Labels: []string{"Person"}, Props: map[string]any{"name": "Ron"}},
		})
		createRows.EXPECT().Close(gomock.Any()).Return(nil)

		conn := mocks.NewMockClient(ctrl)
		gomock.InOrder(
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN node ", gomock.Any()).
				Return(nil, fmt.Errorf("loading node: %w", ogm.ErrNotFound)),
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), " MATCH (node:Person) WHERE node.name = 'Ron' RETURN id(node) AS node_id ", gomock.Any()).
				Return(adoptRows, nil),
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), ` CREATE (node:Person {name: "Ron"}) RETURN node `, gomock.Any()).
				Return(createRows, nil),
		)

		created, err := n.GetOrCreate(ctx, conn)
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestRelationshipSaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("save requires endpoints", func(t *testing.T) {
		r := ogm.NewRelationship("RATED", nil, nil, nil)

		var verr *ogm.ValidationError
		assert.ErrorAs(t, r.Save(ctx, nil), &verr)
	})

	t.Run("save creates between endpoints", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		start, end := int64(1), int64(2)
		r := ogm.NewRelationship("RATED", &start, &end, cypher.Props{"stars": 5})

		rows := mocks.NewMockRows(ctrl)
		rows.EXPECT().Next(gomock.Any()).Return(true)
		rows.EXPECT().Values().Return(map[string]any{
			"rel": dbtype.Relationship{Id: 77, StartId: 1, EndId: 2, Type: "RATED", Props: map[string]any{"stars": int64(5)}},
		})
		rows.EXPECT().Close(gomock.Any()).Return(nil)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(),
				" MATCH (start_node) WHERE id(start_node) = 1 MATCH (end_node) WHERE id(end_node) = 2 CREATE (start_node)-[rel:RATED{stars: 5}]->(end_node) RETURN rel ",
				gomock.Any()).
			Return(rows, nil)

		require.NoError(t, r.Save(ctx, conn))

		id, saved := r.ID()
		assert.True(t, saved)
		assert.Equal(t, int64(77), id)
	})

	t.Run("load by endpoints", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		start, end := int64(1), int64(2)
		r := ogm.NewRelationship("RATED", &start, &end, nil)

		rows := mocks.NewMockRows(ctrl)
		gomock.InOrder(
			rows.EXPECT().Next(gomock.Any()).Return(true),
			rows.EXPECT().Values().Return(map[string]any{
				"rel": dbtype.Relationship{Id: 77, StartId: 1, EndId: 2, Type: "RATED", Props: map[string]any{"stars": int64(5)}},
			}),
			rows.EXPECT().Next(gomock.Any()).Return(false),
			rows.EXPECT().Err().Return(nil),
			rows.EXPECT().Close(gomock.Any()).Return(nil),
		)

		conn := mocks.NewMockClient(ctrl)
		conn.EXPECT().
			ExecuteAndFetch(gomock.Any(),
				" MATCH (start_node)-[rel:RATED]->(end_node) WHERE id(start_node) = 1 AND id(end_node) = 2 RETURN rel ",
				gomock.Any()).
			Return(rows, nil)

		require.NoError(t, r.Load(ctx, conn))

		id, _ := r.ID()
		assert.Equal(t, int64(77), id)
		stars, _ := r.Property("stars")
		assert.Equal(t, int64(5), stars)
	})

	t.Run("load requires id or endpoints", func(t *testing.T) {
		r := ogm.NewRelationship("RATED", nil, nil, nil)

		var verr *ogm.ValidationError
		assert.ErrorAs(t, r.Load(ctx, nil), &verr)
	})
}

// memStorage is an in-memory db.PropertyStorage for exercising on-disk
// fields.
type memStorage struct {
	values map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (s *memStorage) key(id int64, key string) string {
	return fmt.Sprintf("%d|%s", id, key)
}

func (s *memStorage) SaveProperty(_ context.Context, id int64, key, value string) error {
	s.values[s.key(id, key)] = value
	return nil
}

func (s *memStorage) LoadProperty(_ context.Context, id int64, key string) (string, error) {
	return s.values[s.key(id, key)], nil
}

func (s *memStorage) DeleteProperty(_ context.Context, id int64, key string) error {
	delete(s.values, s.key(id, key))
	return nil
}

func TestNode_OnDiskFields(t *testing.T) {
	ctx := context.Background()
	schema := ogm.NewNodeSchema("Document").
		Field("title", ogm.Unique()).
		Field("body", ogm.OnDisk()).
		Build()

	t.Run("save without storage fails", func(t *testing.T) {
		n, err := schema.New(cypher.Props{"title": "T", "body": "big text"})
		require.NoError(t, err)

		var verr *ogm.ValidationError
		assert.ErrorAs(t, n.Save(ctx, nil), &verr)
	})

	t.Run("save routes body through storage and keeps it out of the graph", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		n, err := schema.New(cypher.Props{"title": "T", "body": "big text"})
		require.NoError(t, err)

		adoptRows := mocks.NewMockRows(ctrl)
		adoptRows.EXPECT().Next(gomock.Any()).Return(false)
		adoptRows.EXPECT().Err().Return(nil)
		adoptRows.EXPECT().Close(gomock.Any()).Return(nil)

		createRows := mocks.NewMockRows(ctrl)
		createRows.EXPECT().Next(gomock.Any()).Return(true)
		createRows.EXPECT().Values().Return(map[string]any{
			"node": dbtype.Node{Id: 11, Labels: []string{"Document"}, Props: map[string]any{"title": "T"}},
		})
		createRows.EXPECT().Close(gomock.Any()).Return(nil)

		conn := mocks.NewMockClient(ctrl)
		gomock.InOrder(
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(adoptRows, nil),
			conn.EXPECT().
				ExecuteAndFetch(gomock.Any(), ` CREATE (node:Document {title: "T"}) RETURN node `, gomock.Any()).
				Return(createRows, nil),
		)

		storage := newMemStorage()
		require.NoError(t, n.Save(ctx, conn, ogm.WithPropertyStorage(storage)))

		id, _ := n.ID()
		assert.Equal(t, int64(11), id)
		assert.Equal(t, "big text", storage.values[storage.key(11, "body")])
	})
}
