package neo4jdb

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jcfg "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"github.com/memgraph/ogm/db"
	"github.com/memgraph/ogm/internal/config"
	"github.com/memgraph/ogm/internal/logger"
)

type runner func(ctx context.Context, query string, params map[string]any) (neo4j.ResultWithContext, func(context.Context) error, error)

// Client is the Neo4j implementation of db.Client. Query execution matches
// the Memgraph client; the schema catalog syntax differs, and Neo4j drops
// indexes and constraints by server-assigned name.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	id       string
	log      *logger.Service
	convert  db.ValueConverter
	run      runner

	mu    sync.Mutex
	names map[string]string // descriptor key -> server-side name
}

// Option configures a Client.
type Option func(*Client)

// WithLogger injects the logging service.
func WithLogger(log *logger.Service) Option {
	return func(c *Client) { c.log = log }
}

// WithConverter rewrites raw driver values in fetched rows.
func WithConverter(conv db.ValueConverter) Option {
	return func(c *Client) { c.convert = conv }
}

// NewClient opens a driver against the configured Neo4j instance and
// verifies connectivity.
func NewClient(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.BoltURI(), auth, func(dc *neo4jcfg.Config) {
		dc.MaxConnectionPoolSize = int(cfg.MaxPoolSize)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	client, err := NewClientWithDriver(driver, cfg.Database, opts...)
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify database connectivity: %w", err)
	}
	client.log.Debug("connected to neo4j", "uri", cfg.URI, "client_id", client.id)
	return client, nil
}

// NewClientWithDriver wraps an already-constructed driver.
func NewClientWithDriver(driver neo4j.DriverWithContext, database string, opts ...Option) (*Client, error) {
	if driver == nil {
		return nil, fmt.Errorf("driver cannot be nil")
	}
	c := &Client{
		driver:   driver,
		database: database,
		id:       uuid.NewString(),
		names:    map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.New("info", "text", os.Stderr)
	}
	if c.run == nil {
		c.run = c.sessionRun
	}
	return c, nil
}

func (c *Client) sessionRun(ctx context.Context, query string, params map[string]any) (neo4j.ResultWithContext, func(context.Context) error, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	result, err := session.Run(ctx, query, params)
	if err != nil {
		_ = session.Close(ctx)
		return nil, nil, err
	}
	return result, session.Close, nil
}

// Execute runs a side-effect query and discards any returned rows.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) error {
	c.log.Debug("executing query", "query", query, "client_id", c.id)
	result, closeSession, err := c.run(ctx, query, params)
	if err != nil {
		return db.WrapError(query, err)
	}
	defer func() { _ = closeSession(ctx) }()

	if _, err := result.Consume(ctx); err != nil {
		return db.WrapError(query, err)
	}
	return nil
}

// ExecuteAndFetch runs a query and returns a lazy row cursor.
func (c *Client) ExecuteAndFetch(ctx context.Context, query string, params map[string]any) (db.Rows, error) {
	c.log.Debug("executing query", "query", query, "client_id", c.id)
	result, closeSession, err := c.run(ctx, query, params)
	if err != nil {
		return nil, db.WrapError(query, err)
	}
	return &rows{
		query:   query,
		result:  result,
		closer:  closeSession,
		convert: c.convert,
	}, nil
}

// VerifyConnectivity checks the driver can reach the server.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// DropDatabase removes every node and relationship.
func (c *Client) DropDatabase(ctx context.Context) error {
	return c.Execute(ctx, "MATCH (n) DETACH DELETE n", nil)
}

// Close releases the underlying driver and its connection pool.
func (c *Client) Close(ctx context.Context) error {
	c.log.Debug("closing client", "client_id", c.id)
	return c.driver.Close(ctx)
}

type rows struct {
	query   string
	result  neo4j.ResultWithContext
	closer  func(context.Context) error
	convert db.ValueConverter
	current map[string]any
	err     error
	closed  bool
}

func (r *rows) Next(ctx context.Context) bool {
	if r.err != nil || r.closed {
		return false
	}
	if !r.result.Next(ctx) {
		r.err = db.WrapError(r.query, r.result.Err())
		return false
	}
	record := r.result.Record().AsMap()
	if r.convert == nil {
		r.current = record
		return true
	}
	converted := make(map[string]any, len(record))
	for key, value := range record {
		v, err := r.convert.Convert(value)
		if err != nil {
			r.err = &db.ConversionError{Variable: key, Err: err}
			return false
		}
		converted[key] = v
	}
	r.current = converted
	return true
}

func (r *rows) Values() map[string]any { return r.current }

func (r *rows) Err() error { return r.err }

func (r *rows) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.closer(ctx)
}

var _ db.Client = (*Client)(nil)
