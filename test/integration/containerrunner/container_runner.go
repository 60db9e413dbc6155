//go:build integration

package containerrunner

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/memgraph/ogm/internal/config"
)

var (
	container testcontainers.Container
	cfg       *config.Config
	once      sync.Once
)

// Start initializes shared resources for integration tests.
func Start(ctx context.Context) {
	once.Do(func() {
		startOnce(ctx)
	})
}

// GetConfig returns the connection config for the shared instance.
func GetConfig() *config.Config {
	if cfg == nil {
		log.Fatal("container runner is not initialized")
	}
	return cfg
}

// startOnce starts the testcontainer image. When USE_CONTAINER=false an
// already-running instance is used instead, addressed through MG_URI.
func startOnce(ctx context.Context) {
	if config.GetEnvWithDefault("USE_CONTAINER", "true") != "true" {
		cfg = &config.Config{
			URI:         config.GetEnvWithDefault("MG_URI", "bolt://localhost:7687"),
			Username:    config.GetEnv("MG_USERNAME"),
			Password:    config.GetEnv("MG_PASSWORD"),
			MaxPoolSize: config.DefaultMaxPoolSize,
		}
		return
	}

	ctr, boltURI, err := createMemgraphContainer(ctx)
	if err != nil {
		log.Fatalf("failed to start shared memgraph container: %v", err)
	}
	container = ctr

	cfg = &config.Config{
		URI:         boltURI,
		MaxPoolSize: config.DefaultMaxPoolSize,
	}

	if err := waitForConnectivity(ctx, ctr); err != nil {
		Close(ctx)
		log.Fatalf("failed to verify connectivity: %v", err)
	}
}

// Close cleans up shared resources used in integration tests.
func Close(ctx context.Context) {
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("Warning: failed to terminate container: %v", err)
	}
}

// createMemgraphContainer starts a Memgraph container for testing.
func createMemgraphContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        config.GetEnvWithDefault("MEMGRAPH_IMAGE", "memgraph/memgraph:latest"),
		ExposedPorts: []string{"7687/tcp"},
		Cmd:          []string{"--telemetry-enabled=false"},
		WaitingFor:   wait.ForListeningPort("7687/tcp").WithStartupTimeout(119 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	port, err := ctr.MappedPort(ctx, "7687/tcp")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	boltURI := fmt.Sprintf("bolt://%s:%s", host, port.Port())

	return ctr, boltURI, nil
}

// waitForConnectivity waits for bolt connectivity with exponential backoff.
func waitForConnectivity(ctx context.Context, ctr testcontainers.Container) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	drv, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.NoAuth())
	if err != nil {
		return fmt.Errorf("failed to create probe driver: %w", err)
	}
	defer func() { _ = drv.Close(context.Background()) }()

	backoff := 100 * time.Millisecond
	maxBackoff := 2 * time.Second

	var lastErr error
	for {
		err := drv.VerifyConnectivity(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	var logs string
	if ctr != nil {
		rc, err := ctr.Logs(context.Background())
		if err == nil && rc != nil {
			b, rerr := io.ReadAll(rc)
			_ = rc.Close()
			if rerr == nil {
				logs = string(b)
			}
		}
	}

	if logs != "" {
		return fmt.Errorf("memgraph connectivity not ready: %v\ncontainer logs:\n%s", lastErr, logs)
	}
	return fmt.Errorf("memgraph connectivity not ready: %v", lastErr)
}
