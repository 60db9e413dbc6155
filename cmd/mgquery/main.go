package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/memgraph/ogm/db"
	"github.com/memgraph/ogm/internal/cli"
	"github.com/memgraph/ogm/internal/config"
	"github.com/memgraph/ogm/internal/logger"
	"github.com/memgraph/ogm/memgraph"
)

const version = "0.1.0"

func main() {
	// Handle help/version flags and validate the argument shape
	cli.HandleArgs(version)

	uri := flag.String("uri", "", "Bolt connection URI (overrides MG_URI)")
	username := flag.String("username", "", "database username (overrides MG_USERNAME)")
	password := flag.String("password", "", "database password (overrides MG_PASSWORD)")
	database := flag.String("database", "", "database name (overrides MG_DATABASE)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one query argument is required")
		os.Exit(1)
	}
	query := flag.Arg(0)

	// get config from environment variables, CLI flags take precedence
	cfg, err := config.LoadConfig(&config.Overrides{
		URI:      *uri,
		Username: *username,
		Password: *password,
		Database: *database,
	})
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logService := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx := context.Background()
	client, err := memgraph.NewClient(ctx, cfg, memgraph.WithLogger(logService))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		if err := client.Close(ctx); err != nil {
			log.Printf("Error closing client: %v", err)
		}
	}()

	rows, err := client.ExecuteAndFetch(ctx, query, nil)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer func() { _ = rows.Close(ctx) }()

	out, err := rowsToJSON(ctx, rows)
	if err != nil {
		log.Fatalf("Failed to format results: %v", err)
	}
	fmt.Println(out)
}

// rowsToJSON drains the cursor and renders the rows as indented JSON.
func rowsToJSON(ctx context.Context, rows db.Rows) (string, error) {
	var results []map[string]any
	for rows.Next(ctx) {
		results = append(results, rows.Values())
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	formatted, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format results as JSON: %w", err)
	}
	return string(formatted), nil
}
