// Package main runs the crypto watchlist MCP server over stdio.
//
// The watchlist persists to a JSON file by default, or to PostgreSQL
// when a DSN is given. Price snapshots can be logged to ClickHouse.
// Google Sheets export stays disabled unless credentials are present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/server"

	"crypto-watchlist/internal/analysis"
	"crypto-watchlist/internal/coingecko"
	"crypto-watchlist/internal/export"
	"crypto-watchlist/internal/mcpserver"
	"crypto-watchlist/internal/sheets"
	"crypto-watchlist/internal/storage"
	chstore "crypto-watchlist/internal/storage/clickhouse"
	filestore "crypto-watchlist/internal/storage/file"
	"crypto-watchlist/internal/storage/memory"
	"crypto-watchlist/internal/storage/migrations"
	pgstore "crypto-watchlist/internal/storage/postgres"
	"crypto-watchlist/internal/tracker"
)

func main() {
	// Load .env file if present
	loadEnvFile()

	baseURL := flag.String("coingecko-base-url", envOrDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"), "Price provider base URL")
	credentialsPath := flag.String("google-credentials", envOrDefault("GOOGLE_CREDENTIALS_PATH", "google_credentials.json"), "Path to Google service account credentials JSON")
	watchlistFile := flag.String("watchlist-file", envOrDefault("WATCHLIST_FILE", "watchlist.json"), "Path to the watchlist JSON file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("WATCHLIST_DSN"), "PostgreSQL connection string (uses the JSON file when empty)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for the price snapshot log (in-memory when empty)")
	cacheTTL := flag.Duration("cache-ttl", coingecko.DefaultCacheTTL, "Price cache TTL")
	httpTimeout := flag.Duration("http-timeout", coingecko.DefaultTimeout, "Price provider HTTP timeout")
	sweepWorkers := flag.Int("sweep-workers", tracker.DefaultSweepWorkers, "Max concurrent price fetches during a sweep")

	flag.Parse()

	// Stdout carries the MCP stdio transport; all logging goes to stderr.
	logger := log.New(os.Stderr, "[server] ", log.LstdFlags)

	ctx := context.Background()

	svc, cleanup, err := buildService(ctx, logger, config{
		baseURL:         *baseURL,
		credentialsPath: *credentialsPath,
		watchlistFile:   *watchlistFile,
		postgresDSN:     *postgresDSN,
		clickhouseDSN:   *clickhouseDSN,
		cacheTTL:        *cacheTTL,
		httpTimeout:     *httpTimeout,
		sweepWorkers:    *sweepWorkers,
	})
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer cleanup()

	logger.Println("Starting MCP server on stdio")
	if err := mcpgo.ServeStdio(mcpserver.NewMCPServer(svc)); err != nil {
		logger.Fatalf("MCP server error: %v", err)
	}
}

type config struct {
	baseURL         string
	credentialsPath string
	watchlistFile   string
	postgresDSN     string
	clickhouseDSN   string
	cacheTTL        time.Duration
	httpTimeout     time.Duration
	sweepWorkers    int
}

// buildService wires stores, the price client and the optional sheets
// integration into a tracker service. The returned cleanup closes any
// database connections.
func buildService(ctx context.Context, logger *log.Logger, cfg config) (*tracker.Service, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	// Watchlist store: PostgreSQL when a DSN is given, JSON file otherwise.
	var watchlist storage.WatchlistStore
	if cfg.postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.postgresDSN)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			return nil, cleanup, fmt.Errorf("run postgres migrations: %w", err)
		}
		watchlist = pgstore.NewWatchlistStore(pool)
		logger.Println("Using PostgreSQL watchlist store")
	} else {
		watchlist = filestore.NewWatchlistStore(cfg.watchlistFile, logger)
		logger.Printf("Using watchlist file %s", cfg.watchlistFile)
	}

	// Snapshot log: ClickHouse when a DSN is given, in-memory otherwise.
	var snapshots storage.SnapshotStore
	if cfg.clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.clickhouseDSN)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to clickhouse: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			return nil, cleanup, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		snapshots = chstore.NewSnapshotStore(conn)
		logger.Println("Using ClickHouse snapshot log")
	} else {
		snapshots = memory.NewSnapshotStore()
	}

	prices := coingecko.New(cfg.baseURL,
		coingecko.WithTimeout(cfg.httpTimeout),
		coingecko.WithCacheTTL(cfg.cacheTTL),
		coingecko.WithLogger(logger),
		coingecko.WithSnapshotStore(snapshots),
	)

	// Sheets integration degrades to unavailable when credentials are
	// missing; the server still starts.
	var exporter tracker.Exporter
	var analyzer tracker.Analyzer
	if _, err := os.Stat(cfg.credentialsPath); err == nil {
		sheetSvc, err := sheets.NewGoogleService(ctx, cfg.credentialsPath, logger)
		if err != nil {
			logger.Printf("Google Sheets unavailable: %v", err)
		} else {
			exporter = export.NewPipeline(sheetSvc, export.WithLogger(logger))
			analyzer = analysis.NewAnalyzer(sheetSvc, analysis.WithLogger(logger))
			logger.Println("Google Sheets integration enabled")
		}
	} else {
		logger.Printf("No Google credentials at %s, sheets features disabled", cfg.credentialsPath)
	}

	svc := tracker.NewService(tracker.Options{
		Watchlist:    watchlist,
		Prices:       prices,
		Exporter:     exporter,
		Analyzer:     analyzer,
		Snapshots:    snapshots,
		SweepWorkers: cfg.sweepWorkers,
		Logger:       logger,
	})
	return svc, cleanup, nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
