// Package migrations applies embedded schema files at startup.
// Migrations are expected to be idempotent (CREATE TABLE IF NOT EXISTS).
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"crypto-watchlist/internal/storage/clickhouse"
	"crypto-watchlist/internal/storage/postgres"
)

// RunPostgres applies all embedded PostgreSQL migrations in lexical order.
func RunPostgres(ctx context.Context, pool *postgres.Pool) error {
	return run(PostgresFS, "postgres", func(sql string) error {
		_, err := pool.Exec(ctx, sql)
		return err
	})
}

// RunClickhouse applies all embedded ClickHouse migrations in lexical
// order. Each file must hold a single statement: the native protocol does
// not accept multi-statement scripts.
func RunClickhouse(ctx context.Context, conn *clickhouse.Conn) error {
	return run(ClickhouseFS, "clickhouse", func(sql string) error {
		return conn.Exec(ctx, sql)
	})
}

func run(fsys embed.FS, dir string, exec func(sql string) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if err := exec(string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
