package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"skillforge-hq/anvil/pkg/providers"
)

// SQLiteBackend persists usage totals in a SQLite database. It is
// suitable for single-instance deployments where totals must survive
// restarts. WAL mode keeps writes cheap next to concurrent reads.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at dbPath and ensures
// the schema exists.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database %q: %w", dbPath, err)
	}

	// Single writer; SQLite handles its own locking.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure usage database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS usage_totals (
		provider       TEXT PRIMARY KEY,
		requests       INTEGER NOT NULL,
		output_tokens  INTEGER NOT NULL,
		estimated_cost REAL NOT NULL,
		updated_at     TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create usage schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Save upserts every provider's totals in one transaction.
func (s *SQLiteBackend) Save(ctx context.Context, totals map[providers.ID]Totals) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin usage transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_totals (provider, requests, output_tokens, estimated_cost, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			requests = excluded.requests,
			output_tokens = excluded.output_tokens,
			estimated_cost = excluded.estimated_cost,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare usage upsert: %w", err)
	}
	defer stmt.Close()

	for id, t := range totals {
		_, err := stmt.ExecContext(ctx,
			string(id), t.Requests, t.OutputTokens, t.EstimatedCost,
			t.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save usage for provider %q: %w", id, err)
		}
	}

	return tx.Commit()
}

// Load reads all persisted totals.
func (s *SQLiteBackend) Load(ctx context.Context) (map[providers.ID]Totals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, requests, output_tokens, estimated_cost, updated_at FROM usage_totals`)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage totals: %w", err)
	}
	defer rows.Close()

	out := make(map[providers.ID]Totals)
	for rows.Next() {
		var (
			provider  string
			totals    Totals
			updatedAt string
		)
		if err := rows.Scan(&provider, &totals.Requests, &totals.OutputTokens,
			&totals.EstimatedCost, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			totals.UpdatedAt = ts
		}
		out[providers.ID(provider)] = totals
	}

	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
