package memory

import (
	stdsql "database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver for database/sql
	"github.com/jmoiron/sqlx"

	"context"
)

//go:embed migrations
var migrationsFS embed.FS

// PostgresStore is the durable, cross-session Store backed by Postgres.
// Schema changes ship as embedded SQL migrations applied automatically
// on open, the same pattern the rest of this codebase uses for its
// primary datastore.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens dsn, applies pending migrations, and returns a
// ready-to-use Store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := stdsql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory store database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping memory store database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run memory store migrations: %w", err)
	}

	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}, nil
}

func runMigrations(db *stdsql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "memory", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Only close the source driver: closing the migrate instance would
	// also close the shared *sql.DB handed in via postgres.WithInstance.
	return sourceDriver.Close()
}

type spilledResultRow struct {
	Key       string    `db:"key"`
	SessionID string    `db:"session_id"`
	Columns   []byte    `db:"columns"`
	Rows      []byte    `db:"rows"`
	Summary   string    `db:"summary"`
	RowCount  int       `db:"row_count"`
	CreatedAt time.Time `db:"created_at"`
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, result Result) (string, error) {
	if result.Key == "" {
		result.Key = uuid.New().String()
	}

	cols, err := json.Marshal(result.Columns)
	if err != nil {
		return "", fmt.Errorf("failed to marshal columns: %w", err)
	}
	rows, err := json.Marshal(result.Rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rows: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO spilled_results (key, session_id, columns, rows, summary, row_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			columns = EXCLUDED.columns,
			rows = EXCLUDED.rows,
			summary = EXCLUDED.summary,
			row_count = EXCLUDED.row_count`,
		result.Key, result.SessionID, cols, rows, result.Summary, result.RowCount)
	if err != nil {
		return "", fmt.Errorf("failed to store result: %w", err)
	}
	return result.Key, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Result, error) {
	var row spilledResultRow
	err := s.db.GetContext(ctx, &row, `
		SELECT key, session_id, columns, rows, summary, row_count, created_at
		FROM spilled_results WHERE key = $1`, key)
	if err == stdsql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	return row.toResult()
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys, `
		SELECT key FROM spilled_results WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return keys, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM spilled_results WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Sweep implements Store.
func (s *PostgresStore) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM spilled_results WHERE created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep results: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept results: %w", err)
	}
	return int(affected), nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (r *spilledResultRow) toResult() (*Result, error) {
	var cols []string
	var rows [][]any
	if err := json.Unmarshal(r.Columns, &cols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}
	if err := json.Unmarshal(r.Rows, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return &Result{
		Key:       r.Key,
		SessionID: r.SessionID,
		Columns:   cols,
		Rows:      rows,
		Summary:   r.Summary,
		RowCount:  r.RowCount,
		CreatedAt: r.CreatedAt,
	}, nil
}
