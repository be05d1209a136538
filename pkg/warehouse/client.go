package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/dataq/pkg/config"
)

// Client is a read-only Postgres warehouse adapter. Datasets map to
// Postgres schemas and tables map to relations within them; all
// execution happens inside read-only transactions with a LIMIT ceiling
// applied at the SQL layer, never trusted to the caller alone.
type Client struct {
	pool         *pgxpool.Pool
	cfg          config.WarehouseConfig
	queryTimeout time.Duration
}

// New opens a pooled connection to the warehouse described by cfg.
// queryTimeout bounds every dry-run, sample, and execute call.
func New(ctx context.Context, cfg config.WarehouseConfig, queryTimeout time.Duration) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Client{pool: pool, cfg: cfg, queryTimeout: queryTimeout}, nil
}

// Close releases the connection pool.
func (c *Client) Close() {
	c.pool.Close()
}

// ListDatasets enumerates user-visible schemas.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var out []Dataset
	err := withRetry(ctx, func() error {
		out = nil
		rows, err := c.pool.Query(ctx, `
			SELECT schema_name
			FROM information_schema.schemata
			WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
			  AND schema_name NOT LIKE 'pg_temp_%'
			  AND schema_name NOT LIKE 'pg_toast_temp_%'
			ORDER BY schema_name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			out = append(out, Dataset{Name: name})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// ListTables enumerates base tables within a dataset.
func (c *Client) ListTables(ctx context.Context, dataset string) ([]Table, error) {
	var out []Table
	err := withRetry(ctx, func() error {
		out = nil
		rows, err := c.pool.Query(ctx, `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = $1 AND table_type = 'BASE TABLE'
			ORDER BY table_name`, dataset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			out = append(out, Table{Dataset: dataset, Name: name})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, dataset)
	}
	return out, nil
}

// GetSchema fetches column metadata for a single table, including
// primary key membership.
func (c *Client) GetSchema(ctx context.Context, dataset, table string) (*Table, error) {
	out := &Table{Dataset: dataset, Name: table}
	err := withRetry(ctx, func() error {
		out.Fields = nil
		rows, err := c.pool.Query(ctx, `
			SELECT c.column_name, c.data_type, c.is_nullable = 'YES',
			       COALESCE(pk.is_pk, false)
			FROM information_schema.columns c
			LEFT JOIN (
				SELECT kcu.column_name, true AS is_pk
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
				  ON tc.constraint_name = kcu.constraint_name
				 AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				  AND tc.table_schema = $1 AND tc.table_name = $2
			) pk ON pk.column_name = c.column_name
			WHERE c.table_schema = $1 AND c.table_name = $2
			ORDER BY c.ordinal_position`, dataset, table)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var f Field
			if err := rows.Scan(&f.Name, &f.Type, &f.Nullable, &f.PrimaryKey); err != nil {
				return err
			}
			out.Fields = append(out.Fields, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(out.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, dataset, table)
	}
	return out, nil
}
