package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DryRun validates sql without executing it: safety-parses the
// statement and asks Postgres to plan it (EXPLAIN, no ANALYZE) inside a
// read-only transaction that is always rolled back.
func (c *Client) DryRun(ctx context.Context, sql string) error {
	if err := CheckReadOnly(sql); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	err := withRetry(ctx, func() error {
		conn, err := c.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		defer conn.Release()

		tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, "EXPLAIN "+sql); err != nil {
			return NewQueryError(sql, fmt.Errorf("%w: %v", ErrQueryFailed, err))
		}
		return nil
	})
	if err != nil {
		var qerr *QueryError
		if errors.As(err, &qerr) {
			return qerr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Sample executes sql with the row count capped at limit, intended for
// the "does this look right" preview step before a full execution. A
// query that already carries its own LIMIT smaller than limit is
// rejected rather than silently honored: a self-imposed small LIMIT can
// hide rows the real execution would surface, defeating the point of
// sampling as a self-validation step.
func (c *Client) Sample(ctx context.Context, sql string, limit int) (*QueryResult, error) {
	if err := CheckReadOnly(sql); err != nil {
		return nil, err
	}
	if existing, ok := existingLimit(sql); ok && existing < limit {
		return nil, fmt.Errorf("%w: query already limits to %d rows, below sample limit %d", ErrUnsafeSQL, existing, limit)
	}
	return c.run(ctx, sql, limit)
}

// Execute runs sql to completion, capped at cap rows. The workflow
// engine is responsible for spilling oversized results to the external
// memory store; this method only enforces the hard row ceiling.
func (c *Client) Execute(ctx context.Context, sql string, cap int) (*QueryResult, error) {
	return c.run(ctx, sql, cap)
}

func (c *Client) run(ctx context.Context, sql string, limit int) (*QueryResult, error) {
	if err := CheckReadOnly(sql); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	var result *QueryResult
	err := withRetry(ctx, func() error {
		conn, err := c.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		defer conn.Release()

		tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		wrapped := withLimit(sql, limit+1)
		rows, err := tx.Query(ctx, wrapped)
		if err != nil {
			return NewQueryError(sql, fmt.Errorf("%w: %v", ErrQueryFailed, err))
		}
		defer rows.Close()

		fields := rows.FieldDescriptions()
		cols := make([]string, len(fields))
		for i, f := range fields {
			cols[i] = string(f.Name)
		}

		r := &QueryResult{Columns: cols}
		for rows.Next() {
			vals, err := rows.Values()
			if err != nil {
				return NewQueryError(sql, fmt.Errorf("%w: %v", ErrQueryFailed, err))
			}
			r.Rows = append(r.Rows, vals)
		}
		if err := rows.Err(); err != nil {
			return NewQueryError(sql, fmt.Errorf("%w: %v", ErrQueryFailed, err))
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var qerr *QueryError
		if errors.As(err, &qerr) {
			return nil, qerr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(result.Rows) > limit {
		result.Rows = result.Rows[:limit]
		result.Truncated = true
	}
	result.RowCount = len(result.Rows)
	result.Elapsed = time.Since(start)
	return result, nil
}
