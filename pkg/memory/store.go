// Package memory provides the external memory store the workflow engine
// spills oversized query results into, keeping only a key and a
// statistical summary in the in-process AnalysisState.
package memory

import (
	"context"
	"time"
)

// Result is one spilled query result.
type Result struct {
	Key       string
	SessionID string
	Columns   []string
	Rows      [][]any
	Summary   string
	RowCount  int
	CreatedAt time.Time
}

// Store persists and retrieves spilled query results and enforces the
// configured retention window.
type Store interface {
	// Put stores result under its Key, generating one if empty, and
	// returns the key it was stored under.
	Put(ctx context.Context, result Result) (string, error)

	// Get retrieves a previously stored result by key.
	Get(ctx context.Context, key string) (*Result, error)

	// List returns the keys of every result stored for a session.
	List(ctx context.Context, sessionID string) ([]string, error)

	// Delete removes a stored result, if present.
	Delete(ctx context.Context, key string) error

	// Sweep deletes every result older than olderThan and returns the
	// number of rows removed.
	Sweep(ctx context.Context, olderThan time.Duration) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
