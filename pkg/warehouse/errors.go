package warehouse

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the warehouse connection could not serve the request.
	ErrUnavailable = errors.New("warehouse unavailable")

	// ErrDatasetNotFound indicates the named dataset (schema) does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrTableNotFound indicates the named table does not exist in the dataset.
	ErrTableNotFound = errors.New("table not found")

	// ErrUnsafeSQL indicates a query failed the safety parse and was refused.
	ErrUnsafeSQL = errors.New("unsafe SQL refused")

	// ErrQueryFailed indicates the warehouse rejected or failed to execute a query.
	ErrQueryFailed = errors.New("query execution failed")
)

// QueryError wraps a failed execution with the SQL text that caused it,
// letting the workflow engine's repair node quote the exact statement
// back to the LLM.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err with the offending SQL text.
func NewQueryError(sql string, err error) *QueryError {
	return &QueryError{SQL: sql, Err: err}
}
