// Package warehouse adapts the analysis workflow to a read-only Postgres
// warehouse: dataset/table discovery, schema introspection, and safe
// query execution with row and size caps.
package warehouse

import "time"

// Dataset is a queryable Postgres schema.
type Dataset struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Table describes one table within a dataset.
type Table struct {
	Dataset     string  `json:"dataset"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
	ApproxRows  int64   `json:"approx_rows,omitempty"`
}

// Field describes one column of a table.
type Field struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// QueryResult is the outcome of a dry-run, sample, or full execution.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
	// Truncated is true when the warehouse adapter capped the result
	// below what the query would otherwise have returned.
	Truncated bool          `json:"truncated"`
	Elapsed   time.Duration `json:"elapsed"`
}

// ByteSize returns a rough estimate of the result's serialized size,
// used by the workflow engine to decide whether to spill to memory.
func (r *QueryResult) ByteSize() int64 {
	var total int64
	for _, col := range r.Columns {
		total += int64(len(col))
	}
	for _, row := range r.Rows {
		for _, v := range row {
			switch val := v.(type) {
			case string:
				total += int64(len(val))
			case []byte:
				total += int64(len(val))
			default:
				total += 8
			}
		}
	}
	return total
}
