package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryResult_ByteSize(t *testing.T) {
	r := &QueryResult{
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{1, "abc"},
			{2, "defgh"},
		},
	}

	// 2 + 4 (column names) + 8 (int) + 3 (abc) + 8 (int) + 5 (defgh)
	assert.Equal(t, int64(2+4+8+3+8+5), r.ByteSize())
}

func TestQueryResult_ByteSize_Empty(t *testing.T) {
	r := &QueryResult{}
	assert.Equal(t, int64(0), r.ByteSize())
}
