package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyRows(t *testing.T) {
	assert.Equal(t, "no rows", Summarize([]string{"id"}, nil, 5))
}

func TestSummarize_NumericColumnStats(t *testing.T) {
	rows := [][]any{{1, 10.0}, {2, 20.0}, {3, 30.0}}
	out := Summarize([]string{"id", "amount"}, rows, 5)

	assert.Contains(t, out, "3 rows across 2 columns")
	assert.Contains(t, out, "amount: numeric, min=10.00 max=30.00 mean=20.00")
}

func TestSummarize_CategoricalTopK(t *testing.T) {
	rows := [][]any{{"east"}, {"east"}, {"west"}, {"north"}}
	out := Summarize([]string{"region"}, rows, 2)

	assert.Contains(t, out, "region: top values east (2), ")
}

func TestSummarize_MixedTypesTreatedAsCategorical(t *testing.T) {
	rows := [][]any{{"a"}, {1}}
	out := Summarize([]string{"col"}, rows, 5)

	assert.Contains(t, out, "top values")
	assert.NotContains(t, out, "numeric")
}
