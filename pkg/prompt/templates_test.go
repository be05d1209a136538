package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTaskSafetyFilter_IncludesTaskAndDatasets(t *testing.T) {
	msgs := RenderTaskSafetyFilter(SafetyFilterInput{
		Task:     "total revenue last week",
		Datasets: []string{"sales", "ops"},
	})

	a := assert.New(t)
	a.Len(msgs, 2)
	a.Equal("system", msgs[0].Role)
	a.Equal("user", msgs[1].Role)
	a.Contains(msgs[1].Content, "sales, ops")
	a.Contains(msgs[1].Content, "total revenue last week")
	a.Contains(msgs[0].Content, `"verdict"`)
}

func TestRenderIntentAnalysisAndSQL_IncludesSchemaAndLimits(t *testing.T) {
	msgs := RenderIntentAnalysisAndSQL(SQLGenInput{
		Task:           "revenue by region",
		SchemaDoc:      "TABLE orders:\n  - amount numeric NOT NULL\n",
		MaxQueries:     3,
		SampleRowLimit: 10,
	})

	assert.Contains(t, msgs[0].Content, "TABLE orders:")
	assert.Contains(t, msgs[0].Content, "at most 3 candidate queries")
	assert.Contains(t, msgs[1].Content, "revenue by region")
}

func TestRenderErrorAnalysisAndRepair_IncludesFailedSQLAndError(t *testing.T) {
	msgs := RenderErrorAnalysisAndRepair(RepairInput{
		SQL:          "SELECT ghost_column FROM orders",
		ErrorMessage: `column "ghost_column" does not exist`,
		SchemaDoc:    "TABLE orders:\n  - amount numeric NOT NULL\n",
	})

	assert.Contains(t, msgs[1].Content, "SELECT ghost_column FROM orders")
	assert.Contains(t, msgs[1].Content, "does not exist")
}

func TestRenderAnalysisReport_InlineVsSummary(t *testing.T) {
	msgs := RenderAnalysisReport(ReportInput{
		Task: "growth",
		Queries: []ExecutedQuery{
			{SQL: "SELECT 1", Purpose: "inline example", Columns: []string{"x"}, SampleRows: [][]any{{1}}, RowCount: 1},
			{SQL: "SELECT 2", Purpose: "spilled example", Summary: "5000 rows, mean=42", RowCount: 5000},
		},
	})

	body := msgs[1].Content
	assert.Contains(t, body, "inline example")
	assert.Contains(t, body, "Columns: x")
	assert.Contains(t, body, "spilled example")
	assert.Contains(t, body, "too large to inline")
	assert.Contains(t, body, "5000 rows, mean=42")
}

func TestClip_TruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("a", 100)
	clipped := clip(long, 10)
	assert.True(t, strings.HasPrefix(clipped, strings.Repeat("a", 10)))
	assert.Contains(t, clipped, "truncated")
}

func TestClip_LeavesShortStringsAlone(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
}

func TestStripCodeFences_RemovesJSONFence(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, StripCodeFences(in))
}

func TestStripCodeFences_LeavesPlainTextAlone(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}
