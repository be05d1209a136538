package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/prompt"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

// isBudgetExhausted reports whether err (possibly wrapped) originated
// from the LLM adapter refusing a call against the remaining
// per-session token budget.
func isBudgetExhausted(err error) bool {
	return errors.Is(err, llm.ErrBudgetExhausted)
}

// buildSchemaDoc renders the schemas of the tables a node has access
// to as a compact text block suitable for inclusion in a prompt.
func buildSchemaDoc(tables []string, schemas map[string][]warehouse.Field) string {
	var b strings.Builder
	for _, table := range tables {
		fields := schemas[table]
		fmt.Fprintf(&b, "TABLE %s:\n", table)
		for _, f := range fields {
			nullability := "NOT NULL"
			if f.Nullable {
				nullability = "NULLABLE"
			}
			pk := ""
			if f.PrimaryKey {
				pk = " PRIMARY KEY"
			}
			fmt.Fprintf(&b, "  - %s %s %s%s\n", f.Name, f.Type, nullability, pk)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// buildExecutedQueries converts the successfully executed (or
// partially available) query outcomes into the report prompt's input
// shape, pulling sample rows for inline results and the stored summary
// for spilled ones.
func buildExecutedQueries(s *AnalysisState) []prompt.ExecutedQuery {
	var out []prompt.ExecutedQuery
	for i, qr := range s.QueryResults {
		if !qr.Succeeded {
			continue
		}
		purpose := ""
		if i < len(s.queryPurposes) {
			purpose = s.queryPurposes[i]
		}
		out = append(out, prompt.ExecutedQuery{
			SQL:        s.GeneratedQueries[i],
			Purpose:    purpose,
			Columns:    qr.Columns,
			SampleRows: qr.Rows,
			RowCount:   qr.RowCount,
			Summary:    qr.Summary,
		})
	}
	return out
}

// reportInput assembles the AnalysisReport prompt input from state and
// an already-filtered set of executed queries.
func reportInput(s *AnalysisState, queries []prompt.ExecutedQuery) prompt.ReportInput {
	task := s.FilteredTask
	if task == "" {
		task = s.UserTask
	}
	return prompt.ReportInput{Task: task, Queries: queries}
}

// buildDegradedReport assembles a report with no further LLM call,
// used when the token budget is exhausted before the final
// compose_report call can be made.
func buildDegradedReport(queries []prompt.ExecutedQuery) string {
	if len(queries) == 0 {
		return "No results are available: the token budget was exhausted before any query could be analyzed."
	}

	var b strings.Builder
	b.WriteString("Token budget exhausted before a full report could be generated. Partial results:\n\n")
	for i, q := range queries {
		fmt.Fprintf(&b, "%d. %s (%d rows)\n", i+1, q.Purpose, q.RowCount)
		if q.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", q.Summary)
		}
	}
	return b.String()
}
