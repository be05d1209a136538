package workflow

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/dataq/pkg/prompt"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

func runGenerateQueries(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	return synthesizeAndValidate(ctx, s, d, s.FilteredTask)
}

// runGenerateQueriesRetry re-enters query synthesis along the
// generation retry edge: it is reached both from a safety-parse
// rejection inside generate_queries and from a failed sample test, and
// carries the prior failure into the reprompt via genRetryReason.
func runGenerateQueriesRetry(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	if s.RetryCountGen >= d.MaxRetriesGeneration {
		s.fail(CodeSQLSemantic, fmt.Errorf("generation retries exhausted: %s", s.genRetryReason))
		return NodeError, nil
	}
	s.RetryCountGen++
	recordRetry("generation")

	enrichedTask := fmt.Sprintf(
		"%s\n\n(A previous attempt produced a query that failed: %s. Fix the issue and keep the query read-only.)",
		s.FilteredTask, s.genRetryReason,
	)
	return synthesizeAndValidate(ctx, s, d, enrichedTask)
}

func synthesizeAndValidate(ctx context.Context, s *AnalysisState, d *Deps, task string) (string, error) {
	schemaDoc := buildSchemaDoc(s.TablesInDataset, s.TableSchemas)

	res, err := d.LLM.SynthesizeQueries(ctx, s.SessionID, prompt.SQLGenInput{
		Task:           task,
		SchemaDoc:      schemaDoc,
		MaxQueries:     d.MaxQueries,
		SampleRowLimit: d.SampleRowLimit,
	})
	if err != nil {
		if isBudgetExhausted(err) {
			s.fail(CodeBudgetExhausted, err)
			return NodeError, nil
		}
		s.genRetryReason = err.Error()
		s.fail(CodeMalformedOutput, err)
		return NodeGenerateQueriesRetry, nil
	}

	if len(res.Queries) == 0 {
		s.genRetryReason = fmt.Sprintf("model returned no candidate queries: %s", res.Notes)
		s.fail(CodeSQLSemantic, fmt.Errorf("%s", s.genRetryReason))
		return NodeGenerateQueriesRetry, nil
	}
	if d.MaxQueries > 0 && len(res.Queries) > d.MaxQueries {
		res.Queries = res.Queries[:d.MaxQueries]
	}

	queries := make([]string, 0, len(res.Queries))
	purposes := make([]string, 0, len(res.Queries))
	for _, q := range res.Queries {
		if err := warehouse.CheckReadOnly(q.SQL); err != nil {
			s.genRetryReason = fmt.Sprintf("query %q rejected: %v", q.SQL, err)
			s.fail(CodeUnsafeSQL, err)
			return NodeGenerateQueriesRetry, nil
		}
		queries = append(queries, q.SQL)
		purposes = append(purposes, q.Purpose)
	}

	s.GeneratedQueries = queries
	s.queryPurposes = purposes
	s.ErrorCode = ""
	s.ErrorMessage = ""
	s.genRetryReason = ""
	return NodeTestQueries, nil
}
