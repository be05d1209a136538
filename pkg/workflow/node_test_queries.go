package workflow

import (
	"context"
	"fmt"
)

func runTestQueries(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	results := make([]TestResult, len(s.GeneratedQueries))
	failed := false
	var lastErr string

	for i, sql := range s.GeneratedQueries {
		qr, err := d.Warehouse.Sample(ctx, sql, d.SampleRowLimit)
		if err != nil {
			failed = true
			lastErr = err.Error()
			results[i] = TestResult{QueryIdx: i, OK: false, Error: lastErr}
			continue
		}
		results[i] = TestResult{
			QueryIdx:   i,
			OK:         true,
			RowCount:   qr.RowCount,
			SampleRows: qr.Rows,
		}
	}

	s.TestResults = results
	if failed {
		s.genRetryReason = lastErr
		s.fail(CodeSQLSemantic, fmt.Errorf("%s", lastErr))
		return NodeGenerateQueriesRetry, nil
	}
	return NodeExecuteQueries, nil
}
