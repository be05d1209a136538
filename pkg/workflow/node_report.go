package workflow

import "context"

func runGenerateReport(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	queries := buildExecutedQueries(s)

	text, err := d.LLM.ComposeReport(ctx, s.SessionID, reportInput(s, queries))
	if err != nil {
		if isBudgetExhausted(err) {
			s.fail(CodeBudgetExhausted, err)
			s.AnalysisReport = buildDegradedReport(queries)
			return NodeEnd, nil
		}
		s.fail(CodeInternal, err)
		return NodeError, nil
	}

	s.AnalysisReport = text
	return NodeEnd, nil
}

// runError is the terminal sink: it never routes anywhere else. It
// attempts a best-effort, possibly partial report from whatever
// queries succeeded before the failure, per the fail-open contract in
// the error-handling design; a budget-exhausted terminal state skips
// the LLM call entirely and degrades straight to a text summary.
func runError(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	queries := buildExecutedQueries(s)
	if len(queries) == 0 {
		return NodeEnd, nil
	}

	if s.ErrorCode == CodeBudgetExhausted {
		s.AnalysisReport = buildDegradedReport(queries)
		return NodeEnd, nil
	}

	text, err := d.LLM.ComposeReport(ctx, s.SessionID, reportInput(s, queries))
	if err == nil {
		s.AnalysisReport = text
	}
	return NodeEnd, nil
}
