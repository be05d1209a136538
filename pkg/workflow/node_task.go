package workflow

import (
	"context"
	"strings"

	"github.com/codeready-toolchain/dataq/pkg/prompt"
)

func runGetTask(ctx context.Context, s *AnalysisState, _ *Deps, in InputProvider) (string, error) {
	task, err := in.GetTask(ctx)
	if err != nil {
		s.fail(CodeInternal, err)
		return NodeError, nil
	}
	s.UserTask = task
	s.recordMessage("user", task)
	return NodeFilterTask, nil
}

func runFilterTask(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	verdict, err := d.LLM.ClassifySafety(ctx, s.SessionID, prompt.SafetyFilterInput{
		Task:     s.UserTask,
		Datasets: s.AvailableDatasets,
	})
	if err != nil {
		if isBudgetExhausted(err) {
			s.fail(CodeBudgetExhausted, err)
			return NodeError, nil
		}
		s.fail(CodeMalformedOutput, err)
		return NodeError, nil
	}

	if strings.EqualFold(verdict.Verdict, "reject") {
		s.SafetyReason = verdict.RejectionReason
		s.fail(CodeUnsafeTask, nil)
		s.ErrorMessage = verdict.RejectionReason
		return NodeError, nil
	}

	// filtered_task is the model's sanitized restatement of the task: a
	// superset of the original's constraints that never adds mutating
	// intent not present in user_task. Fall back to the raw task only if
	// the model left it blank despite accepting.
	s.FilteredTask = verdict.FilteredTask
	if s.FilteredTask == "" {
		s.FilteredTask = s.UserTask
	}
	return NodeReadSchemas, nil
}
