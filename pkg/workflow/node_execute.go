package workflow

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/dataq/pkg/memory"
	"github.com/codeready-toolchain/dataq/pkg/prompt"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

func runExecuteQueries(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	s.QueryResults = make([]QueryOutcome, len(s.GeneratedQueries))
	s.execErrors = make(map[int]string)
	anyFailed := false

	for i, sql := range s.GeneratedQueries {
		qr, err := d.Warehouse.Execute(ctx, sql, d.ExecRowCap)
		if err != nil {
			anyFailed = true
			s.execErrors[i] = err.Error()
			s.QueryResults[i] = QueryOutcome{QueryIdx: i}
			continue
		}
		outcome, err := spillIfOversized(ctx, s, d, i, qr)
		if err != nil {
			s.fail(CodeInternal, err)
			return NodeError, nil
		}
		s.QueryResults[i] = outcome
	}

	s.RetryCountExec = 0
	if anyFailed {
		return NodeExecuteQueriesRetry, nil
	}
	return NodeGenerateReport, nil
}

func runExecuteQueriesRetry(ctx context.Context, s *AnalysisState, d *Deps, _ InputProvider) (string, error) {
	if s.RetryCountExec >= d.MaxRetriesExecution {
		s.fail(CodeSQLSemantic, fmt.Errorf("execution retries exhausted: %s", lastExecError(s)))
		return NodeError, nil
	}
	s.RetryCountExec++
	recordRetry("execution")

	schemaDoc := buildSchemaDoc(s.TablesInDataset, s.TableSchemas)
	allOK := true

	for i := range s.GeneratedQueries {
		errMsg, failed := s.execErrors[i]
		if !failed {
			continue
		}
		repaired, err := d.LLM.RepairQuery(ctx, s.SessionID, prompt.RepairInput{
			SQL:          s.GeneratedQueries[i],
			ErrorMessage: errMsg,
			SchemaDoc:    schemaDoc,
		})
		if err != nil {
			if isBudgetExhausted(err) {
				s.fail(CodeBudgetExhausted, err)
				return NodeError, nil
			}
			allOK = false
			s.execErrors[i] = err.Error()
			continue
		}
		if repaired.SQL == "" {
			allOK = false
			s.execErrors[i] = repaired.Notes
			continue
		}
		if err := warehouse.CheckReadOnly(repaired.SQL); err != nil {
			allOK = false
			s.execErrors[i] = err.Error()
			continue
		}

		s.GeneratedQueries[i] = repaired.SQL
		qr, err := d.Warehouse.Execute(ctx, repaired.SQL, d.ExecRowCap)
		if err != nil {
			allOK = false
			s.execErrors[i] = err.Error()
			continue
		}

		outcome, err := spillIfOversized(ctx, s, d, i, qr)
		if err != nil {
			s.fail(CodeInternal, err)
			return NodeError, nil
		}
		s.QueryResults[i] = outcome
		delete(s.execErrors, i)
	}

	if !allOK || len(s.execErrors) > 0 {
		return NodeExecuteQueriesRetry, nil
	}

	s.ErrorCode = ""
	s.ErrorMessage = ""
	return NodeGenerateReport, nil
}

func lastExecError(s *AnalysisState) string {
	for _, msg := range s.execErrors {
		return msg
	}
	return "unknown execution error"
}

// spillIfOversized decides whether qr is small enough to keep inline in
// state or must be spilled to the external memory store, summarizing
// it for the report prompt either way.
func spillIfOversized(ctx context.Context, s *AnalysisState, d *Deps, idx int, qr *warehouse.QueryResult) (QueryOutcome, error) {
	if qr.RowCount <= d.InlineRowLimit && qr.ByteSize() <= d.InlineByteLimit {
		return QueryOutcome{
			QueryIdx:  idx,
			Succeeded: true,
			Rows:      qr.Rows,
			RowCount:  qr.RowCount,
			Columns:   qr.Columns,
		}, nil
	}

	summary := memory.Summarize(qr.Columns, qr.Rows, d.SummaryTopK)
	key, err := d.Memory.Put(ctx, memory.Result{
		SessionID: s.SessionID,
		Columns:   qr.Columns,
		Rows:      qr.Rows,
		Summary:   summary,
		RowCount:  qr.RowCount,
	})
	if err != nil {
		return QueryOutcome{}, fmt.Errorf("failed to spill oversized result: %w", err)
	}

	recordSpill()
	s.MemoryKeys = append(s.MemoryKeys, key)
	return QueryOutcome{
		QueryIdx:  idx,
		Succeeded: true,
		MemoryKey: key,
		RowCount:  qr.RowCount,
		Columns:   qr.Columns,
		Summary:   summary,
	}, nil
}
