package workflow

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/prompt"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

// fakeWarehouse is a WarehouseClient test double driven entirely by
// function fields, so each test wires only the behavior it exercises.
type fakeWarehouse struct {
	listDatasetsFn func(ctx context.Context) ([]warehouse.Dataset, error)
	listTablesFn   func(ctx context.Context, dataset string) ([]warehouse.Table, error)
	getSchemaFn    func(ctx context.Context, dataset, table string) (*warehouse.Table, error)
	sampleFn       func(ctx context.Context, sql string, limit int) (*warehouse.QueryResult, error)
	executeFn      func(ctx context.Context, sql string, cap int) (*warehouse.QueryResult, error)
}

func (f *fakeWarehouse) ListDatasets(ctx context.Context) ([]warehouse.Dataset, error) {
	if f.listDatasetsFn != nil {
		return f.listDatasetsFn(ctx)
	}
	return nil, fmt.Errorf("ListDatasets not configured")
}

func (f *fakeWarehouse) ListTables(ctx context.Context, dataset string) ([]warehouse.Table, error) {
	if f.listTablesFn != nil {
		return f.listTablesFn(ctx, dataset)
	}
	return nil, fmt.Errorf("ListTables not configured")
}

func (f *fakeWarehouse) GetSchema(ctx context.Context, dataset, table string) (*warehouse.Table, error) {
	if f.getSchemaFn != nil {
		return f.getSchemaFn(ctx, dataset, table)
	}
	return nil, fmt.Errorf("GetSchema not configured")
}

func (f *fakeWarehouse) Sample(ctx context.Context, sql string, limit int) (*warehouse.QueryResult, error) {
	if f.sampleFn != nil {
		return f.sampleFn(ctx, sql, limit)
	}
	return nil, fmt.Errorf("Sample not configured")
}

func (f *fakeWarehouse) Execute(ctx context.Context, sql string, cap int) (*warehouse.QueryResult, error) {
	if f.executeFn != nil {
		return f.executeFn(ctx, sql, cap)
	}
	return nil, fmt.Errorf("Execute not configured")
}

// fakeLLM is an LLMClient test double driven by function fields.
type fakeLLM struct {
	classifySafetyFn    func(ctx context.Context, sessionID string, in prompt.SafetyFilterInput) (*llm.SafetyVerdict, error)
	synthesizeQueriesFn func(ctx context.Context, sessionID string, in prompt.SQLGenInput) (*llm.SQLGenResult, error)
	repairQueryFn       func(ctx context.Context, sessionID string, in prompt.RepairInput) (*llm.RepairResult, error)
	composeReportFn     func(ctx context.Context, sessionID string, in prompt.ReportInput) (string, error)
}

func (f *fakeLLM) ClassifySafety(ctx context.Context, sessionID string, in prompt.SafetyFilterInput) (*llm.SafetyVerdict, error) {
	if f.classifySafetyFn != nil {
		return f.classifySafetyFn(ctx, sessionID, in)
	}
	return &llm.SafetyVerdict{Verdict: "accept", FilteredTask: in.Task}, nil
}

func (f *fakeLLM) SynthesizeQueries(ctx context.Context, sessionID string, in prompt.SQLGenInput) (*llm.SQLGenResult, error) {
	if f.synthesizeQueriesFn != nil {
		return f.synthesizeQueriesFn(ctx, sessionID, in)
	}
	return nil, fmt.Errorf("SynthesizeQueries not configured")
}

func (f *fakeLLM) RepairQuery(ctx context.Context, sessionID string, in prompt.RepairInput) (*llm.RepairResult, error) {
	if f.repairQueryFn != nil {
		return f.repairQueryFn(ctx, sessionID, in)
	}
	return nil, fmt.Errorf("RepairQuery not configured")
}

func (f *fakeLLM) ComposeReport(ctx context.Context, sessionID string, in prompt.ReportInput) (string, error) {
	if f.composeReportFn != nil {
		return f.composeReportFn(ctx, sessionID, in)
	}
	return "report", nil
}

// fakeInput is an InputProvider test double that answers with
// pre-configured, queued values.
type fakeInput struct {
	selectDatasetQueue []int
	selectDatasetErr   error
	task               string
	taskErr            error
}

func (f *fakeInput) SelectDataset(ctx context.Context, datasets []string) (int, error) {
	if f.selectDatasetErr != nil {
		return -1, f.selectDatasetErr
	}
	if len(f.selectDatasetQueue) == 0 {
		return -1, nil
	}
	idx := f.selectDatasetQueue[0]
	f.selectDatasetQueue = f.selectDatasetQueue[1:]
	return idx, nil
}

func (f *fakeInput) GetTask(ctx context.Context) (string, error) {
	if f.taskErr != nil {
		return "", f.taskErr
	}
	return f.task, nil
}

// testDeps returns a Deps with every tunable set to sane defaults; tests
// override only the fields they care about.
func testDeps() *Deps {
	return &Deps{
		MaxRetriesGeneration: 2,
		MaxRetriesExecution:  2,
		MaxQueries:           5,
		SampleRowLimit:       10,
		ExecRowCap:           10000,
		InlineRowLimit:       100,
		InlineByteLimit:      128 * 1024,
		SummaryTopK:          5,
	}
}

var _ WarehouseClient = (*fakeWarehouse)(nil)
var _ LLMClient = (*fakeLLM)(nil)
