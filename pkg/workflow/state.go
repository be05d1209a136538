// Package workflow implements the analysis state machine: the node
// graph that turns a free-form task into read-only SQL, validates it
// on a sample, executes it against the warehouse, and composes a final
// report, threading a single AnalysisState through every step.
package workflow

import (
	"context"
	"time"

	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/memory"
	"github.com/codeready-toolchain/dataq/pkg/prompt"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

// MemoryStore is the subset of memory.Store the workflow engine spills
// oversized results into. Aliased rather than redeclared so both the
// postgres- and memory-backed implementations satisfy it without an
// adapter shim.
type MemoryStore = memory.Store

// Message is one role-tagged turn recorded for observability; it does
// not feed back into LLM calls (those are built fresh per node from
// typed prompt inputs, never from this log).
type Message struct {
	Role    string
	Content string
}

// TestResult is the outcome of sample-executing one generated query.
type TestResult struct {
	QueryIdx  int
	OK        bool
	RowCount  int
	SampleRows [][]any
	Error     string
}

// QueryOutcome is the outcome of fully executing one generated query.
// Exactly one of Rows or MemoryKey is set once Succeeded is true.
type QueryOutcome struct {
	QueryIdx  int
	Succeeded bool
	Rows      [][]any
	MemoryKey string
	RowCount  int
	Columns   []string
	Summary   string
}

// AnalysisState is the single mutable record threaded through every
// node of the workflow. Nodes read and write it directly; the driver
// owns the instance and is the only caller that persists or streams it.
type AnalysisState struct {
	SessionID string
	ProjectID string

	AvailableDatasets []string
	SelectedDataset   string

	TablesInDataset []string
	TableSchemas    map[string][]warehouse.Field

	UserTask     string
	FilteredTask string
	SafetyReason string

	GeneratedQueries []string
	TestResults      []TestResult
	QueryResults     []QueryOutcome
	MemoryKeys       []string

	AnalysisReport string
	ErrorCode      string
	ErrorMessage   string

	RetryCountGen  int
	RetryCountExec int

	CurrentStep string
	Cancelled   bool

	Messages []Message

	StartedAt time.Time

	// genRetryReason carries the last generation/sample-test failure
	// into generate_queries_retry's reprompt; execErrors carries
	// per-query execution failures into execute_queries_retry.
	// queryPurposes mirrors GeneratedQueries with the LLM's stated
	// purpose for each, threaded through to the report prompt.
	genRetryReason string
	execErrors     map[int]string
	queryPurposes  []string
}

// NewAnalysisState initializes a fresh state for one session.
func NewAnalysisState(sessionID, projectID string) *AnalysisState {
	return &AnalysisState{
		SessionID:    sessionID,
		ProjectID:    projectID,
		TableSchemas: make(map[string][]warehouse.Field),
		CurrentStep:  NodeWelcome,
		StartedAt:    time.Now(),
	}
}

// recordMessage appends a role-tagged turn to the observability log.
func (s *AnalysisState) recordMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// fail sets the terminal/recoverable error fields read by the error
// node and by the driver when reporting back to the caller.
func (s *AnalysisState) fail(code string, err error) {
	s.ErrorCode = code
	if err != nil {
		s.ErrorMessage = err.Error()
	}
}

// WarehouseClient is the subset of *warehouse.Client the workflow
// engine calls. Declared as an interface (rather than nodes taking the
// concrete type directly) so node tests can substitute a fake
// collaborator instead of a live Postgres connection.
type WarehouseClient interface {
	ListDatasets(ctx context.Context) ([]warehouse.Dataset, error)
	ListTables(ctx context.Context, dataset string) ([]warehouse.Table, error)
	GetSchema(ctx context.Context, dataset, table string) (*warehouse.Table, error)
	Sample(ctx context.Context, sql string, limit int) (*warehouse.QueryResult, error)
	Execute(ctx context.Context, sql string, cap int) (*warehouse.QueryResult, error)
}

// LLMClient is the subset of *llm.Adapter the workflow engine calls,
// mirrored as an interface for the same reason as WarehouseClient.
type LLMClient interface {
	ClassifySafety(ctx context.Context, sessionID string, in prompt.SafetyFilterInput) (*llm.SafetyVerdict, error)
	SynthesizeQueries(ctx context.Context, sessionID string, in prompt.SQLGenInput) (*llm.SQLGenResult, error)
	RepairQuery(ctx context.Context, sessionID string, in prompt.RepairInput) (*llm.RepairResult, error)
	ComposeReport(ctx context.Context, sessionID string, in prompt.ReportInput) (string, error)
}

// Deps bundles the collaborators every node needs. Constructed once by
// the driver and passed to Machine.Run; nodes never construct their own.
type Deps struct {
	Warehouse WarehouseClient
	LLM       LLMClient
	Memory    MemoryStore

	MaxRetriesGeneration int
	MaxRetriesExecution  int
	MaxQueries           int
	SampleRowLimit       int
	ExecRowCap           int
	InlineRowLimit       int
	InlineByteLimit      int64
	SummaryTopK          int
	MemoryTTL            time.Duration

	DeadlineWarehouse time.Duration
	DeadlineLLM       time.Duration
	DeadlineMemory    time.Duration
}
