package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Node names, also used as AnalysisState.CurrentStep values.
const (
	NodeWelcome              = "welcome"
	NodeSelectDataset        = "select_dataset"
	NodeShowTables           = "show_tables"
	NodeGetTask              = "get_task"
	NodeFilterTask           = "filter_task"
	NodeReadSchemas          = "read_schemas"
	NodeGenerateQueries      = "generate_queries"
	NodeGenerateQueriesRetry = "generate_queries_retry"
	NodeTestQueries          = "test_queries"
	NodeExecuteQueries       = "execute_queries"
	NodeExecuteQueriesRetry  = "execute_queries_retry"
	NodeGenerateReport       = "generate_report"
	NodeError                = "error"
	NodeEnd                  = "end"
)

// ErrCancelled is returned by Run when the context is cancelled or its
// deadline is exceeded between node boundaries; the machine never
// mutates state after observing it.
var ErrCancelled = errors.New("workflow cancelled")

// InputProvider supplies the two pieces of human input the graph needs
// mid-flight. The session driver supplies the concrete implementation
// (terminal prompt, HTTP long-poll, websocket round trip); the machine
// itself never reads stdin or a socket directly.
type InputProvider interface {
	// SelectDataset asks the user to pick one of datasets by index and
	// returns the chosen index (0-based).
	SelectDataset(ctx context.Context, datasets []string) (int, error)

	// GetTask asks the user for the free-form analysis task.
	GetTask(ctx context.Context) (string, error)
}

// StepObserver is called after every node transition, including the
// terminal one. It is how streaming mode (spec C6) surfaces
// {step, state_delta} to a front-end; blocking mode passes nil.
type StepObserver func(step string, state *AnalysisState)

type nodeFunc func(ctx context.Context, s *AnalysisState, d *Deps, in InputProvider) (next string, err error)

// Machine is the node-function registry plus the loop that advances
// AnalysisState from node to node until it reaches "end".
type Machine struct {
	nodes map[string]nodeFunc
}

// NewMachine builds the machine with the fixed node set the spec
// defines; callers never register additional nodes.
func NewMachine() *Machine {
	return &Machine{
		nodes: map[string]nodeFunc{
			NodeWelcome:              runWelcome,
			NodeSelectDataset:        runSelectDataset,
			NodeShowTables:           runShowTables,
			NodeGetTask:              runGetTask,
			NodeFilterTask:           runFilterTask,
			NodeReadSchemas:          runReadSchemas,
			NodeGenerateQueries:      runGenerateQueries,
			NodeGenerateQueriesRetry: runGenerateQueriesRetry,
			NodeTestQueries:          runTestQueries,
			NodeExecuteQueries:       runExecuteQueries,
			NodeExecuteQueriesRetry:  runExecuteQueriesRetry,
			NodeGenerateReport:       runGenerateReport,
			NodeError:                runError,
		},
	}
}

// Run advances state from its CurrentStep to "end", calling observe
// (if non-nil) after every transition. The caller is responsible for
// bounding the session wall clock via ctx (the driver applies the
// configured session deadline with context.WithTimeout); Run honors ctx.Done() at the
// next node boundary, allowing the in-flight node to return before
// state.ErrorMessage is set to "cancelled" and no further node runs.
func (m *Machine) Run(ctx context.Context, state *AnalysisState, deps *Deps, input InputProvider, observe StepObserver) error {
	step := state.CurrentStep
	if step == "" {
		step = NodeWelcome
	}

	for step != NodeEnd {
		if ctx.Err() != nil {
			return m.cancel(ctx, state, observe)
		}

		fn, ok := m.nodes[step]
		if !ok {
			return fmt.Errorf("workflow: unknown node %q", step)
		}

		state.CurrentStep = step
		slog.Debug("workflow: entering node", "session_id", state.SessionID, "node", step)

		start := time.Now()
		next, err := fn(ctx, state, deps, input)
		nodeDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
		if err != nil {
			var werr *WorkflowError
			if errors.As(err, &werr) {
				state.fail(werr.Code, werr)
			} else {
				state.fail(CodeInternal, err)
			}
			next = NodeError
		}

		if observe != nil {
			observe(step, state)
		}

		if ctx.Err() != nil {
			return m.cancel(ctx, state, observe)
		}

		if step == NodeError {
			step = NodeEnd
			state.CurrentStep = NodeEnd
			if observe != nil {
				observe(NodeEnd, state)
			}
			break
		}
		step = next
	}

	return nil
}

func (m *Machine) cancel(ctx context.Context, state *AnalysisState, observe StepObserver) error {
	state.Cancelled = true
	code := CodeCancelled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = CodeDeadline
	}
	state.fail(code, fmt.Errorf("cancelled"))
	state.ErrorMessage = "cancelled"
	state.CurrentStep = NodeEnd
	if observe != nil {
		observe(NodeEnd, state)
	}
	return ErrCancelled
}
