package driver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/workflow"
)

// Driver runs the workflow state machine to completion on behalf of one
// session, in either blocking or streaming mode, bounding the whole run
// by the configured session wall-clock deadline (spec §5,
// DEADLINE_SESSION) and surfacing cancellation cleanly.
//
// A Driver owns the shared collaborators (the warehouse pool, the LLM
// transport, the external memory store) but builds a fresh
// workflow.Deps per run, because the token budget inside llm.Adapter is
// scoped to a single session and must not be shared across concurrent
// sessions.
type Driver struct {
	machine   *workflow.Machine
	warehouse workflow.WarehouseClient
	llmClient llm.Client
	memory    workflow.MemoryStore
	cfg       *config.Config
}

// New builds a Driver around the shared warehouse/LLM/memory
// collaborators, using cfg for every per-session tunable (retry
// budgets, row caps, token budget, deadlines).
func New(wh workflow.WarehouseClient, llmClient llm.Client, mem workflow.MemoryStore, cfg *config.Config) *Driver {
	return &Driver{
		machine:   workflow.NewMachine(),
		warehouse: wh,
		llmClient: llmClient,
		memory:    mem,
		cfg:       cfg,
	}
}

// newDeps builds the per-session Deps, including a fresh token budget.
func (d *Driver) newDeps() *workflow.Deps {
	wc := d.cfg.Workflow
	budget := llm.NewBudget(wc.TokenBudgetSession)
	return &workflow.Deps{
		Warehouse: d.warehouse,
		LLM:       llm.NewAdapter(d.llmClient, d.cfg.LLM.Model, budget),
		Memory:    d.memory,

		MaxRetriesGeneration: wc.MaxRetriesGeneration,
		MaxRetriesExecution:  wc.MaxRetriesExecution,
		MaxQueries:           wc.MaxQueries,
		SampleRowLimit:       wc.SampleRowLimit,
		ExecRowCap:           wc.ExecRowCap,
		InlineRowLimit:       wc.InlineRowLimit,
		InlineByteLimit:      int64(wc.InlineByteLimit),
		SummaryTopK:          d.cfg.Memory.SummaryTopK,
		MemoryTTL:            wc.MemoryTTL.Duration,

		DeadlineWarehouse: wc.Deadlines.Warehouse.Duration,
		DeadlineLLM:       wc.Deadlines.LLM.Duration,
		DeadlineMemory:    wc.Deadlines.Memory.Duration,
	}
}

// Run executes sess's workflow to completion, blocking the caller, and
// returns the terminal AnalysisState. input supplies the two points of
// human interaction the graph needs (dataset selection, task text).
func (d *Driver) Run(ctx context.Context, sess *Session, input workflow.InputProvider) (*workflow.AnalysisState, error) {
	return d.run(ctx, sess, input, nil)
}

// RunStreaming executes sess's workflow like Run, but additionally
// sends a StepEvent on events after every node transition, closing the
// channel when the run terminates. The caller must drain events or the
// run will block on a full channel; a buffered channel is recommended.
func (d *Driver) RunStreaming(ctx context.Context, sess *Session, input workflow.InputProvider, events chan<- StepEvent) (*workflow.AnalysisState, error) {
	defer close(events)
	observe := func(step string, _ *workflow.AnalysisState) {
		events <- StepEvent{SessionID: sess.id, Step: step, State: sess.Snapshot()}
	}
	return d.run(ctx, sess, input, observe)
}

func (d *Driver) run(ctx context.Context, sess *Session, input workflow.InputProvider, observe workflow.StepObserver) (*workflow.AnalysisState, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.cfg.Workflow.Deadlines.Session.Duration)
	sess.setCancelFunc(cancel)
	defer cancel()

	sess.setStatus(StatusRunning)
	slog.Info("driver: session starting", "session_id", sess.id, "project_id", sess.state.ProjectID)

	err := d.machine.Run(runCtx, sess.state, d.newDeps(), input, observe)

	switch {
	case errors.Is(err, workflow.ErrCancelled):
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			sess.setStatus(StatusTimedOut)
		} else {
			sess.setStatus(StatusCancelled)
		}
	case err != nil:
		sess.setStatus(StatusFailed)
	case sess.state.ErrorCode != "":
		sess.setStatus(StatusFailed)
	default:
		sess.setStatus(StatusCompleted)
	}

	slog.Info("driver: session finished",
		"session_id", sess.id, "status", sess.Status(), "error_code", sess.state.ErrorCode)

	if err != nil && !errors.Is(err, workflow.ErrCancelled) {
		return sess.state, err
	}
	return sess.state, nil
}
