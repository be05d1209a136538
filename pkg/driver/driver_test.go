package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/memory"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
	"github.com/codeready-toolchain/dataq/pkg/workflow"
)

// fakeWarehouse is a minimal workflow.WarehouseClient double: enough to
// drive the machine through welcome/select/show-tables and then fail
// fast, which is all these driver-level tests need to observe the
// Driver's status/lifecycle bookkeeping around Machine.Run.
type fakeWarehouse struct{}

func (fakeWarehouse) ListDatasets(ctx context.Context) ([]warehouse.Dataset, error) {
	return []warehouse.Dataset{{Name: "sales"}}, nil
}

func (fakeWarehouse) ListTables(ctx context.Context, dataset string) ([]warehouse.Table, error) {
	return nil, warehouse.ErrDatasetNotFound
}

func (fakeWarehouse) GetSchema(ctx context.Context, dataset, table string) (*warehouse.Table, error) {
	return nil, warehouse.ErrTableNotFound
}

func (fakeWarehouse) Sample(ctx context.Context, sql string, limit int) (*warehouse.QueryResult, error) {
	return nil, warehouse.ErrQueryFailed
}

func (fakeWarehouse) Execute(ctx context.Context, sql string, cap int) (*warehouse.QueryResult, error) {
	return nil, warehouse.ErrQueryFailed
}

type fakeLLMTransport struct{}

func (fakeLLMTransport) Generate(ctx context.Context, input *llm.GenerateInput) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk, 2)
	ch <- &llm.TextChunk{Content: `{"verdict":"accept","filtered_task":"ok"}`}
	ch <- &llm.UsageChunk{TotalTokens: 10}
	close(ch)
	return ch, nil
}

func (fakeLLMTransport) Close() error { return nil }

func testCfg() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workflow.Deadlines.Session = config.Duration{Duration: 2 * time.Second}
	cfg.Workflow.Deadlines.Warehouse = config.Duration{Duration: time.Second}
	cfg.Workflow.Deadlines.LLM = config.Duration{Duration: time.Second}
	cfg.Workflow.Deadlines.Memory = config.Duration{Duration: time.Second}
	return cfg
}

func TestDriver_Run_ReachesFailedStatusOnDatasetNotFound(t *testing.T) {
	drv := New(fakeWarehouse{}, fakeLLMTransport{}, memory.NewMemStore(), testCfg())
	mgr := NewManager()
	sess := mgr.New("proj-1")
	in := &stubInput{selectIdx: 0}

	state, err := drv.Run(context.Background(), sess, in)

	require.NoError(t, err)
	assert.Equal(t, workflow.CodeDatasetNotFound, state.ErrorCode)
	assert.Equal(t, StatusFailed, sess.Status())
}

func TestDriver_RunStreaming_EmitsStepEventsAndClosesChannel(t *testing.T) {
	drv := New(fakeWarehouse{}, fakeLLMTransport{}, memory.NewMemStore(), testCfg())
	mgr := NewManager()
	sess := mgr.New("proj-1")
	in := &stubInput{selectIdx: 0}

	events := make(chan StepEvent, 16)
	_, err := drv.RunStreaming(context.Background(), sess, in, events)
	require.NoError(t, err)

	var steps []string
	for ev := range events {
		steps = append(steps, ev.Step)
	}
	assert.Contains(t, steps, workflow.NodeWelcome)
	assert.Contains(t, steps, workflow.NodeEnd)
}

func TestDriver_Run_SessionTimeoutMarksTimedOut(t *testing.T) {
	cfg := testCfg()
	cfg.Workflow.Deadlines.Session = config.Duration{Duration: 1 * time.Millisecond}

	slowWarehouse := slowListDatasets{delay: 50 * time.Millisecond}
	drv := New(slowWarehouse, fakeLLMTransport{}, memory.NewMemStore(), cfg)
	mgr := NewManager()
	sess := mgr.New("proj-1")

	_, err := drv.Run(context.Background(), sess, &stubInput{})

	assert.NoError(t, err)
	assert.Equal(t, StatusTimedOut, sess.Status())
}

type slowListDatasets struct {
	fakeWarehouse
	delay time.Duration
}

func (s slowListDatasets) ListDatasets(ctx context.Context) ([]warehouse.Dataset, error) {
	select {
	case <-time.After(s.delay):
		return []warehouse.Dataset{{Name: "sales"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type stubInput struct {
	selectIdx int
	task      string
}

func (s *stubInput) SelectDataset(ctx context.Context, datasets []string) (int, error) {
	return s.selectIdx, nil
}

func (s *stubInput) GetTask(ctx context.Context) (string, error) {
	return s.task, nil
}
