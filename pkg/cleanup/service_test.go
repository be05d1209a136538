package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/memory"
)

func testServiceConfig(ttl, interval time.Duration) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workflow.MemoryTTL = config.Duration{Duration: ttl}
	cfg.Memory.SweepInterval = config.Duration{Duration: interval}
	return cfg
}

func TestService_SweepsExpiredEntryOnStartup(t *testing.T) {
	store := memory.NewMemStore()
	key, err := store.Put(context.Background(), memory.Result{SessionID: "s1", Summary: "old"})
	require.NoError(t, err)

	// Let the entry age past a short TTL before starting the service, so
	// the unconditional sweep Start runs before the ticker's first tick
	// reclaims it immediately.
	time.Sleep(15 * time.Millisecond)

	svc := NewService(store, testServiceConfig(10*time.Millisecond, time.Hour))
	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), key)
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestService_KeepsFreshEntries(t *testing.T) {
	store := memory.NewMemStore()
	key, err := store.Put(context.Background(), memory.Result{SessionID: "s1", Summary: "fresh"})
	require.NoError(t, err)

	svc := NewService(store, testServiceConfig(time.Hour, time.Hour))
	svc.Start(context.Background())
	defer svc.Stop()

	time.Sleep(20 * time.Millisecond)
	got, err := store.Get(context.Background(), key)
	assert.NoError(t, err)
	assert.Equal(t, "fresh", got.Summary)
}

func TestService_StartIsIdempotent(t *testing.T) {
	svc := NewService(memory.NewMemStore(), testServiceConfig(time.Hour, time.Hour))
	svc.Start(context.Background())
	firstCancel := svc.cancel
	svc.Start(context.Background())
	assert.NotNil(t, svc.cancel)
	svc.Stop()
	_ = firstCancel
}

func TestService_StopBeforeStartIsNoop(t *testing.T) {
	svc := NewService(memory.NewMemStore(), testServiceConfig(time.Hour, time.Hour))
	assert.NotPanics(t, func() { svc.Stop() })
}

func TestService_StopWaitsForLoopExit(t *testing.T) {
	svc := NewService(memory.NewMemStore(), testServiceConfig(time.Hour, time.Hour))
	svc.Start(context.Background())
	svc.Stop()

	select {
	case <-svc.done:
	default:
		t.Fatal("expected done channel to be closed after Stop")
	}
}
