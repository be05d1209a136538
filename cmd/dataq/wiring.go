package main

import (
	"context"
	"fmt"
	"os"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/driver"
	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/memory"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

// app bundles every long-lived collaborator the CLI and API front-ends
// share, plus the teardown needed for each.
type app struct {
	cfg       *config.Config
	warehouse *warehouse.Client
	memory    memory.Store
	driver    *driver.Driver
	manager   *driver.Manager
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	wh, err := warehouse.New(ctx, cfg.Warehouse, cfg.Workflow.Deadlines.Warehouse.Duration)
	if err != nil {
		return nil, nil, fmt.Errorf("connect warehouse: %w", err)
	}

	store, err := buildMemoryStore(ctx, cfg.Memory)
	if err != nil {
		wh.Close()
		return nil, nil, fmt.Errorf("open memory store: %w", err)
	}

	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	llmClient := llm.NewOpenAIClient(cfg.LLM, apiKey)

	drv := driver.New(wh, llmClient, store, cfg)
	manager := driver.NewManager()

	cleanup := func() {
		wh.Close()
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing memory store: %v\n", err)
		}
	}

	return &app{cfg: cfg, warehouse: wh, memory: store, driver: drv, manager: manager}, cleanup, nil
}

func buildMemoryStore(ctx context.Context, cfg config.MemoryConfig) (memory.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return memory.NewPostgresStore(ctx, cfg.DSN)
	case "memory", "":
		return memory.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
