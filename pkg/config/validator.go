package config

import (
	"fmt"
	"os"
)

// Validator validates a loaded Config comprehensively with clear error
// messages, mirroring the fail-fast, per-section style used throughout
// this codebase's configuration loading.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation, stopping at the first error.
func (v *Validator) ValidateAll() error {
	if err := v.validateWorkflow(); err != nil {
		return fmt.Errorf("workflow validation failed: %w", err)
	}
	if err := v.validateWarehouse(); err != nil {
		return fmt.Errorf("warehouse validation failed: %w", err)
	}
	if err := v.validateLLM(); err != nil {
		return fmt.Errorf("llm validation failed: %w", err)
	}
	if err := v.validateMemory(); err != nil {
		return fmt.Errorf("memory validation failed: %w", err)
	}
	if err := v.validateAPI(); err != nil {
		return fmt.Errorf("api validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateWorkflow() error {
	w := v.cfg.Workflow

	if w.MaxRetriesGeneration < 0 {
		return NewValidationError("workflow", "max_retries_generation", fmt.Errorf("must be non-negative, got %d", w.MaxRetriesGeneration))
	}
	if w.MaxRetriesExecution < 0 {
		return NewValidationError("workflow", "max_retries_execution", fmt.Errorf("must be non-negative, got %d", w.MaxRetriesExecution))
	}
	if w.MaxQueries < 1 {
		return NewValidationError("workflow", "max_queries", fmt.Errorf("must be at least 1, got %d", w.MaxQueries))
	}
	if w.SampleRowLimit < 1 {
		return NewValidationError("workflow", "sample_row_limit", fmt.Errorf("must be at least 1, got %d", w.SampleRowLimit))
	}
	if w.ExecRowCap < w.SampleRowLimit {
		return NewValidationError("workflow", "exec_row_cap", fmt.Errorf("must be at least sample_row_limit (%d), got %d", w.SampleRowLimit, w.ExecRowCap))
	}
	if w.InlineRowLimit < 1 {
		return NewValidationError("workflow", "inline_row_limit", fmt.Errorf("must be at least 1, got %d", w.InlineRowLimit))
	}
	if w.InlineByteLimit < 1 {
		return NewValidationError("workflow", "inline_byte_limit", fmt.Errorf("must be positive"))
	}
	if w.TokenBudgetSession < 1 {
		return NewValidationError("workflow", "token_budget_session", fmt.Errorf("must be positive, got %d", w.TokenBudgetSession))
	}
	if w.MemoryTTL.Duration <= 0 {
		return NewValidationError("workflow", "memory_ttl", fmt.Errorf("must be positive"))
	}

	d := w.Deadlines
	if d.Warehouse.Duration <= 0 {
		return NewValidationError("workflow", "deadlines.warehouse", fmt.Errorf("must be positive"))
	}
	if d.LLM.Duration <= 0 {
		return NewValidationError("workflow", "deadlines.llm", fmt.Errorf("must be positive"))
	}
	if d.Memory.Duration <= 0 {
		return NewValidationError("workflow", "deadlines.memory", fmt.Errorf("must be positive"))
	}
	if d.Session.Duration <= 0 {
		return NewValidationError("workflow", "deadlines.session", fmt.Errorf("must be positive"))
	}

	return nil
}

func (v *Validator) validateWarehouse() error {
	w := v.cfg.Warehouse
	if w.DSN == "" {
		return NewValidationError("warehouse", "dsn", fmt.Errorf("%w: set WAREHOUSE_DSN or warehouse.dsn", ErrMissingRequiredField))
	}
	if w.MaxOpenConns < 1 {
		return NewValidationError("warehouse", "max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if w.MaxIdleConns < 0 || w.MaxIdleConns > w.MaxOpenConns {
		return NewValidationError("warehouse", "max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns"))
	}
	return nil
}

func (v *Validator) validateLLM() error {
	l := v.cfg.LLM
	if l.Model == "" {
		return NewValidationError("llm", "model", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	if l.APIKeyEnv != "" {
		if os.Getenv(l.APIKeyEnv) == "" {
			return NewValidationError("llm", "api_key_env", fmt.Errorf("environment variable %s is not set", l.APIKeyEnv))
		}
	}
	if l.MaxTokens < 1 {
		return NewValidationError("llm", "max_tokens", fmt.Errorf("must be positive"))
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return NewValidationError("llm", "temperature", fmt.Errorf("must be between 0 and 2, got %v", l.Temperature))
	}
	return nil
}

func (v *Validator) validateMemory() error {
	m := v.cfg.Memory
	switch m.Backend {
	case "postgres":
		if m.DSN == "" {
			return NewValidationError("memory", "dsn", fmt.Errorf("%w: required when backend is postgres", ErrMissingRequiredField))
		}
	case "memory":
		// No external resource required.
	default:
		return NewValidationError("memory", "backend", fmt.Errorf("%w: %q (want postgres or memory)", ErrInvalidValue, m.Backend))
	}
	if m.SweepInterval.Duration <= 0 {
		return NewValidationError("memory", "sweep_interval", fmt.Errorf("must be positive"))
	}
	if m.SummaryTopK < 1 {
		return NewValidationError("memory", "summary_top_k", fmt.Errorf("must be at least 1"))
	}
	return nil
}

func (v *Validator) validateAPI() error {
	a := v.cfg.API
	if a.ListenAddr == "" {
		return NewValidationError("api", "listen_addr", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	return nil
}
