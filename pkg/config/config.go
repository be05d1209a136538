package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through the warehouse adapter, LLM adapter, memory store,
// workflow engine, and session driver.
type Config struct {
	configDir string

	Workflow  WorkflowConfig  `yaml:"workflow"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	LLM       LLMConfig       `yaml:"llm"`
	Memory    MemoryConfig    `yaml:"memory"`
	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// WorkflowConfig holds the tunables governing the analysis state machine:
// retry budgets, row caps, token budgets, and per-stage deadlines.
type WorkflowConfig struct {
	// MaxRetriesGeneration bounds how many times query generation may be
	// reprompted after a malformed or unsafe LLM response.
	MaxRetriesGeneration int `yaml:"max_retries_generation" validate:"min=0"`

	// MaxRetriesExecution bounds how many times a failed query execution
	// may be repaired and re-run, independent of MaxRetriesGeneration.
	MaxRetriesExecution int `yaml:"max_retries_execution" validate:"min=0"`

	// MaxQueries caps how many candidate queries a single task may generate.
	MaxQueries int `yaml:"max_queries" validate:"min=1"`

	// SampleRowLimit bounds rows returned by a dry-run/sample execution.
	SampleRowLimit int `yaml:"sample_row_limit" validate:"min=1"`

	// ExecRowCap bounds rows returned by a full execution, enforced via
	// a LIMIT wrapper at the warehouse adapter.
	ExecRowCap int `yaml:"exec_row_cap" validate:"min=1"`

	// InlineRowLimit is the row count above which a result is spilled to
	// the external memory store instead of kept inline in workflow state.
	InlineRowLimit int `yaml:"inline_row_limit" validate:"min=1"`

	// InlineByteLimit is the serialized-size threshold above which a
	// result is spilled to the external memory store.
	InlineByteLimit ByteSize `yaml:"inline_byte_limit"`

	// TokenBudgetSession is the total LLM token allowance for one session.
	TokenBudgetSession int `yaml:"token_budget_session" validate:"min=1"`

	// MemoryTTL is how long spilled results remain retrievable before a
	// sweep may reclaim them.
	MemoryTTL Duration `yaml:"memory_ttl"`

	Deadlines DeadlineConfig `yaml:"deadlines"`
}

// DeadlineConfig holds the per-dependency timeouts. Warehouse bounds each
// dry-run, sample and execute call of the warehouse client (listing
// datasets, tables and schemas runs without it); Session bounds the whole
// run in the driver. LLM and Memory are copied into workflow.Deps, but no
// node applies them, so LLM and memory-store calls carry only the
// session deadline.
type DeadlineConfig struct {
	Warehouse Duration `yaml:"warehouse"`
	LLM       Duration `yaml:"llm"`
	Memory    Duration `yaml:"memory"`
	Session   Duration `yaml:"session"`
}

// WarehouseConfig configures the Postgres-backed warehouse adapter.
type WarehouseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"min=1"`
	MaxIdleConns int    `yaml:"max_idle_conns" validate:"min=0"`
}

// LLMConfig configures the LLM adapter transport.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" validate:"min=1"`
}

// MemoryConfig configures the external memory store backing spilled
// query results.
type MemoryConfig struct {
	// Backend selects the Store implementation: "postgres" or "memory".
	Backend       string   `yaml:"backend"`
	DSN           string   `yaml:"dsn,omitempty"`
	SweepInterval Duration `yaml:"sweep_interval"`
	SummaryTopK   int      `yaml:"summary_top_k" validate:"min=1"`
}

// APIConfig configures the gin + websocket session driver API.
type APIConfig struct {
	ListenAddr       string   `yaml:"listen_addr"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}
