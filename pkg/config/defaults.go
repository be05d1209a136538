package config

import "time"

// DefaultConfig returns the built-in tunables applied when a dataq.yaml
// omits a value. The loader merges a user-supplied YAML document onto
// this baseline with mergo, so every field here is a genuine default
// rather than a zero value standing in for "unset".
func DefaultConfig() *Config {
	return &Config{
		Workflow: WorkflowConfig{
			MaxRetriesGeneration: 2,
			MaxRetriesExecution:  2,
			MaxQueries:           5,
			SampleRowLimit:       10,
			ExecRowCap:           10000,
			InlineRowLimit:       100,
			InlineByteLimit:      ByteSize(128 * 1024),
			TokenBudgetSession:   200000,
			MemoryTTL:            Duration{24 * time.Hour},
			Deadlines: DeadlineConfig{
				Warehouse: Duration{120 * time.Second},
				LLM:       Duration{60 * time.Second},
				Memory:    Duration{10 * time.Second},
				Session:   Duration{600 * time.Second},
			},
		},
		Warehouse: WarehouseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Memory: MemoryConfig{
			Backend:         "postgres",
			SweepInterval:   Duration{1 * time.Hour},
			SummaryTopK:     20,
		},
		API: APIConfig{
			ListenAddr:       ":8080",
			AllowedWSOrigins: []string{"http://localhost:5173"},
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
	}
}
