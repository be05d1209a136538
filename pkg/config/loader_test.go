package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataq.yaml"), []byte(content), 0o644))
}

func TestInitialize_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("DATAQ_TEST_API_KEY", "secret")
	t.Cleanup(func() { os.Unsetenv("DATAQ_TEST_API_KEY") })

	cfg, err := Initialize(context.Background(), dir)
	require.Error(t, err) // warehouse DSN is required and absent from defaults
	assert.Nil(t, cfg)
}

func TestInitialize_LoadsAndMergesYAML(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("DATAQ_TEST_API_KEY", "secret")
	t.Cleanup(func() { os.Unsetenv("DATAQ_TEST_API_KEY") })

	writeYAML(t, dir, `
warehouse:
  dsn: "postgres://localhost/dataq"
memory:
  backend: memory
llm:
  api_key_env: DATAQ_TEST_API_KEY
workflow:
  max_queries: 7
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/dataq", cfg.Warehouse.DSN)
	assert.Equal(t, 7, cfg.Workflow.MaxQueries)
	// Untouched defaults survive the merge.
	assert.Equal(t, 2, cfg.Workflow.MaxRetriesGeneration)
	assert.Equal(t, dir, cfg.ConfigDir())
}

func TestInitialize_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("DATAQ_TEST_DSN", "postgres://expanded/db")
	os.Setenv("DATAQ_TEST_API_KEY", "secret")
	t.Cleanup(func() {
		os.Unsetenv("DATAQ_TEST_DSN")
		os.Unsetenv("DATAQ_TEST_API_KEY")
	})

	writeYAML(t, dir, `
warehouse:
  dsn: "${DATAQ_TEST_DSN}"
memory:
  backend: memory
llm:
  api_key_env: DATAQ_TEST_API_KEY
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://expanded/db", cfg.Warehouse.DSN)
}

func TestInitialize_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "warehouse: [unterminated, flow, sequence\nllm: {unterminated: mapping\n")

	_, err := Initialize(context.Background(), dir)
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("DATAQ_TEST_EXPAND", "value")
	t.Cleanup(func() { os.Unsetenv("DATAQ_TEST_EXPAND") })

	out := ExpandEnv([]byte("prefix-${DATAQ_TEST_EXPAND}-suffix"))
	assert.Equal(t, "prefix-value-suffix", string(out))
}
