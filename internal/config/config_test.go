package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override this package reads so tests are hermetic.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"POLICYSCOPE_SIM_URL", "POLICYSCOPE_SIM_API_KEY", "POLICYSCOPE_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "policyscope", cfg.Name)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20240620", cfg.LLM.Model)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.Graph.MaxDepth)
	assert.True(t, cfg.Graph.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM.Model, cfg.LLM.Model)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "policyscope.yaml")
	data := []byte(`
llm:
  provider: gemini
  model: gemini-2.0-flash
  max_tokens: 500
simulation:
  base_url: http://sim.internal:9000
  timeout: 5s
graph:
  enabled: false
  max_depth: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, "http://sim.internal:9000", cfg.Simulation.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetSimulationTimeout())
	assert.False(t, cfg.Graph.Enabled)
	assert.Equal(t, 3, cfg.Graph.MaxDepth)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: ["), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("ANTHROPIC_API_KEY sets key, keeps provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ant-key", cfg.LLM.APIKey)
		assert.Equal(t, "anthropic", cfg.LLM.Provider)
	})

	t.Run("GEMINI_API_KEY overrides provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gem-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("GEMINI wins over ANTHROPIC", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")
		t.Setenv("GEMINI_API_KEY", "gem-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("simulation and server overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("POLICYSCOPE_SIM_URL", "http://engine:5000")
		t.Setenv("POLICYSCOPE_SIM_API_KEY", "sim-key")
		t.Setenv("POLICYSCOPE_ADDR", ":9999")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://engine:5000", cfg.Simulation.BaseURL)
		assert.Equal(t, "sim-key", cfg.Simulation.APIKey)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})
}

func TestTimeoutAccessors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, 60*time.Second, cfg.GetSimulationTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())

	cfg.LLM.Timeout = "not-a-duration"
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout(), "bad durations fall back")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "policyscope.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "claude-3-haiku-20240307"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku-20240307", loaded.LLM.Model)
}
