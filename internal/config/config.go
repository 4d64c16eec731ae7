// Package config holds all policyscope configuration. Configuration is
// loaded once at startup from an optional YAML file plus environment
// overrides and is read-only afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all policyscope configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Explanation service (LLM) configuration
	LLM LLMConfig `yaml:"llm"`

	// Microsimulation engine configuration
	Simulation SimulationConfig `yaml:"simulation"`

	// Trace graph configuration
	Graph GraphConfig `yaml:"graph"`

	// HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the explanation service client.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // anthropic, gemini
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// SimulationConfig configures the microsimulation engine client.
type SimulationConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// GraphConfig configures the trace-to-graph parser.
type GraphConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxDepth int  `yaml:"max_depth"`
}

// ServerConfig configures the HTTP presentation layer.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "policyscope",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-sonnet-20240620",
			BaseURL:   "https://api.anthropic.com/v1",
			MaxTokens: 1000,
			Timeout:   "120s",
		},

		Simulation: SimulationConfig{
			BaseURL: "http://localhost:5000",
			Timeout: "60s",
		},

		Graph: GraphConfig{
			Enabled:  true,
			MaxDepth: 5,
		},

		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "30s",
			WriteTimeout:    "300s",
			ShutdownTimeout: "10s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Explanation
// service keys are checked in priority order; the last one set wins both
// the key and the provider selection.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "anthropic"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if url := os.Getenv("POLICYSCOPE_SIM_URL"); url != "" {
		c.Simulation.BaseURL = url
	}
	if key := os.Getenv("POLICYSCOPE_SIM_API_KEY"); key != "" {
		c.Simulation.APIKey = key
	}
	if addr := os.Getenv("POLICYSCOPE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// GetLLMTimeout returns the explanation service timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetSimulationTimeout returns the engine call timeout as a duration.
func (c *Config) GetSimulationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Simulation.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the server drain timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
