package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DataDir string       `yaml:"data_dir"`
	Dataset string       `yaml:"dataset"`
	Graph   string       `yaml:"graph"`
	Specs   []SpecSource `yaml:"specs"`
	Fetch   FetchConfig  `yaml:"fetch"`
	Probe   ProbeConfig  `yaml:"probe"`
}

// SpecSource identifies one remote spec document and its local file name.
// List order is processing order: the current API document comes first.
type SpecSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	File string `yaml:"file"`
}

// FetchConfig holds spec download configuration
type FetchConfig struct {
	Timeout int `yaml:"timeout"`
}

// ProbeConfig holds endpoint probing configuration
type ProbeConfig struct {
	BaseURL      string      `yaml:"base_url"`
	Timeout      int         `yaml:"timeout"`
	MaxWorkers   int         `yaml:"max_workers"`
	ResponsesDir string      `yaml:"responses_dir"`
	LogDir       string      `yaml:"log_dir"`
	Retry        RetryConfig `yaml:"retry"`
	Auth         AuthConfig  `yaml:"auth"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	Delay    int `yaml:"delay"`
}

// AuthConfig holds the client-credentials settings used by the probe step
type AuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	ERPToken     string `yaml:"erp_token"`
	AccessToken  string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no config file exists.
// The two upstream URLs are fixed; everything else is a local path default.
func DefaultConfig() *Config {
	cfg := &Config{
		Specs: []SpecSource{
			{Name: "current", URL: "https://api.sankhya.com.br/docs/openapi/api.yaml", File: "api.yaml"},
			{Name: "legacy", URL: "https://api.sankhya.com.br/docs/legado/openapi/api-legada.yaml", File: "api-legada.yaml"},
		},
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// LoadConfig loads the configuration from the given file. A missing file is
// not an error: the built-in defaults describe the complete pipeline.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Dataset == "" {
		c.Dataset = "endpoints.json"
	}
	if c.Graph == "" {
		c.Graph = "graph.json"
	}
	if len(c.Specs) == 0 {
		c.Specs = DefaultConfig().Specs
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 60
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = 30
	}
	if c.Probe.MaxWorkers == 0 {
		c.Probe.MaxWorkers = 5
	}
	if c.Probe.ResponsesDir == "" {
		c.Probe.ResponsesDir = "responses"
	}
	if c.Probe.LogDir == "" {
		c.Probe.LogDir = "logs"
	}
	if c.Probe.Retry.Attempts == 0 {
		c.Probe.Retry.Attempts = 3
	}
	if c.Probe.Retry.Delay == 0 {
		c.Probe.Retry.Delay = 1
	}
}

// applyEnv overrides credentials and the probe base URL from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.Probe.BaseURL = v
	}
	if v := os.Getenv("API_CLIENT_ID"); v != "" {
		c.Probe.Auth.ClientID = v
	}
	if v := os.Getenv("API_CLIENT_SECRET"); v != "" {
		c.Probe.Auth.ClientSecret = v
	}
	if v := os.Getenv("API_ERP_TOKEN"); v != "" {
		c.Probe.Auth.ERPToken = v
	}
	if v := os.Getenv("API_ACCESS_TOKEN"); v != "" {
		c.Probe.Auth.AccessToken = v
	}
}

// DatasetPath returns the dataset output path under the data directory
func (c *Config) DatasetPath() string {
	return filepath.Join(c.DataDir, c.Dataset)
}

// GraphPath returns the graph artifact output path under the data directory
func (c *Config) GraphPath() string {
	return filepath.Join(c.DataDir, c.Graph)
}

// ResponsesPath returns the directory where probe responses are archived
func (c *Config) ResponsesPath() string {
	return filepath.Join(c.DataDir, c.Probe.ResponsesDir)
}
