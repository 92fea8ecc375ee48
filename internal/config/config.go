package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "TOSDR_COLLECTOR_CONFIG"
	apiKeyEnv     = "TOSDR_APIKEY"
	apiURLEnv     = "TOSDR_API_URL"
	outputEnv     = "TOSDR_OUTPUT"
	topicsEnv     = "TOSDR_TOPICS"
	exportDSNEnv  = "TOSDR_EXPORT_DSN"
	logLevelEnv   = "LOG_LEVEL"
	logFormatEnv  = "LOG_FORMAT"
)

// Config holds high-level settings required across the application.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Topics  TopicsConfig  `yaml:"topics"`
	Output  OutputConfig  `yaml:"output"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig describes how to reach the ToS;DR API.
type APIConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	APIKey            string        `yaml:"apiKey"`
	// UserAgent overrides the client's default when set.
	UserAgent         string        `yaml:"userAgent"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
}

// PacingConfig holds the fixed delays between upstream calls.
type PacingConfig struct {
	CaseDelay       time.Duration `yaml:"caseDelay"`
	ServiceDelay    time.Duration `yaml:"serviceDelay"`
	MissingKeyDelay time.Duration `yaml:"missingKeyDelay"`
	ProgressEvery   int           `yaml:"progressEvery"`
}

// TopicsConfig points at the curated title lists.
type TopicsConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig points at the JSON table.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig groups optional sinks.
type ExportConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig enables the table export when DSN is set.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// LoggingConfig selects level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration from $TOSDR_COLLECTOR_CONFIG (if present)
// and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path; empty means defaults only.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.API.APIKey = v
	}

	if v := os.Getenv(apiURLEnv); v != "" {
		c.API.BaseURL = v
	}

	if v := os.Getenv(outputEnv); v != "" {
		c.Output.Path = v
	}

	if v := os.Getenv(topicsEnv); v != "" {
		c.Topics.Path = v
	}

	if v := os.Getenv(exportDSNEnv); v != "" {
		c.Export.Postgres.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}
	if override.API.APIKey != "" {
		base.API.APIKey = override.API.APIKey
	}
	if override.API.UserAgent != "" {
		base.API.UserAgent = override.API.UserAgent
	}
	if override.API.Timeout > 0 {
		base.API.Timeout = override.API.Timeout
	}
	if override.API.RequestsPerSecond > 0 {
		base.API.RequestsPerSecond = override.API.RequestsPerSecond
	}

	if override.Pacing.CaseDelay > 0 {
		base.Pacing.CaseDelay = override.Pacing.CaseDelay
	}
	if override.Pacing.ServiceDelay > 0 {
		base.Pacing.ServiceDelay = override.Pacing.ServiceDelay
	}
	if override.Pacing.MissingKeyDelay > 0 {
		base.Pacing.MissingKeyDelay = override.Pacing.MissingKeyDelay
	}
	if override.Pacing.ProgressEvery > 0 {
		base.Pacing.ProgressEvery = override.Pacing.ProgressEvery
	}

	if override.Topics.Path != "" {
		base.Topics = override.Topics
	}

	if override.Output.Path != "" {
		base.Output = override.Output
	}

	if override.Export.Postgres.DSN != "" {
		base.Export.Postgres.DSN = override.Export.Postgres.DSN
	}
	if override.Export.Postgres.Table != "" {
		base.Export.Postgres.Table = override.Export.Postgres.Table
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://api.tosdr.org",
			Timeout: 30 * time.Second,
		},
		Pacing: PacingConfig{
			CaseDelay:       200 * time.Millisecond,
			ServiceDelay:    200 * time.Millisecond,
			MissingKeyDelay: 5 * time.Second,
			ProgressEvery:   5,
		},
		Topics:  TopicsConfig{Path: "configs/tosdr-topics.yaml"},
		Output:  OutputConfig{Path: "shared/data/tosdr.json"},
		Export:  ExportConfig{Postgres: PostgresConfig{Table: "tosdr_points"}},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
