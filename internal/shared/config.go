package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Tagger    TaggerConfig    `toml:"tagger"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Synth     SynthConfig     `toml:"synth"`
	Log       LogConfig       `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TaggerConfig points at the external tagging service.
type TaggerConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TokenURL       string `toml:"token_url"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SchedulerConfig sizes the reconciliation worker pool.
type SchedulerConfig struct {
	ChunkSize         int `toml:"chunk_size"`
	Concurrency       int `toml:"concurrency"`
	DelayMS           int `toml:"delay_ms"`
	RetryChunkSize    int `toml:"retry_chunk_size"`
	RetryConcurrency  int `toml:"retry_concurrency"`
	MaxLevels         int `toml:"max_levels"`
	JobTimeoutSeconds int `toml:"job_timeout_seconds"`
}

// SynthConfig controls playlist synthesis.
type SynthConfig struct {
	RootName          string `toml:"root_name"`
	IncludeDuplicates bool   `toml:"include_duplicates"`
}

// LogConfig holds the log level name (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// Delay returns the inter-task delay as a [time.Duration].
func (s SchedulerConfig) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// JobTimeout returns the whole-job budget, zero meaning none.
func (s SchedulerConfig) JobTimeout() time.Duration {
	return time.Duration(s.JobTimeoutSeconds) * time.Second
}

// Validate rejects settings the scheduler cannot run with.
func (c *Config) Validate() error {
	s := c.Scheduler
	switch {
	case s.ChunkSize <= 0:
		return fmt.Errorf("%w: scheduler.chunk_size must be positive", ErrInvalidConfig)
	case s.Concurrency <= 0:
		return fmt.Errorf("%w: scheduler.concurrency must be positive", ErrInvalidConfig)
	case s.DelayMS < 0:
		return fmt.Errorf("%w: scheduler.delay_ms must not be negative", ErrInvalidConfig)
	case s.RetryChunkSize < 0 || s.RetryConcurrency < 0:
		return fmt.Errorf("%w: scheduler retry settings must not be negative", ErrInvalidConfig)
	case s.MaxLevels < 0:
		return fmt.Errorf("%w: scheduler.max_levels must not be negative", ErrInvalidConfig)
	case c.Tagger.TimeoutSeconds < 0:
		return fmt.Errorf("%w: tagger.timeout_seconds must not be negative", ErrInvalidConfig)
	case c.Tagger.TokenURL != "" && (c.Tagger.ClientID == "" || c.Tagger.ClientSecret == ""):
		return fmt.Errorf("%w: tagger.token_url needs client_id and client_secret", ErrMissingCredentials)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
