// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all playtrace configuration.
type Config struct {
	Version int `yaml:"version"`

	Paths     PathsConfig     `yaml:"paths"`
	Importer  ImporterConfig  `yaml:"importer"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	S3        S3Config        `yaml:"s3"`
}

// PathsConfig locates the data directories.
type PathsConfig struct {
	LogsDir   string `yaml:"logs_dir"`  // achievement logs + player stats
	OutDir    string `yaml:"out_dir"`   // report output
	GamesFile string `yaml:"games_file"` // optional game registry overrides
}

// ImporterConfig controls CSV import.
type ImporterConfig struct {
	Engine          string `yaml:"engine"` // native | duckdb
	Delimiter       string `yaml:"delimiter"`
	TimestampFormat string `yaml:"timestamp_format"`
}

// AnalysisConfig controls the analysis runs.
type AnalysisConfig struct {
	Jobs            int      `yaml:"jobs"` // concurrent games, 1 = sequential
	BottleneckGames []string `yaml:"bottleneck_games"`
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// S3Config for fetching log bundles before analysis.
type S3Config struct {
	Bucket   string        `yaml:"bucket"`
	Region   string        `yaml:"region"`
	Prefix   string        `yaml:"prefix"`
	Endpoint string        `yaml:"endpoint"` // override for S3-compatible services
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			LogsDir: "Logs",
			OutDir:  "Outputs",
		},
		Importer: ImporterConfig{
			Engine:          "native",
			Delimiter:       ",",
			TimestampFormat: "2006-01-02 15:04:05",
		},
		Analysis: AnalysisConfig{
			Jobs: 1,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
		S3: S3Config{
			Region:  "us-east-1",
			Timeout: 5 * time.Minute,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	for _, path := range m.getConfigPaths() {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but surface errors for existing files
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/playtrace/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".playtrace", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".playtrace.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Paths
	if src.Paths.LogsDir != "" {
		m.config.Paths.LogsDir = src.Paths.LogsDir
	}
	if src.Paths.OutDir != "" {
		m.config.Paths.OutDir = src.Paths.OutDir
	}
	if src.Paths.GamesFile != "" {
		m.config.Paths.GamesFile = src.Paths.GamesFile
	}

	// Importer
	if src.Importer.Engine != "" {
		m.config.Importer.Engine = src.Importer.Engine
	}
	if src.Importer.Delimiter != "" {
		m.config.Importer.Delimiter = src.Importer.Delimiter
	}
	if src.Importer.TimestampFormat != "" {
		m.config.Importer.TimestampFormat = src.Importer.TimestampFormat
	}

	// Analysis
	if src.Analysis.Jobs != 0 {
		m.config.Analysis.Jobs = src.Analysis.Jobs
	}
	if len(src.Analysis.BottleneckGames) > 0 {
		m.config.Analysis.BottleneckGames = src.Analysis.BottleneckGames
	}

	// Telemetry
	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}

	// S3
	if src.S3.Bucket != "" {
		m.config.S3.Bucket = src.S3.Bucket
	}
	if src.S3.Region != "" {
		m.config.S3.Region = src.S3.Region
	}
	if src.S3.Prefix != "" {
		m.config.S3.Prefix = src.S3.Prefix
	}
	if src.S3.Endpoint != "" {
		m.config.S3.Endpoint = src.S3.Endpoint
	}
	if src.S3.Timeout != 0 {
		m.config.S3.Timeout = src.S3.Timeout
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("PLAYTRACE_LOGS_DIR"); v != "" {
		m.config.Paths.LogsDir = v
	}
	if v := os.Getenv("PLAYTRACE_OUT_DIR"); v != "" {
		m.config.Paths.OutDir = v
	}
	if v := os.Getenv("PLAYTRACE_ENGINE"); v != "" {
		m.config.Importer.Engine = v
	}
	if v := os.Getenv("PLAYTRACE_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Enabled = true
		m.config.Telemetry.Endpoint = v
	}
	if v := os.Getenv("PLAYTRACE_S3_BUCKET"); v != "" {
		m.config.S3.Bucket = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".playtrace")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
