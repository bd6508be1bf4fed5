package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default tuning values. Documented here because the upstream material leaves
// them unspecified: freshness defaults to 30 days, majority fallback is on.
const (
	DefaultFreshnessHours = 720
)

// Config represents the flat dotgraph configuration
type Config struct {
	Version string `json:"version"`

	// Identity of the machine this process runs on. Used by scan/ingest
	// when no explicit machine id is given.
	MachineID     string `json:"machine_id"`
	Hostname      string `json:"hostname,omitempty"`
	HardwareClass string `json:"hardware_class,omitempty"` // e.g. "laptop", "desktop", "rpi"

	// AutoRegisterDefinitions creates a ConfigDefinition on first sight
	// during ingestion instead of failing with a not-found error.
	AutoRegisterDefinitions bool `json:"auto_register_definitions"`

	// AutoRegisterMachines creates a Machine with minimal attributes on
	// first snapshot instead of failing with a not-found error.
	AutoRegisterMachines bool `json:"auto_register_machines"`

	// FreshnessHours is the stale threshold: a machine whose latest
	// snapshot is older than this (relative to the newest snapshot for the
	// definition) is classified stale.
	FreshnessHours int `json:"freshness_hours"`

	// MajorityFallback lets the drift engine derive the canonical hash
	// from a strict plurality of machine hashes when no explicit canonical
	// is set. An exact tie still fails with AmbiguousCanonicalError.
	MajorityFallback bool `json:"majority_fallback"`

	// SemanticIndex toggles best-effort text indexing of annotations.
	SemanticIndex bool `json:"semantic_index"`
}

// Default returns a config with documented defaults and the local hostname.
func Default() *Config {
	host, _ := os.Hostname()
	return &Config{
		Version:                 "1",
		MachineID:               host,
		Hostname:                host,
		AutoRegisterDefinitions: true,
		AutoRegisterMachines:    true,
		FreshnessHours:          DefaultFreshnessHours,
		MajorityFallback:        true,
		SemanticIndex:           true,
	}
}

// Dir returns the dotgraph state directory (~/.dotgraph).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dotgraph"), nil
}

// Load reads config.json from the given directory.
// Returns error if no config found - caller should handle accordingly.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.FreshnessHours <= 0 {
		cfg.FreshnessHours = DefaultFreshnessHours
	}

	return &cfg, nil
}

// Save writes config.json to the given directory, creating it if needed.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadOrDefault reads config.json, falling back to defaults when absent.
func LoadOrDefault(dir string) *Config {
	cfg, err := Load(dir)
	if err != nil {
		return Default()
	}
	return cfg
}
