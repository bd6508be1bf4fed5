package config

import (
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.MachineID = "workstation"
	cfg.FreshnessHours = 48
	cfg.MajorityFallback = false

	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.MachineID != "workstation" {
		t.Errorf("expected machine id workstation, got %s", loaded.MachineID)
	}
	if loaded.FreshnessHours != 48 {
		t.Errorf("expected freshness 48, got %d", loaded.FreshnessHours)
	}
	if loaded.MajorityFallback {
		t.Error("expected majority fallback disabled")
	}
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault(t.TempDir())
	if cfg.FreshnessHours != DefaultFreshnessHours {
		t.Errorf("expected default freshness %d, got %d", DefaultFreshnessHours, cfg.FreshnessHours)
	}
	if !cfg.AutoRegisterDefinitions || !cfg.AutoRegisterMachines {
		t.Error("expected auto-registration enabled by default")
	}
}

func TestLoadZeroFreshnessGetsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.FreshnessHours = 0
	if err := Save(dir, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.FreshnessHours != DefaultFreshnessHours {
		t.Errorf("expected default freshness %d, got %d", DefaultFreshnessHours, loaded.FreshnessHours)
	}
}
