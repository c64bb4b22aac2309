package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRMIConfig_NoPathReturnsDefaults(t *testing.T) {
	cfg := loadRMIConfig("")
	if cfg.ModelSpec != "radix,linear" {
		t.Errorf("expected default model spec, got %q", cfg.ModelSpec)
	}
	if cfg.BranchingFactor != 1<<8 {
		t.Errorf("expected default branching factor 256, got %d", cfg.BranchingFactor)
	}
}

func TestLoadRMIConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rmi.yaml")
	yaml := "model_spec: linear,linear\nbranching_factor: 64\nrestrict: 5\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := loadRMIConfig(path)
	if cfg.ModelSpec != "linear,linear" {
		t.Errorf("expected overridden model spec, got %q", cfg.ModelSpec)
	}
	if cfg.BranchingFactor != 64 {
		t.Errorf("expected overridden branching factor, got %d", cfg.BranchingFactor)
	}
	if cfg.Restrict != 5 {
		t.Errorf("expected overridden restrict, got %d", cfg.Restrict)
	}
}
