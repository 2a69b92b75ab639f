package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.GCGrowthFactor != 2.0 {
		t.Errorf("GCGrowthFactor = %v, want 2.0", cfg.GCGrowthFactor)
	}
	if cfg.StressGC {
		t.Errorf("StressGC = true, want false")
	}
	if cfg.FramesMax != 64 {
		t.Errorf("FramesMax = %v, want 64", cfg.FramesMax)
	}
	if cfg.InitialGCThreshold != 1024 {
		t.Errorf("InitialGCThreshold = %v, want 1024", cfg.InitialGCThreshold)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wisp.toml")
	if err := os.WriteFile(path, []byte("stress_gc = true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.StressGC {
		t.Errorf("StressGC = false, want true")
	}
	if cfg.GCGrowthFactor != 2.0 {
		t.Errorf("GCGrowthFactor = %v, want default 2.0 to survive a partial override", cfg.GCGrowthFactor)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
