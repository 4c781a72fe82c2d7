package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Mu != DefaultMu {
		t.Errorf("Mu = %v, want %v", cfg.Mu, DefaultMu)
	}
	if cfg.Iterations != DefaultIterations {
		t.Errorf("Iterations = %v, want %v", cfg.Iterations, DefaultIterations)
	}
	if cfg.SnapshotStride != 1 {
		t.Errorf("SnapshotStride = %v, want 1", cfg.SnapshotStride)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TauCRSS = 2.5e6
	cfg.AppliedStress.XY = 1e7
	cfg.Files.Structure = "plane.txt"

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if math.Abs(loaded.TauCRSS-cfg.TauCRSS) > 1 {
		t.Errorf("TauCRSS = %v, want %v", loaded.TauCRSS, cfg.TauCRSS)
	}
	if math.Abs(loaded.AppliedStress.XY-cfg.AppliedStress.XY) > 1 {
		t.Errorf("AppliedStress.XY = %v, want %v", loaded.AppliedStress.XY, cfg.AppliedStress.XY)
	}
	if loaded.Files.Structure != "plane.txt" {
		t.Errorf("Files.Structure = %q, want %q", loaded.Files.Structure, "plane.txt")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("iterations: 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Iterations != 42 {
		t.Errorf("Iterations = %v, want 42", cfg.Iterations)
	}
	if cfg.Mu != DefaultMu {
		t.Errorf("Mu = %v, want default %v", cfg.Mu, DefaultMu)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("copper")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if cfg.Mu != 48e9 {
		t.Errorf("copper Mu = %v, want 48e9", cfg.Mu)
	}

	// Returned preset is a copy.
	cfg.Mu = 1
	again, _ := GetPreset("copper")
	if again.Mu != 48e9 {
		t.Error("preset mutated by caller")
	}

	if _, err := GetPreset("unobtanium"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("ListPresets returned %d names, want %d", len(names), len(Presets))
	}
}
