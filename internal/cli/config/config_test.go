package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if len(cfg.Packages) != 1 || cfg.Packages[0] != "./..." {
		t.Errorf("expected default packages [./...], got %v", cfg.Packages)
	}
	if cfg.OutputRoot != "generated" {
		t.Errorf("expected default output root 'generated', got %s", cfg.OutputRoot)
	}
	if cfg.EnginePath != DefaultEnginePath {
		t.Errorf("expected default engine path %s, got %s", DefaultEnginePath, cfg.EnginePath)
	}
	if cfg.SelectionFile != "bridgegen.selection.json" {
		t.Errorf("expected default selection file, got %s", cfg.SelectionFile)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	content := `packages:
  - ./game/...
output_root: out/bridges
engine_path: example.com/engine
units:
  example.com/game/input.ValidateInput:
    fast_path: true
    order: 3
  example.com/game/combat.DamageReducer:
    name: DamageBridge
`
	if err := os.WriteFile(filepath.Join(tmpDir, "bridgegen.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.OutputRoot != "out/bridges" {
		t.Errorf("expected output root 'out/bridges', got %s", cfg.OutputRoot)
	}
	if cfg.EnginePath != "example.com/engine" {
		t.Errorf("expected engine path override, got %s", cfg.EnginePath)
	}

	opts := cfg.BridgeOptions()
	mw, ok := opts["example.com/game/input.ValidateInput"]
	if !ok {
		t.Fatal("expected per-unit options for ValidateInput")
	}
	if mw.FastPath == nil || !*mw.FastPath {
		t.Error("expected fast_path: true to survive conversion")
	}
	if mw.Order != 3 {
		t.Errorf("expected order 3, got %d", mw.Order)
	}
	if opts["example.com/game/combat.DamageReducer"].NameOverride != "DamageBridge" {
		t.Error("expected name override to survive conversion")
	}
}
