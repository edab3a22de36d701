package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slvcodec.json")
	content := `{
		"declarations": ["shared.json"],
		"generics": {"sample_buffer": {"width": 8}}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.IsStrict() {
		t.Error("strict should default to true")
	}
	if len(cfg.Declarations) != 1 || cfg.Declarations[0] != "shared.json" {
		t.Errorf("declarations = %v", cfg.Declarations)
	}
	generics := cfg.GenericsFor("sample_buffer")
	if generics["width"] != 8 {
		t.Errorf("generics = %v", generics)
	}
	if cfg.GenericsFor("other") != nil {
		t.Error("expected nil generics for unconfigured entity")
	}
	if len(cfg.ClockNames) != 2 || cfg.ClockNames[0] != "clk" || cfg.ClockNames[1] != "clock" {
		t.Errorf("clockNames = %v, want [clk clock]", cfg.ClockNames)
	}
}

func TestClockNameOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slvcodec.json")
	if err := os.WriteFile(path, []byte(`{"clockNames": ["clk_i"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.ClockNames) != 1 || cfg.ClockNames[0] != "clk_i" {
		t.Errorf("clockNames = %v, want [clk_i]", cfg.ClockNames)
	}
}

func TestLoadSearchesRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slvcodec.json")
	if err := os.WriteFile(path, []byte(`{"strict": false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsStrict() {
		t.Error("strict should be false from the root config")
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsStrict() {
		t.Error("default config should be strict")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	cfg := DefaultConfig()
	cfg.PolicyDir = "rules"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.PolicyDir != "rules" {
		t.Errorf("policyDir = %q", loaded.PolicyDir)
	}
}
