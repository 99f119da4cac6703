package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neilberkman/chronicler/internal/core/workflow"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinResponseLength != workflow.DefaultMinResponseLength {
		t.Errorf("MinResponseLength = %d, want %d", cfg.MinResponseLength, workflow.DefaultMinResponseLength)
	}
	if cfg.LogFile != filepath.Join(dir, "chronicler.log") {
		t.Errorf("LogFile = %s", cfg.LogFile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.CopyPrompts {
		t.Error("CopyPrompts should default to false")
	}
	if len(cfg.PromptTemplates) != 0 {
		t.Errorf("expected no prompt overrides, got %d", len(cfg.PromptTemplates))
	}
}

func TestLoadTOMLAndPromptOverrides(t *testing.T) {
	dir := t.TempDir()
	toml := `min_response_length = 250
log_level = "DEBUG"
copy_prompts = true
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "phase2_prompt.txt"), []byte("Pages for {{{title}}}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinResponseLength != 250 {
		t.Errorf("MinResponseLength = %d, want 250", cfg.MinResponseLength)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if !cfg.CopyPrompts {
		t.Error("CopyPrompts = false, want true")
	}
	if got := cfg.PromptTemplates[workflow.PhaseSummarize]; got != "Pages for {{{title}}}" {
		t.Errorf("phase 2 template = %q", got)
	}
	if _, ok := cfg.PromptTemplates[workflow.PhaseExtract]; ok {
		t.Error("phase 1 template should not be overridden")
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("min_response_length = ["), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg == nil || cfg.MinResponseLength != workflow.DefaultMinResponseLength {
		t.Error("defaults should still be returned alongside the error")
	}
}
