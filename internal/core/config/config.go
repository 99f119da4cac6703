package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/neilberkman/chronicler/internal/core/workflow"
)

type Config struct {
	Dir               string
	MinResponseLength int
	LogFile           string
	LogLevel          string
	CopyPrompts       bool               // Copy generated prompts to the clipboard
	PromptTemplates   workflow.Templates // Per-phase overrides, empty when unset
}

type tomlConfig struct {
	MinResponseLength *int    `toml:"min_response_length"`
	LogFile           *string `toml:"log_file"`
	LogLevel          *string `toml:"log_level"`
	CopyPrompts       *bool   `toml:"copy_prompts"`
}

// DefaultDir returns ~/.config/chronicler
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "chronicler")
}

// Load reads config from dir, falling back to defaults for anything missing.
// An empty dir means DefaultDir().
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	cfg := &Config{
		Dir:               dir,
		MinResponseLength: workflow.DefaultMinResponseLength,
		LogFile:           filepath.Join(dir, "chronicler.log"),
		LogLevel:          "info",
		PromptTemplates:   workflow.Templates{},
	}

	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", tomlPath, err)
		}
		if tc.MinResponseLength != nil && *tc.MinResponseLength > 0 {
			cfg.MinResponseLength = *tc.MinResponseLength
		}
		if tc.LogFile != nil && *tc.LogFile != "" {
			cfg.LogFile = expandHome(*tc.LogFile)
		}
		if tc.LogLevel != nil && *tc.LogLevel != "" {
			cfg.LogLevel = strings.ToLower(*tc.LogLevel)
		}
		if tc.CopyPrompts != nil {
			cfg.CopyPrompts = *tc.CopyPrompts
		}
	}

	// phaseN_prompt.txt replaces the built-in template for that phase
	for n := workflow.PhaseExtract; n <= workflow.PhaseRefine; n++ {
		path := filepath.Join(dir, fmt.Sprintf("phase%d_prompt.txt", n))
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) != "" {
			cfg.PromptTemplates[n] = string(data)
		}
	}

	return cfg, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
