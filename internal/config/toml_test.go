package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.Day != nil || cfg.Tuning.ScoreBase != nil {
		t.Fatalf("expected empty config for a missing file, got %+v", cfg)
	}
}

func TestLoadConfigParsesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
day = "d03"
mode = "random"
timer = true

[tuning]
score-base = 15
advance-delay-ms = 800
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.Day == nil || *cfg.Practice.Day != "d03" {
		t.Fatalf("day = %v, want d03", cfg.Practice.Day)
	}
	if cfg.Practice.Mode == nil || *cfg.Practice.Mode != "random" {
		t.Fatalf("mode = %v, want random", cfg.Practice.Mode)
	}
	if cfg.Practice.Timer == nil || !*cfg.Practice.Timer {
		t.Fatalf("timer = %v, want true", cfg.Practice.Timer)
	}
	if cfg.Practice.Speech != nil {
		t.Fatalf("speech = %v, want unset", cfg.Practice.Speech)
	}
	if cfg.Tuning.ScoreBase == nil || *cfg.Tuning.ScoreBase != 15 {
		t.Fatalf("score-base = %v, want 15", cfg.Tuning.ScoreBase)
	}
	if cfg.Tuning.AdvanceDelayMs == nil || *cfg.Tuning.AdvanceDelayMs != 800 {
		t.Fatalf("advance-delay-ms = %v, want 800", cfg.Tuning.AdvanceDelayMs)
	}
	if cfg.Tuning.StreakBonus != nil {
		t.Fatalf("streak-bonus = %v, want unset", cfg.Tuning.StreakBonus)
	}
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice\nday = 3"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
