package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Debounce() != 150*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
language = "python"
debounce_ms = 40
log_level = "debug"

[[lang]]
name = "python"
suffix = ".py"
run = "pypy3 {src}"

[[lang]]
name = "ruby"
suffix = ".rb"
run = "ruby {src}"
`
	os.WriteFile(path, []byte(content), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Language != "python" || cfg.DebounceMs != 40 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}

	r, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry error: %v", err)
	}
	p, err := r.Lookup("python")
	if err != nil || p.Run != "pypy3 {src}" {
		t.Errorf("python override = %+v, %v", p, err)
	}
	if _, err := r.Lookup("ruby"); err != nil {
		t.Errorf("ruby not registered: %v", err)
	}
	if _, err := r.Lookup("cpp"); err != nil {
		t.Errorf("builtin cpp lost: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "language = "},
		{"negative debounce", "debounce_ms = -1"},
		{"bad level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(tt.content), 0644)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
