package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskcycle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Roster != DefaultRoster || cfg.LockPort != DefaultLockPort {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	d, err := cfg.Interval()
	if err != nil || d != DefaultPollInterval {
		t.Fatalf("Interval = %v, %v", d, err)
	}
	w, err := cfg.Window()
	if err != nil || w != nil {
		t.Fatalf("Window = %v, %v, want nil", w, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, strings.Join([]string{
		"roster: tasks.csv",
		"poll_interval: 90s",
		"poll_window: '*/10 8-18 * * 1-5'",
		"lock_port: 62001",
	}, "\n"))
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Roster != "tasks.csv" {
		t.Fatalf("Roster = %q", cfg.Roster)
	}
	d, err := cfg.Interval()
	if err != nil || d != 90*time.Second {
		t.Fatalf("Interval = %v, %v", d, err)
	}
	w, err := cfg.Window()
	if err != nil || w == nil {
		t.Fatalf("Window = %v, %v", w, err)
	}
	if cfg.LockPort != 62001 {
		t.Fatalf("LockPort = %d", cfg.LockPort)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "rooster: tasks.csv"},
		{name: "bad interval", content: "poll_interval: soon"},
		{name: "negative interval", content: "poll_interval: -5m"},
		{name: "bad window", content: "poll_window: whenever"},
		{name: "bad port", content: "lock_port: 99999"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
