package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Matching.AcceptThreshold != 0.82 {
		t.Errorf("accept threshold = %v, want 0.82", cfg.Matching.AcceptThreshold)
	}
	if cfg.Queue.ReservationSeconds != 180 {
		t.Errorf("reservation seconds = %d, want 180", cfg.Queue.ReservationSeconds)
	}
	if cfg.Session.InactivitySeconds != 900 {
		t.Errorf("inactivity seconds = %d, want 900", cfg.Session.InactivitySeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Matching.LongLength != 8 {
		t.Errorf("long length = %d, want 8", cfg.Matching.LongLength)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[paths]",
		`state_dir = "` + dir + `"`,
		"",
		"[queue]",
		"reservation_seconds = 60",
		"",
		"[matching]",
		"accept_threshold = 0.9",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Queue.ReservationSeconds != 60 {
		t.Errorf("reservation seconds = %d, want 60", cfg.Queue.ReservationSeconds)
	}
	if cfg.Matching.AcceptThreshold != 0.9 {
		t.Errorf("accept threshold = %v, want 0.9", cfg.Matching.AcceptThreshold)
	}
	if cfg.Session.InactivitySeconds != 900 {
		t.Errorf("unset values must keep defaults, inactivity = %d", cfg.Session.InactivitySeconds)
	}
	if cfg.Paths.LogDir == "" {
		t.Error("log dir should fall back to state dir when unset")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching]\naccept_threshold = 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for threshold > 1")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when sample exists")
	}
}
