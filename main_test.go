package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hwdash/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HWDASH_CONFIG", "")
	t.Setenv("HWDASH_REFRESH_INTERVAL", "")
	t.Setenv("HWDASH_THEME", "")
	return dir
}

func TestVersionFlag(t *testing.T) {
	isolate(t)
	cmd, _ := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hwdash "+version {
		t.Errorf("version output = %q", got)
	}
}

func TestFlagsOverrideConfigAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "dash.toml")
	if err := os.WriteFile(path, []byte(`
api_endpoint = "http://file:8002/dashboard"
theme = "Sand"
refresh_interval = "7s"
`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HWDASH_THEME", "Day")

	cmd, v := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path, "--refresh-interval", "1s"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Path != path {
		t.Errorf("config path = %q, want %q", cfg.Path, path)
	}
	if cfg.APIEndpoint != "http://file:8002/dashboard" {
		t.Errorf("api endpoint = %q, want file value", cfg.APIEndpoint)
	}
	if cfg.Theme != "Day" {
		t.Errorf("theme = %q, want env value", cfg.Theme)
	}
	if cfg.RefreshInterval.Duration != time.Second {
		t.Errorf("refresh = %v, want flag value", cfg.RefreshInterval.Duration)
	}
	// Unchanged flags do not mask lower layers.
	if cfg.HistoryEndpoint != "http://localhost:8002/history" {
		t.Errorf("history endpoint = %q, want default", cfg.HistoryEndpoint)
	}
}

func TestInvalidFlagValue(t *testing.T) {
	isolate(t)
	cmd, v := newRootCmd()
	if err := cmd.ParseFlags([]string{"--api-endpoint", "not a url"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if _, err := config.Load(v); err == nil {
		t.Fatal("expected validation error")
	}
}
