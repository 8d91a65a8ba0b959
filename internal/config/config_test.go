package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Origin != DefaultOrigin {
		t.Fatalf("Origin = %q, want %q", cfg.Origin, DefaultOrigin)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LogLevel != defaultLogLevel || cfg.Theme != defaultTheme {
		t.Fatalf("LogLevel/Theme = %q/%q, want %q/%q", cfg.LogLevel, cfg.Theme, defaultLogLevel, defaultTheme)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
origin = "  https://search.example.com  "
request_timeout = " 45s "
log_file = "  ~/snapshop/debug.log  "
log_level = "DEBUG"
theme = "Slate"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Origin != "https://search.example.com" {
		t.Fatalf("Origin = %q, want %q", cfg.Origin, "https://search.example.com")
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("RequestTimeout = %v, want 45s", cfg.RequestTimeout)
	}
	if cfg.LogFile != filepath.Join(home, "snapshop", "debug.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", cfg.Theme)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
origin = "   "
request_timeout = "0s"
log_file = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Origin != DefaultOrigin {
		t.Fatalf("Origin = %q, want %q", cfg.Origin, DefaultOrigin)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.LogFile != mustExpand(defaultLogFile) {
		t.Fatalf("LogFile = %q, want default", cfg.LogFile)
	}
}

func TestLoad_LogDisabledIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`log_file = "-"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogFile != LogDisabled {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, LogDisabled)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"toml", `origin = [`, "parse config"},
		{"timeout", `request_timeout = "soon"`, "parse request_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want %s error", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load error = %q, want it to mention %s", err.Error(), tc.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestResolveLogFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ResolveLogFile(" - "); got != LogDisabled {
		t.Fatalf("ResolveLogFile(-) = %q, want %q", got, LogDisabled)
	}
	if got := ResolveLogFile("~/x.log"); got != filepath.Join(home, "x.log") {
		t.Fatalf("ResolveLogFile(~/x.log) = %q, want under HOME", got)
	}
}
