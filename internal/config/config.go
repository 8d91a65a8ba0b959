package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultOrigin is the backend origin baked into the binary. Override at
// build time with:
//
//	-ldflags "-X github.com/snapshop/snapshop/internal/config.DefaultOrigin=https://search.example.com"
var DefaultOrigin = "http://localhost:8000"

// Config holds the client's startup settings.
type Config struct {
	Origin         string
	RequestTimeout time.Duration
	LogFile        string // "-" disables diagnostics logging
	LogLevel       string
	Theme          string
}

const (
	defaultConfigPath     = "~/.config/snapshop/config.toml"
	defaultLogFile        = "~/.local/state/snapshop/snapshop.log"
	defaultLogLevel       = "info"
	defaultTheme          = "Nightfox"
	defaultRequestTimeout = 30 * time.Second

	// LogDisabled turns diagnostics logging off when used as log_file.
	LogDisabled = "-"
)

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Origin:         strings.TrimSpace(DefaultOrigin),
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		Theme:          defaultTheme,
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "open config")
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	var raw struct {
		Origin         string `toml:"origin"`
		RequestTimeout string `toml:"request_timeout"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		Theme          string `toml:"theme"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	if origin := strings.TrimSpace(raw.Origin); origin != "" {
		cfg.Origin = origin
	}

	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse request_timeout %q", timeout)
		}
		if d > 0 {
			cfg.RequestTimeout = d
		}
	}

	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = ResolveLogFile(logFile)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if theme := strings.TrimSpace(raw.Theme); theme != "" {
		cfg.Theme = theme
	}

	return cfg, nil
}

// ResolveLogFile expands a log file setting. LogDisabled is returned as-is.
func ResolveLogFile(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == LogDisabled {
		return path
	}
	return mustExpand(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
