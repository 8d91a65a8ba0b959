// Package logging builds the diagnostics logger. The terminal belongs to the
// UI, so entries go to a JSON file that `snapshop logs` can tail.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/Laisky/zap/zapcore"
)

// Disabled is the path value that yields a no-op logger.
const Disabled = "-"

// New returns a logger writing JSON lines to path at the given level. An
// empty path or Disabled returns a no-op logger.
func New(path, level string) (*zap.Logger, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == Disabled {
		return zap.NewNop(), nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "build logger for %s", path)
	}
	return logger.Named("snapshop"), nil
}

// ParseLevel maps a level name to a zap level; blank means info.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, errors.Wrapf(err, "parse log level %q", level)
	}
	return lvl, nil
}
