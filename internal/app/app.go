package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/snapshop/snapshop/internal/config"
	"github.com/snapshop/snapshop/internal/logging"
	"github.com/snapshop/snapshop/internal/logtail"
	"github.com/snapshop/snapshop/internal/search"
	"github.com/snapshop/snapshop/internal/ui"
)

// Options configure the SnapShop client.
type Options struct {
	ConfigPath string
	LogFile    string // overrides log_file; "-" disables logging
	StartPath  string // "/" or "/results"
	File       string // image preselected on the submission screen
}

// Run boots the SnapShop TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer func() { _ = logger.Sync() }()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting",
		zap.String("origin", client.Origin()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("start_path", opts.StartPath),
	)

	err = ui.Run(ui.Options{
		Context:     ctx,
		Client:      client,
		Logger:      logger,
		ThemeName:   cfg.Theme,
		StartPath:   opts.StartPath,
		InitialFile: opts.File,
	})
	if err != nil {
		logger.Error("ui exited with error", zap.Error(err))
		return errors.Wrap(err, "run ui")
	}
	logger.Info("exiting")
	return nil
}

// PrintLogs writes the last n lines of the diagnostics log to w.
func PrintLogs(w io.Writer, opts Options, n int, color bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.LogFile == config.LogDisabled {
		return errors.New("logging is disabled (log_file = \"-\")")
	}

	lines, err := logtail.ReadFile(cfg.LogFile, n)
	if err != nil {
		return err
	}
	format := logtail.Pretty
	if color {
		format = logtail.Colorize
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, format(line)); err != nil {
			return errors.Wrap(err, "write logs")
		}
	}
	return nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}
	if override := strings.TrimSpace(opts.LogFile); override != "" {
		cfg.LogFile = config.ResolveLogFile(override)
	}
	return cfg, nil
}

func newClient(cfg config.Config, logger *zap.Logger) (*search.Client, error) {
	client, err := search.NewClient(cfg.Origin,
		search.WithTimeout(cfg.RequestTimeout),
		search.WithLogger(logger.Named("search")),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "init search client for %q", cfg.Origin)
	}
	return client, nil
}
