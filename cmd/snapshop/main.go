package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/snapshop/snapshop/internal/app"
	"github.com/snapshop/snapshop/internal/nav"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "snapshop: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "snapshop",
		Short: "Find deals by uploading a product photo",
		Long: `SnapShop uploads an image to the search backend and lists the matching
catalog items.

Keyboard shortcuts:
  enter       Choose a file in the picker
  s           Upload the chosen image
  r           Show the latest results / reload them
  j/k         Move between results
  enter/o     Open the selected link in the browser
  y           Copy the selected link
  b/esc       Back to a new search
  ?           Help
  q           Quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/snapshop/config.toml)")
	flags.StringVar(&opts.LogFile, "log-file", "", `diagnostics log file, "-" disables logging`)
	root.Flags().StringVar(&opts.StartPath, "path", nav.PathSubmission, "screen to open first (/ or /results)")
	root.Flags().StringVarP(&opts.File, "file", "f", "", "image to preselect for upload")

	root.AddCommand(newLogsCmd(&opts))
	return root
}

func newLogsCmd(opts *app.Options) *cobra.Command {
	var lines int
	var plain bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the diagnostics log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			color := !plain && isTerminal(os.Stdout)
			return app.PrintLogs(cmd.OutOrStdout(), *opts, lines, color)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
