// Package app is the composition root of the SnapShop client.
//
// # Overview
//
// Run wires configuration, diagnostics logging, the search client and the
// UI, then blocks until the user quits or the context is cancelled:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       Read ~/.config/snapshop/config.toml
//	       ├─────> logging.New()       JSON diagnostics file (or nop)
//	       ├─────> search.NewClient()  Backend origin + request timeout
//	       └─────> ui.Run()            Start TUI (blocks)
//
// Nothing is polled and no state outlives the process.
//
// PrintLogs backs the `snapshop logs` subcommand: it resolves the same log
// file Run would write to and prints its tail through logtail.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - invalid config file or request_timeout
//   - unusable log file path
//   - an origin without a host
//
// Backend failures never reach this package; the screens turn them into
// messages and log the detail.
package app
