// Package config loads the SnapShop client's startup settings.
//
// # Overview
//
// The client needs very little configuration: the backend origin, a request
// timeout, where to write diagnostics, and a color theme. All of it is read
// once at startup; nothing is editable from inside the UI and nothing is
// written back.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/snapshop/config.toml
//  3. If the file doesn't exist, use defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Backend Origin
//
// The origin defaults to DefaultOrigin, a package variable meant to be set at
// build time with -ldflags "-X". The config file's origin key overrides it
// for deployments that ship a config alongside the binary.
//
// # TOML Format
//
//	origin = "http://localhost:8000"
//	request_timeout = "30s"
//	log_file = "~/.local/state/snapshop/snapshop.log"   # "-" disables logging
//	log_level = "info"
//	theme = "Nightfox"
//
// # Error Handling
//
// Missing files are not an error. Unreadable files, invalid TOML and
// unparseable durations are.
package config
