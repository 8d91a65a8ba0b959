// Package logtail reads the tail of the diagnostics log and formats its JSON
// lines for a terminal.
//
// # Reading
//
// Tail keeps a ring buffer of the last maxLines lines, so memory stays
// proportional to the requested window rather than the file size. ReadFile
// treats a missing file as empty: a fresh install has no log yet.
//
// # Formatting
//
// The logger writes one JSON object per line. Pretty turns each into
//
//	2026-01-02T15:04:05.000Z WARN  snapshop.search: backend request failed endpoint=/upload/ status=500
//
// with encoder keys (ts, level, logger, msg) pulled to the front, caller and
// stacktrace dropped, and remaining fields sorted by key. Colorize does the
// same with lipgloss styles on the timestamp, level and field keys.
//
// Anything that is not a JSON object is passed through unchanged.
package logtail
