// Package logging assembles structured slog loggers and formatting helpers used
// across sportanalyzer.
//
// Console output goes through tint with colour only when attached to a
// terminal; JSON output uses slog's JSON handler with stable key names. When a
// log directory is configured every record is also appended to a JSON file.
// Context-aware helpers tag lines with session IDs, stages, and request IDs,
// and a no-op logger is provided for tests and optional wiring.
package logging
