// Package logging assembles structured slog loggers and formatting helpers used
// across soundmatch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine code can tag log lines
// with a correlation id and the active resolution profile. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
