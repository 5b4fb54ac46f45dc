// Package logging assembles the structured slog loggers used by pkcon and the
// helper supervisor.
//
// It owns the console and JSON handlers, level and output plumbing, and a set
// of attribute helpers so every component tags its lines the same way. A no-op
// logger is provided for tests and for wiring code that cannot fail.
package logging
