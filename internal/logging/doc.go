// Package logging constructs the slog loggers used across the daemon and
// CLI, with a human-oriented console handler and a JSON handler for log
// files, plus standardized attribute helpers.
package logging
