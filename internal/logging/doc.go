// Package logging constructs slog loggers for the picvoice server and CLI.
//
// It selects between a human-oriented console handler and a JSON handler,
// mirrors output to a log file under the configured log directory, and
// exposes small attribute helpers so callers do not import log/slog
// directly for common field shapes.
package logging
