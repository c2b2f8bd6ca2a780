// Package log provides structured event capture for device initialization
// and control traffic.
//
// This package defines the Logger interface and Event types for recording
// what the negotiation engine decided and why: hardware monitor round-trips,
// the decoded capability mask, every composed control, and policy
// rejections. It is separate from operational logging (slog) - event capture
// produces a complete machine-readable trace for field debugging.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/dcam/device.dlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with .dlog extension. The dcam-log CLI tool
// provides viewing and statistics.
package log
