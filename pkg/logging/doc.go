// Package logging provides structured logging configuration for murphy.
//
// This package wraps log/slog so the transport, the proxy and the CLI all
// log the same way. It supports configurable levels and output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("proxy started", "addr", ":8080")
//	logger.Debug("rule matched", "rule", rule.Name())
//
// # Output Formats
//
//   - Text: human-readable format for development
//   - JSON: structured format for log aggregation systems
//
// # Integration
//
// Components accept a *slog.Logger through an option. When none is given
// they fall back to logging.Nop().
package logging
