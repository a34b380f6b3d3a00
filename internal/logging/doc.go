// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components get named child loggers so every line carries its origin:
//
//	logger := logging.NewDefault()
//	shellLog := logger.Component("shell")
//	shellLog.Info("session started", zap.String("session_id", id))
package logging
