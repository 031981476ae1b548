// Package logger provides structured logging for Dew.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler setup, global level, default logger
//   - context.go: request ID propagation through context.Context
//   - redact.go: masking of secrets such as the snapshot encryption key
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime without rebuilding handlers.
package logger
