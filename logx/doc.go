// Package logx provides leveled structured logging with environment variable
// configuration and console or JSON output.
//
// Environment Variables:
//   - LOG_LEVEL: Set the minimum log level (TRACE, DEBUG, INFO, WARN, ERROR, OFF)
//   - LOG_FORMAT: Set output format (console, json)
//   - LOG_COLOR: Enable/disable colored output (true/false, default: true)
//   - LOG_CALLER: Enable/disable caller information (true/false, default: true)
//
// Basic Usage:
//
//	logx.Info("Webhook server starting on %s", addr)
//	logx.Error("Failed to send message to %s: %v", phone, err)
//
// Format Examples:
//
//	Console Format (default):
//	[2025-06-08 18:57:52] [INFO] client.go:64: Message sent to +51999999999
//
//	JSON Format (structured logging for log aggregation):
//	LOG_FORMAT=json go run main.go
//	{"timestamp":"2025-06-08T18:57:52Z","level":"INFO","message":"Message sent to +51999999999","caller":"client.go:64"}
//
// Both a global logger and instance-based loggers are available; the global
// logger is configured once from the environment at init time.
package logx
