// Package logger provides a structured logging facility based on Zap.
//
// Long-running processes (the HTTP server, the file watcher) log in JSON by
// default; the one-shot CLI commands use the console encoder so operators get
// readable output in a terminal.
//
// # Request correlation
//
// WithRayID extracts the RayID set by the rayid middleware from a Fiber
// context and attaches it to the log entry, so every line belonging to one
// operator request can be grouped.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Tables loaded", zap.Int("ids", n))
package logger
