// Package logging provides structured logging for audio-virtual-linker.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the daemon. Every watcher decision, profile
// change and link mutation is logged through here; failures of external
// commands are surfaced exclusively as log lines (there is no separate
// error channel).
//
// # Log Levels
//
//   - Debug: raw notification lines, parse cursor transitions, command argv
//   - Info: typed device events, profile changes, link add/remove
//   - Warn: non-fatal external command failures (retried state, skipped ops)
//   - Error: startup failures, watcher loop death
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device event",
//	    zap.String("device", "xm5"),
//	    zap.String("event", "connected"),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The level may also be set through the AVL_LOG_LEVEL environment
// variable. Logs go to stderr: the console encoder when attached to a
// terminal, JSON otherwise (journald, redirected files).
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
