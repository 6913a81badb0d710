// Package logging provides a small leveled logger for the gallery service.
//
// Messages are written through the standard library logger with a level
// prefix:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Degraded but recoverable conditions
//   - ERROR: Failed operations
//   - FATAL: Errors that terminate the process
//
// The level comes from LOG_LEVEL (or DEBUG=true). Components that want their
// name on every line use For:
//
//	log := logging.For("poller")
//	log.Info("change detected: %d -> %d records", before, after)
package logging
