// Package audit records a local history of deploy and destroy operations.
//
// # Log Format
//
// The history is stored as JSON Lines (one JSON object per line) next to
// the user config:
//
//	<UserConfigDir>/asap/history.jsonl
//
// Each entry contains:
//   - A random entry ID
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name ("deploy" or "destroy")
//   - Site tag and URL
//   - Whether the operation succeeded, and the error message if not
//
// Site secrets are never written to the history.
//
// # Failure Handling
//
// History logging is best-effort. Log returns the write error, and the
// workflows report it at debug level and carry on.
//
// # Reading Logs
//
// Use History.ReadEntries to parse the history for display. Malformed entries
// are silently skipped to handle partial writes.
package audit
