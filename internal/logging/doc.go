// Package logger provides leveled output for asap CLI commands.
//
// Verbosity is driven by two persistent flags on the root command:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages, plus request details
//
// Warnings always go to stderr. Prefixes are colored with
// fatih/color and honour NO_COLOR.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Archived %d files", count)
//	log.Warnf("Unknown key %q in config", key)
//
// The root command builds a Logger in its PersistentPreRun and passes it
// down to the HTTP client and workflows.
package logger
