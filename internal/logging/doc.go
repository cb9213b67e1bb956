// Package logging provides a simple leveled logging interface for the
// photo pipeline.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The initial level comes from the DEBUG or LOG_LEVEL environment variables.
// SetLevel overrides it once configuration has been loaded, and SetOutput
// redirects log lines (the progress bar uses it to keep the terminal tidy).
package logging
