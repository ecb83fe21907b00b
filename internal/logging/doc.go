// Package logging provides concrete implementations of the pgdispatch.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: leveled output to stderr through charmbracelet/log
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
