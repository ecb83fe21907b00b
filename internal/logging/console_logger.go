package logging

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// ConsoleLogger writes leveled log messages to stderr.
// Verbose messages are emitted at debug level and only when verbose is enabled.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	logger *charmlog.Logger
}

// NewConsoleLogger creates a ConsoleLogger writing to stderr.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a ConsoleLogger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05.000",
		Prefix:          "pgdispatch",
	})

	return &ConsoleLogger{logger: logger}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}
