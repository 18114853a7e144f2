package logger

import "codeberg.org/mutker/ecohub/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	// With returns a child logger that tags every event with a component name.
	With(component string) Logger
	Close() error
}
