package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/ecohub/internal/errors"
	"github.com/rs/zerolog"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

const (
	ErrOpenLogFile  = errors.ErrorCode("logger_open_file_failed")
	ErrCloseLogFile = errors.ErrorCode("logger_close_file_failed")
)

// Config controls where and at which level events are written.
type Config struct {
	Level string
	// File, when set, receives a JSON copy of every event.
	File      string
	IsService bool
}

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zlogger struct {
	log  zerolog.Logger
	file *os.File
}

// New builds a logger writing to stdout and, optionally, to a log file.
// The caller owns the returned logger and must Close it on shutdown.
func New(cfg Config) (Logger, error) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	if cfg.IsService {
		console.TimeFormat = ""
		console.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	var (
		out  io.Writer = console
		file *os.File
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), defaultDirPerm); err != nil {
			return nil, errors.New().Wrap(ErrOpenLogFile, err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFilePerm)
		if err != nil {
			return nil, errors.New().Wrap(ErrOpenLogFile, err)
		}
		file = f
		out = zerolog.MultiLevelWriter(console, f)
	}

	return &zlogger{
		log:  zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger(),
		file: file,
	}, nil
}

// NewWithWriter builds a logger emitting JSON events to w. Intended for tests.
func NewWithWriter(w io.Writer, level string) Logger {
	return &zlogger{
		log: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zlogger{log: zerolog.Nop()}
}

// ParseLevel maps a configured level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warning", "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

func (l *zlogger) Debug() *LogEvent {
	return &LogEvent{l.log.Debug()}
}

func (l *zlogger) Info() *LogEvent {
	return &LogEvent{l.log.Info()}
}

func (l *zlogger) Warn() *LogEvent {
	return &LogEvent{l.log.Warn()}
}

func (l *zlogger) Error() *LogEvent {
	return &LogEvent{l.log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

func (l *zlogger) With(component string) Logger {
	return &zlogger{
		log:  l.log.With().Str("component", component).Logger(),
		file: l.file,
	}
}

// Close releases the log file, if any. Child loggers share the parent's file,
// so only the root logger should be closed.
func (l *zlogger) Close() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Close(); err != nil {
		return errors.New().Wrap(ErrCloseLogFile, err)
	}
	return nil
}
