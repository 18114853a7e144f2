package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/ecohub/internal/errors"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
	writeBufferSize = 64 * 1024
)

// FileSink appends entries to a file as JSON lines. Every Append is flushed
// before returning.
type FileSink struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewFileSink(path string) (*FileSink, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrInvalidPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrOpenFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  path,
			Error: err.Error(),
		})
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err)
	}

	return &FileSink{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, writeBufferSize),
	}, nil
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Append(entry Entry) error {
	errFactory := errors.New()

	line, err := json.Marshal(entry)
	if err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errFactory.New(ErrSinkClosed)
	}
	if _, err := s.writer.Write(line); err != nil {
		return errFactory.Wrap(ErrAppendFailed, err)
	}
	if err := s.writer.Flush(); err != nil {
		// Drop the partial line so the next entry starts clean.
		s.writer.Reset(s.file)
		return errFactory.Wrap(ErrAppendFailed, err)
	}

	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	errFactory := errors.New()
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil

	if flushErr != nil {
		return errFactory.Wrap(ErrCloseFailed, flushErr)
	}
	if closeErr != nil {
		return errFactory.Wrap(ErrCloseFailed, closeErr)
	}
	return nil
}
