package storage

import "codeberg.org/mutker/ecohub/internal/errors"

const (
	ErrInvalidPath  = errors.ErrorCode("storage_invalid_path")
	ErrOpenFailed   = errors.ErrorCode("storage_open_failed")
	ErrAppendFailed = errors.ErrorCode("storage_append_failed")
	ErrCloseFailed  = errors.ErrorCode("storage_close_failed")
	ErrSinkClosed   = errors.ErrorCode("storage_sink_closed")
)
