package hub

import "codeberg.org/mutker/ecohub/internal/errors"

const (
	ErrInitApp  = errors.ErrInitApp
	ErrMainLoop = errors.ErrMainLoop
)
