package pipeline

import "codeberg.org/mutker/ecohub/internal/errors"

const (
	ErrInvalidBatchSize = errors.ErrorCode("pipeline_invalid_batch_size")
	ErrInvalidIdleDelay = errors.ErrorCode("pipeline_invalid_idle_delay")
	ErrMissingComponent = errors.ErrorCode("pipeline_missing_component")
)
