package config

import "codeberg.org/mutker/ecohub/internal/errors"

const (
	ErrReadConfig           = errors.ErrReadConfig
	ErrInvalidConfig        = errors.ErrInvalidConfig
	ErrInvalidLogLevel      = errors.ErrInvalidLogLevel
	ErrInvalidInterval      = errors.ErrInvalidInterval
	ErrInvalidBatchSize     = errors.ErrorCode("config_invalid_batch_size")
	ErrInvalidUpdateDelay   = errors.ErrorCode("config_invalid_update_delay")
	ErrInvalidHistoryFile   = errors.ErrorCode("config_invalid_history_file")
	ErrInvalidMetricsDB     = errors.ErrorCode("config_invalid_metrics_db")
	ErrInvalidThreshold     = errors.ErrorCode("config_invalid_threshold")
	ErrInvalidCoolingTarget = errors.ErrorCode("config_invalid_cooling_target")
	ErrInvalidDevice        = errors.ErrorCode("config_invalid_device")
	ErrDuplicateDevice      = errors.ErrorCode("config_duplicate_device")
)
