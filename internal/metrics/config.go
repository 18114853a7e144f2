package metrics

import (
	"time"

	"codeberg.org/mutker/ecohub/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultDBPath       = "ecohub-metrics.db"
	defaultBatchSize    = 20
	defaultFlushTimeout = 10 * time.Second
)

type Config struct {
	DBPath string
	// BatchSize is the number of snapshots buffered before a flush.
	BatchSize int
	// FlushInterval bounds how long a snapshot may sit in the buffer.
	FlushInterval time.Duration
	Enabled       bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:        defaultDBPath,
		BatchSize:     defaultBatchSize,
		FlushInterval: defaultFlushTimeout,
		Enabled:       false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if metrics is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.Enabled && c.BatchSize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "batch size must be positive")
	}
	return nil
}
