package metrics

import (
	"context"
	"time"
)

// Recorder stores per-batch analytics snapshots.
type Recorder interface {
	Record(ctx context.Context, snapshot *BatchSnapshot) error
	Close() error
}

// Repository is the storage behind a Recorder.
type Repository interface {
	Record(snapshot *BatchSnapshot) error
	Close() error
}

// BatchSnapshot summarizes one processed batch.
type BatchSnapshot struct {
	ID             string
	Timestamp      time.Time
	Size           int
	Critical       int
	AverageTemp    float64
	CoolingActions int
	LowBattery     int
}
