package storage

import "codeberg.org/mutker/ecohub/internal/device"

// Entry is one persisted log record wrapping a raw update.
type Entry struct {
	Timestamp string        `json:"timestamp"`
	Update    device.Update `json:"update"`
}

// Sink is an append-only durable store of entries.
type Sink interface {
	Append(entry Entry) error
	Close() error
}
