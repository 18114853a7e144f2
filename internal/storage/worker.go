package storage

import (
	"context"
	"time"

	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/logger"
	"codeberg.org/mutker/ecohub/internal/queue"
)

// item is either an update to persist or the stop marker.
type item struct {
	update device.Update
	stop   bool
}

// Worker persists updates on its own goroutine so slow writes never hold up
// the pipeline. It shares nothing with its callers except its queue.
type Worker struct {
	queue  *queue.Queue[item]
	sink   Sink
	logger logger.Logger
	now    func() time.Time

	onWrite func(err error)
	done    chan struct{}
}

type WorkerOption func(*Worker)

func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		w.now = now
	}
}

// WithWriteHook registers fn to be called after every append attempt with
// its result.
func WithWriteHook(fn func(err error)) WorkerOption {
	return func(w *Worker) {
		w.onWrite = fn
	}
}

func NewWorker(sink Sink, log logger.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		queue:  queue.New[item](),
		sink:   sink,
		logger: log,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit queues an update for persistence. It never blocks.
func (w *Worker) Submit(update device.Update) {
	w.queue.Push(item{update: update})
}

// Stop queues the stop marker. Updates submitted before Stop are still
// written.
func (w *Worker) Stop() {
	w.queue.Push(item{stop: true})
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Pending returns the number of queued items.
func (w *Worker) Pending() int {
	return w.queue.Len()
}

// Run writes queued updates until the stop marker is received or ctx is
// done. A failed write is logged and the entry dropped.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)

	w.logger.Debug().Msg("Persistence worker started")
	for {
		it, err := w.queue.Pop(ctx)
		if err != nil {
			w.logger.Debug().Err(err).Int("pending", w.queue.Len()).Msg("Persistence worker cancelled")
			return nil
		}
		if it.stop {
			w.logger.Debug().Msg("Persistence worker stopped")
			return nil
		}

		w.write(it.update)
	}
}

func (w *Worker) write(update device.Update) {
	entry := Entry{
		Timestamp: w.now().Format(time.RFC3339Nano),
		Update:    update,
	}

	err := w.sink.Append(entry)
	if err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			w.logger.ErrorWithCode(appErr).Str("device_id", update.DeviceID()).Msg("Error writing to log")
		} else {
			w.logger.Error().Err(err).Str("device_id", update.DeviceID()).Msg("Error writing to log")
		}
	}

	if w.onWrite != nil {
		w.onWrite(err)
	}
}
