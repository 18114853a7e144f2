package pipeline

import (
	"context"
	"time"

	"codeberg.org/mutker/ecohub/internal/analytics"
	"codeberg.org/mutker/ecohub/internal/controller"
	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/logger"
	"codeberg.org/mutker/ecohub/internal/metrics"
	"codeberg.org/mutker/ecohub/internal/queue"
	"github.com/google/uuid"
)

const (
	DefaultBatchSize = 10
	DefaultIdleDelay = 100 * time.Millisecond

	// unknownDeviceType labels critical records whose device is not in the
	// fleet.
	unknownDeviceType = "unknown"
)

type Config struct {
	// BatchSize caps the number of updates drained per cycle.
	BatchSize int
	// IdleDelay is the pause between cycles.
	IdleDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
		IdleDelay: DefaultIdleDelay,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.BatchSize <= 0 {
		return errFactory.WithData(ErrInvalidBatchSize, c.BatchSize)
	}
	if c.IdleDelay <= 0 {
		return errFactory.WithData(ErrInvalidIdleDelay, c.IdleDelay.String())
	}
	return nil
}

// Forwarder receives the raw updates of every processed batch.
type Forwarder interface {
	Submit(update device.Update)
}

// Summary describes one collector cycle. A zero Summary means the update
// queue was empty.
type Summary struct {
	BatchID        string
	Size           int
	Critical       int
	AverageTemp    float64
	CoolingActions int
	LowBattery     int
}

// Collector drains the update queue in bounded batches, reacts to critical
// readings and forwards every raw update to persistence.
type Collector struct {
	cfg        Config
	updates    *queue.Queue[device.Update]
	fleet      *device.Fleet
	controller *controller.Controller
	out        Forwarder
	logger     logger.Logger

	recorder metrics.Recorder
	stats    *metrics.Stats
	now      func() time.Time
	newID    func() string
}

type Option func(*Collector)

// WithRecorder stores a snapshot of every non-empty batch.
func WithRecorder(rec metrics.Recorder) Option {
	return func(c *Collector) {
		c.recorder = rec
	}
}

func WithStats(stats *metrics.Stats) Option {
	return func(c *Collector) {
		c.stats = stats
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

func New(
	cfg Config,
	updates *queue.Queue[device.Update],
	fleet *device.Fleet,
	ctrl *controller.Controller,
	out Forwarder,
	log logger.Logger,
	opts ...Option,
) (*Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if updates == nil || fleet == nil || ctrl == nil || out == nil {
		return nil, errFactory.WithMessage(ErrMissingComponent, "collector requires a queue, fleet, controller and forwarder")
	}

	c := &Collector{
		cfg:        cfg,
		updates:    updates,
		fleet:      fleet,
		controller: ctrl,
		out:        out,
		logger:     log,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run cycles every IdleDelay until ctx is done, then keeps cycling until the
// update queue is empty so nothing already produced is lost.
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Debug().
		Int("batch_size", c.cfg.BatchSize).
		Dur("idle_delay", c.cfg.IdleDelay).
		Msg("Collector started")

	ticker := time.NewTicker(c.cfg.IdleDelay)
	defer ticker.Stop()

	// A cycle in progress always completes, including its snapshot.
	work := context.WithoutCancel(ctx)
	for {
		c.Cycle(work)

		select {
		case <-ctx.Done():
			c.drain(work)
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Collector) drain(ctx context.Context) {
	batches := 0
	for {
		if s := c.Cycle(ctx); s.Size == 0 {
			break
		}
		batches++
	}
	c.logger.Debug().Int("batches", batches).Msg("Collector drained update queue")
}

// Cycle processes at most one batch.
func (c *Collector) Cycle(ctx context.Context) Summary {
	batch := c.updates.PopBatch(c.cfg.BatchSize)
	if c.stats != nil {
		c.stats.SetQueueDepth(c.updates.Len())
	}
	if len(batch) == 0 {
		return Summary{}
	}

	summary := Summary{
		BatchID: c.newID(),
		Size:    len(batch),
	}

	records := analytics.NormalizeAll(batch)
	critical := c.controller.Policy().Thresholds.Critical(records)
	summary.Critical = len(critical)

	for _, r := range critical {
		d, ok := c.fleet.Lookup(r.DeviceID)
		if c.stats != nil {
			deviceType := unknownDeviceType
			if ok {
				deviceType = string(d.Type())
			}
			c.stats.CriticalRecord(deviceType)
		}
		if !ok {
			c.logger.Debug().Str("device_id", r.DeviceID).Msg("Critical record from unknown device, skipping")
			continue
		}

		action := c.controller.React(d, r)
		switch action {
		case controller.ActionCooling:
			summary.CoolingActions++
		case controller.ActionLowBattery:
			summary.LowBattery++
		}
		if c.stats != nil {
			c.stats.Action(action.String())
		}
	}

	summary.AverageTemp = analytics.AverageTemperature(records)
	if summary.AverageTemp > 0 {
		c.logger.Info().
			Float64("average_temp", summary.AverageTemp).
			Msgf("Average house temperature: %.2f°C", summary.AverageTemp)
		if c.stats != nil {
			c.stats.SetAverageTemperature(summary.AverageTemp)
		}
	}

	for _, update := range batch {
		c.out.Submit(update)
	}

	if c.stats != nil {
		c.stats.BatchProcessed(summary.Size)
	}
	c.record(ctx, summary)

	return summary
}

func (c *Collector) record(ctx context.Context, summary Summary) {
	if c.recorder == nil {
		return
	}

	err := c.recorder.Record(ctx, &metrics.BatchSnapshot{
		ID:             summary.BatchID,
		Timestamp:      c.now(),
		Size:           summary.Size,
		Critical:       summary.Critical,
		AverageTemp:    summary.AverageTemp,
		CoolingActions: summary.CoolingActions,
		LowBattery:     summary.LowBattery,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("batch_id", summary.BatchID).Msg("Failed to record batch metrics")
	}
}
