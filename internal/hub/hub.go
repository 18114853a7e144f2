package hub

import (
	"context"

	"codeberg.org/mutker/ecohub/internal/analytics"
	"codeberg.org/mutker/ecohub/internal/config"
	"codeberg.org/mutker/ecohub/internal/controller"
	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/errors"
	"codeberg.org/mutker/ecohub/internal/logger"
	"codeberg.org/mutker/ecohub/internal/metrics"
	"codeberg.org/mutker/ecohub/internal/pipeline"
	"codeberg.org/mutker/ecohub/internal/producer"
	"codeberg.org/mutker/ecohub/internal/queue"
	"codeberg.org/mutker/ecohub/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Hub owns the simulated fleet and every pipeline stage.
type Hub struct {
	cfg    *config.Config
	logger logger.Logger

	fleet     *device.Fleet
	updates   *queue.Queue[device.Update]
	producers []*producer.Producer
	collector *pipeline.Collector
	worker    *storage.Worker
	sink      storage.Sink
	recorder  metrics.Recorder
	stats     *metrics.Stats
}

type options struct {
	registry prometheus.Registerer
	seed     *int64
}

type Option func(*options)

// WithRegistry registers the pipeline collectors on reg instead of a private
// registry.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithSeed makes producer randomness reproducible. Each producer gets seed
// plus its position in the fleet.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// New builds the fleet and the pipeline from cfg. Nothing runs until Run.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Hub, error) {
	errFactory := errors.New()

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	devices := make([]device.Device, 0, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		d, err := device.New(dc.Spec())
		if err != nil {
			return nil, errFactory.Wrap(ErrInitApp, err)
		}
		devices = append(devices, d)
	}
	fleet, err := device.NewFleet(devices...)
	if err != nil {
		return nil, errFactory.Wrap(ErrInitApp, err)
	}

	stats, err := metrics.NewStats(o.registry)
	if err != nil {
		return nil, errFactory.Wrap(ErrInitApp, err)
	}

	sink, err := storage.NewFileSink(cfg.HistoryFile)
	if err != nil {
		return nil, errFactory.Wrap(ErrInitApp, err)
	}

	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics
	metricsCfg.DBPath = cfg.MetricsDB
	recorder, err := metrics.NewRecorder(metricsCfg, log.With("metrics"))
	if err != nil {
		sink.Close()
		return nil, errFactory.Wrap(ErrInitApp, err)
	}

	h := &Hub{
		cfg:      cfg,
		logger:   log,
		fleet:    fleet,
		updates:  queue.New[device.Update](),
		sink:     sink,
		recorder: recorder,
		stats:    stats,
	}

	h.worker = storage.NewWorker(sink, log.With("storage"), storage.WithWriteHook(stats.Persisted))

	policy := controller.DefaultPolicy()
	policy.Thresholds = analytics.Thresholds{
		Temperature: cfg.TempThreshold,
		Battery:     cfg.BatteryThreshold,
	}
	policy.CoolingTarget = cfg.CoolingTarget
	ctrl := controller.New(policy, log.With("controller"))

	h.collector, err = pipeline.New(
		pipeline.Config{BatchSize: cfg.BatchSize, IdleDelay: cfg.IdleDelay},
		h.updates,
		fleet,
		ctrl,
		h.worker,
		log.With("pipeline"),
		pipeline.WithRecorder(recorder),
		pipeline.WithStats(stats),
	)
	if err != nil {
		h.closeOutputs()
		return nil, errFactory.Wrap(ErrInitApp, err)
	}

	producerLog := log.With("producer")
	for i, d := range fleet.All() {
		popts := []producer.Option{
			producer.WithDelays(cfg.MinUpdateDelay, cfg.MaxUpdateDelay),
			producer.WithObserver(func(device.Update) { stats.UpdateProduced() }),
		}
		if o.seed != nil {
			popts = append(popts, producer.WithSeed(*o.seed+int64(i)))
		}
		h.producers = append(h.producers, producer.New(d, h.updates, producerLog, popts...))
	}

	return h, nil
}

func (h *Hub) Fleet() *device.Fleet {
	return h.fleet
}

func (h *Hub) Stats() metrics.Summary {
	return h.stats.Summary()
}

// Run connects the fleet and runs the pipeline until ctx is cancelled. On the
// way out producers stop first, the collector drains what they left behind
// and the persistence worker writes everything it was given before the
// outputs are closed. Cancellation is not an error.
func (h *Hub) Run(ctx context.Context) error {
	errFactory := errors.New()

	n := h.fleet.ConnectAll()
	h.logger.Info().Int("devices", n).Msgf("Connected %d devices to the network", n)

	// The worker is stopped by its sentinel, never by cancellation.
	go h.worker.Run(context.WithoutCancel(ctx))

	producers, producerCtx := errgroup.WithContext(ctx)
	for _, p := range h.producers {
		p := p
		producers.Go(func() error {
			return p.Run(producerCtx)
		})
	}

	collectorCtx, stopCollector := context.WithCancel(context.WithoutCancel(ctx))
	defer stopCollector()

	var g errgroup.Group
	g.Go(func() error {
		defer stopCollector()
		return producers.Wait()
	})
	g.Go(func() error {
		return h.collector.Run(collectorCtx)
	})

	err := g.Wait()
	h.logger.Info().Msg("Shutting down...")

	h.worker.Stop()
	<-h.worker.Done()
	h.closeOutputs()
	h.logSummary()

	if err != nil && !errors.Is(err, context.Canceled) {
		return errFactory.Wrap(ErrMainLoop, err)
	}
	return nil
}

func (h *Hub) closeOutputs() {
	if err := h.sink.Close(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to close history log")
	}
	if err := h.recorder.Close(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to close metrics recorder")
	}
}

func (h *Hub) logSummary() {
	s := h.stats.Summary()
	h.logger.Info().
		Int64("produced", s.Produced).
		Int64("processed", s.Processed).
		Int64("batches", s.Batches).
		Int64("critical", s.Critical).
		Int64("cooling_actions", s.CoolingActions).
		Int64("low_battery_warnings", s.LowBattery).
		Int64("persisted", s.Persisted).
		Int64("persist_failures", s.PersistFailures).
		Msg("Pipeline summary")
}
