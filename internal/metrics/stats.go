package metrics

import (
	"math"
	"sync/atomic"

	"codeberg.org/mutker/ecohub/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ecohub"

// Action labels used by Stats.Action.
const (
	ActionCooling    = "cooling"
	ActionLowBattery = "low_battery"
)

// Stats tracks pipeline throughput. Plain atomic counters are always kept for
// the shutdown summary; the same values are mirrored into Prometheus
// collectors registered on the given registerer.
type Stats struct {
	produced        atomic.Int64
	processed       atomic.Int64
	batches         atomic.Int64
	critical        atomic.Int64
	cooling         atomic.Int64
	lowBattery      atomic.Int64
	persisted       atomic.Int64
	persistFailures atomic.Int64
	averageTemp     atomic.Uint64

	producedTotal        prometheus.Counter
	processedTotal       prometheus.Counter
	criticalTotal        *prometheus.CounterVec
	actionsTotal         *prometheus.CounterVec
	persistedTotal       prometheus.Counter
	persistFailuresTotal prometheus.Counter
	averageTempGauge     prometheus.Gauge
	queueDepthGauge      prometheus.Gauge
	batchSizeHistogram   prometheus.Histogram
}

// Summary is a point-in-time copy of the counters.
type Summary struct {
	Produced        int64
	Processed       int64
	Batches         int64
	Critical        int64
	CoolingActions  int64
	LowBattery      int64
	Persisted       int64
	PersistFailures int64
	AverageTemp     float64
}

// NewStats creates the collectors and registers them on reg. A nil reg gets
// a private registry.
func NewStats(reg prometheus.Registerer) (*Stats, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Stats{
		producedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_produced_total",
			Help:      "Device updates emitted by producers",
		}),
		processedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_processed_total",
			Help:      "Device updates processed by the collector",
		}),
		criticalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "critical_records_total",
			Help:      "Records classified as critical",
		}, []string{"device_type"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactive_actions_total",
			Help:      "Corrective actions taken by the controller",
		}, []string{"action"}),
		persistedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_persisted_total",
			Help:      "Log entries appended to the history log",
		}),
		persistFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_persist_failures_total",
			Help:      "Log entries dropped after a failed append",
		}),
		averageTempGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_temperature_celsius",
			Help:      "Average thermostat temperature of the last batch with readings",
		}),
		queueDepthGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "update_queue_depth",
			Help:      "Updates waiting in the update queue after the last drain",
		}),
		batchSizeHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of updates per processed batch",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	for _, c := range []prometheus.Collector{
		s.producedTotal,
		s.processedTotal,
		s.criticalTotal,
		s.actionsTotal,
		s.persistedTotal,
		s.persistFailuresTotal,
		s.averageTempGauge,
		s.queueDepthGauge,
		s.batchSizeHistogram,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.New().Wrap(ErrRegisterFailed, err)
		}
	}

	return s, nil
}

func (s *Stats) UpdateProduced() {
	s.produced.Add(1)
	s.producedTotal.Inc()
}

func (s *Stats) BatchProcessed(size int) {
	s.batches.Add(1)
	s.processed.Add(int64(size))
	s.processedTotal.Add(float64(size))
	s.batchSizeHistogram.Observe(float64(size))
}

func (s *Stats) CriticalRecord(deviceType string) {
	s.critical.Add(1)
	s.criticalTotal.WithLabelValues(deviceType).Inc()
}

// Action counts a corrective action. Unknown actions are ignored.
func (s *Stats) Action(action string) {
	switch action {
	case ActionCooling:
		s.cooling.Add(1)
	case ActionLowBattery:
		s.lowBattery.Add(1)
	default:
		return
	}
	s.actionsTotal.WithLabelValues(action).Inc()
}

// Persisted counts the outcome of one append.
func (s *Stats) Persisted(err error) {
	if err != nil {
		s.persistFailures.Add(1)
		s.persistFailuresTotal.Inc()
		return
	}
	s.persisted.Add(1)
	s.persistedTotal.Inc()
}

func (s *Stats) SetAverageTemperature(v float64) {
	s.averageTemp.Store(math.Float64bits(v))
	s.averageTempGauge.Set(v)
}

func (s *Stats) SetQueueDepth(n int) {
	s.queueDepthGauge.Set(float64(n))
}

func (s *Stats) Summary() Summary {
	return Summary{
		Produced:        s.produced.Load(),
		Processed:       s.processed.Load(),
		Batches:         s.batches.Load(),
		Critical:        s.critical.Load(),
		CoolingActions:  s.cooling.Load(),
		LowBattery:      s.lowBattery.Load(),
		Persisted:       s.persisted.Load(),
		PersistFailures: s.persistFailures.Load(),
		AverageTemp:     math.Float64frombits(s.averageTemp.Load()),
	}
}
