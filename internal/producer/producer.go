package producer

import (
	"context"
	"math/rand"
	"time"

	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/logger"
)

const (
	defaultMinDelay = 1 * time.Second
	defaultMaxDelay = 5 * time.Second

	driftFactor     = 0.1
	minTempNoise    = -3.0
	maxTempNoise    = 5.0
	spikeChance     = 0.15
	minSpike        = 3.0
	maxSpike        = 8.0
	maxHumidityStep = 3.0
	minHumidity     = 0.0
	maxHumidity     = 100.0
)

// Sink receives stamped updates. It must not block.
type Sink interface {
	Push(update device.Update)
}

// Producer simulates one device reporting its state at random intervals.
type Producer struct {
	device   device.Device
	out      Sink
	logger   logger.Logger
	minDelay time.Duration
	maxDelay time.Duration
	rnd      *rand.Rand
	now      func() time.Time
	observe  func(device.Update)
}

type Option func(*Producer)

// WithDelays sets the bounds of the random wait between updates.
func WithDelays(minDelay, maxDelay time.Duration) Option {
	return func(p *Producer) {
		if minDelay > 0 {
			p.minDelay = minDelay
		}
		if maxDelay > 0 {
			p.maxDelay = maxDelay
		}
	}
}

// WithSeed makes the producer's randomness reproducible.
func WithSeed(seed int64) Option {
	return func(p *Producer) {
		p.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Producer) {
		p.now = now
	}
}

// WithObserver registers fn to be called with every emitted update.
func WithObserver(fn func(device.Update)) Option {
	return func(p *Producer) {
		p.observe = fn
	}
}

func New(d device.Device, out Sink, log logger.Logger, opts ...Option) *Producer {
	p := &Producer{
		device:   d,
		out:      out,
		logger:   log,
		minDelay: defaultMinDelay,
		maxDelay: defaultMaxDelay,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxDelay < p.minDelay {
		p.maxDelay = p.minDelay
	}
	return p
}

// Run emits updates until ctx is cancelled. Cancellation is not an error.
func (p *Producer) Run(ctx context.Context) error {
	p.logger.Debug().
		Str("device_id", p.device.ID()).
		Dur("min_delay", p.minDelay).
		Dur("max_delay", p.maxDelay).
		Msg("Producer started")

	for {
		timer := time.NewTimer(p.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug().Str("device_id", p.device.ID()).Msg("Producer stopped")
			return nil
		case <-timer.C:
		}

		p.Tick()
	}
}

// Tick performs one iteration: drift simulated sensors, snapshot, stamp and
// enqueue. Disconnected devices emit nothing.
func (p *Producer) Tick() (device.Update, bool) {
	if !p.device.IsConnected() {
		return nil, false
	}

	if th, ok := p.device.(*device.Thermostat); ok {
		p.driftThermostat(th)
	}

	update := p.device.Snapshot().With(device.FieldTimestamp, p.now().Format(time.RFC3339Nano))
	p.out.Push(update)
	if p.observe != nil {
		p.observe(update)
	}

	return update, true
}

func (p *Producer) driftThermostat(th *device.Thermostat) {
	th.Apply(func(s device.ThermostatState) device.ThermostatState {
		s.CurrentTemp = NextTemperature(s.CurrentTemp, s.TargetTemp, p.rnd)
		s.Humidity = NextHumidity(s.Humidity, p.rnd)
		return s
	})
}

// NextTemperature moves current 10% toward target, adds noise in [-3, 5] and,
// with a 15% chance, an extra spike in [3, 8].
func NextTemperature(current, target float64, rnd *rand.Rand) float64 {
	next := current + (target-current)*driftFactor + uniform(rnd, minTempNoise, maxTempNoise)
	if rnd.Float64() < spikeChance {
		next += uniform(rnd, minSpike, maxSpike)
	}
	return next
}

// NextHumidity adds noise in [-3, 3] and clamps to [0, 100].
func NextHumidity(current float64, rnd *rand.Rand) float64 {
	next := current + uniform(rnd, -maxHumidityStep, maxHumidityStep)
	return max(minHumidity, min(maxHumidity, next))
}

func (p *Producer) nextDelay() time.Duration {
	span := int64(p.maxDelay - p.minDelay)
	if span <= 0 {
		return p.minDelay
	}
	return p.minDelay + time.Duration(p.rnd.Int63n(span+1))
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
