package device

import (
	"sync"
	"time"

	"codeberg.org/mutker/ecohub/internal/errors"
)

const (
	minPercent = 0
	maxPercent = 100
)

const (
	ErrUnknownType = errors.ErrorCode("device_unknown_type")
	ErrEmptyID     = errors.ErrorCode("device_empty_id")
)

// base holds identity and connection state shared by all variants. mu guards
// the connection flag and every variant field.
type base struct {
	id       string
	name     string
	location string
	typ      Type

	mu        sync.RWMutex
	connected bool
}

func (b *base) ID() string       { return b.id }
func (b *base) Name() string     { return b.name }
func (b *base) Location() string { return b.location }
func (b *base) Type() Type       { return b.typ }

func (b *base) Connect() {
	b.mu.Lock()
	b.connected = true
	b.mu.Unlock()
}

func (b *base) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// header must be called with mu held.
func (b *base) header() Update {
	return Update{
		{Key: FieldDeviceID, Value: b.id},
		{Key: FieldName, Value: b.name},
		{Key: FieldLocation, Value: b.location},
		{Key: FieldDeviceType, Value: b.typ},
		{Key: FieldConnected, Value: b.connected},
	}
}

// Spec declares a device to construct. Fields that do not apply to Type are
// ignored.
type Spec struct {
	ID       string
	Name     string
	Location string
	Type     Type

	CurrentTemp  float64
	TargetTemp   float64
	Humidity     float64
	BatteryLevel int
}

// New constructs the variant named by spec.Type.
func New(spec Spec) (Device, error) {
	errFactory := errors.New()

	if spec.ID == "" {
		return nil, errFactory.New(ErrEmptyID)
	}

	switch spec.Type {
	case TypeBulb:
		return NewBulb(spec.ID, spec.Name, spec.Location), nil
	case TypeThermostat:
		return NewThermostat(spec.ID, spec.Name, spec.Location, spec.CurrentTemp, spec.TargetTemp, spec.Humidity), nil
	case TypeCamera:
		return NewCamera(spec.ID, spec.Name, spec.Location, spec.BatteryLevel), nil
	default:
		return nil, errFactory.WithData(ErrUnknownType, spec.Type)
	}
}

func clampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func clampFloat(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
