package analytics

import (
	"codeberg.org/mutker/ecohub/internal/device"
	"github.com/samber/lo"
)

const (
	DefaultTemperatureThreshold = 30.0
	DefaultBatteryThreshold     = 10
)

// Thresholds decide which records are critical.
type Thresholds struct {
	// Temperature is the exclusive upper bound for float readings.
	Temperature float64
	// Battery is the exclusive lower bound for integer readings.
	Battery int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Temperature: DefaultTemperatureThreshold,
		Battery:     DefaultBatteryThreshold,
	}
}

// IsCritical reports whether r breaches a threshold. The kind of the value
// selects the rule: floats are temperatures, integers are battery levels.
func (th Thresholds) IsCritical(r Record) bool {
	switch r.Value.Kind() {
	case KindFloat:
		f, _ := r.Value.AsFloat()
		return f > th.Temperature
	case KindInt:
		i, _ := r.Value.AsInt()
		return i < th.Battery
	default:
		return false
	}
}

// NormalizeAll maps a batch of raw updates to records, preserving order.
func NormalizeAll(updates []device.Update) []Record {
	return lo.Map(updates, func(u device.Update, _ int) Record {
		return Normalize(u)
	})
}

// Critical returns the critical records of a batch, preserving order.
func (th Thresholds) Critical(records []Record) []Record {
	return lo.Filter(records, func(r Record, _ int) bool {
		return th.IsCritical(r)
	})
}

type tempAcc struct {
	count int
	total float64
}

// AverageTemperature returns the mean of all float readings, or 0 when there
// are none.
func AverageTemperature(records []Record) float64 {
	acc := lo.Reduce(records, func(acc tempAcc, r Record, _ int) tempAcc {
		if f, ok := r.Value.AsFloat(); ok {
			acc.count++
			acc.total += f
		}
		return acc
	}, tempAcc{})
	if acc.count == 0 {
		return 0
	}
	return acc.total / float64(acc.count)
}
