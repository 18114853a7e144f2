package controller

import "codeberg.org/mutker/ecohub/internal/analytics"

const (
	DefaultCoolingTarget  = 25.0
	DefaultMinCooling     = 5.0
	DefaultOverrideMargin = 2.0
)

// Policy holds the thresholds and set points used when reacting to critical
// records.
type Policy struct {
	Thresholds analytics.Thresholds
	// CoolingTarget is both the temperature a cooled room is brought to and
	// the target temperature set afterwards.
	CoolingTarget float64
	// MinCooling is the smallest drop applied by a cooling action.
	MinCooling float64
	// OverrideMargin is how far below the threshold the temperature is forced
	// when the regular drop is not enough.
	OverrideMargin float64
}

func DefaultPolicy() Policy {
	return Policy{
		Thresholds:     analytics.DefaultThresholds(),
		CoolingTarget:  DefaultCoolingTarget,
		MinCooling:     DefaultMinCooling,
		OverrideMargin: DefaultOverrideMargin,
	}
}

// CoolTo returns the temperature a thermostat reading current should be
// brought down to.
func (p Policy) CoolTo(current float64) float64 {
	amount := max(p.MinCooling, current-p.CoolingTarget)
	next := current - amount
	if next >= p.Thresholds.Temperature {
		next = p.Thresholds.Temperature - p.OverrideMargin
	}
	return next
}
