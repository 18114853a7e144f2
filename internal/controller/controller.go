package controller

import (
	"codeberg.org/mutker/ecohub/internal/analytics"
	"codeberg.org/mutker/ecohub/internal/device"
	"codeberg.org/mutker/ecohub/internal/logger"
)

// Action describes what React did for a record.
type Action int

const (
	ActionNone Action = iota
	ActionCooling
	ActionLowBattery
)

func (a Action) String() string {
	switch a {
	case ActionCooling:
		return "cooling"
	case ActionLowBattery:
		return "low_battery"
	default:
		return "none"
	}
}

// Controller issues corrective commands for critical records.
type Controller struct {
	policy Policy
	logger logger.Logger
}

func New(policy Policy, log logger.Logger) *Controller {
	return &Controller{
		policy: policy,
		logger: log,
	}
}

func (c *Controller) Policy() Policy {
	return c.policy
}

// React handles one critical record for the device it came from.
func (c *Controller) React(d device.Device, r analytics.Record) Action {
	switch dev := d.(type) {
	case *device.Thermostat:
		temp, ok := r.Value.AsFloat()
		if !ok || temp <= c.policy.Thresholds.Temperature {
			return ActionNone
		}
		c.cool(dev, temp)
		return ActionCooling

	case *device.Camera:
		level, ok := r.Value.AsInt()
		if !ok || level >= c.policy.Thresholds.Battery {
			return ActionNone
		}
		c.logger.Warn().
			Str("device_id", dev.ID()).
			Int("battery_level", level).
			Msgf("Camera %s battery low: %d%%", dev.ID(), level)
		return ActionLowBattery

	default:
		return ActionNone
	}
}

func (c *Controller) cool(th *device.Thermostat, reported float64) {
	state := th.Apply(func(s device.ThermostatState) device.ThermostatState {
		s.CurrentTemp = c.policy.CoolTo(s.CurrentTemp)
		s.TargetTemp = c.policy.CoolingTarget
		return s
	})
	next := state.CurrentTemp

	c.logger.Warn().
		Str("device_id", th.ID()).
		Float64("reported_temp", reported).
		Float64("threshold", c.policy.Thresholds.Temperature).
		Msg("High temperature detected, triggering cooling")
	c.logger.Info().
		Str("device_id", th.ID()).
		Float64("current_temp", next).
		Float64("target_temp", c.policy.CoolingTarget).
		Msg("Thermostat command executed: temperature adjusted")
}
