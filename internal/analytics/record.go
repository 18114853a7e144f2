package analytics

import (
	"codeberg.org/mutker/ecohub/internal/device"
)

// Record is the normalized projection of a raw update. It is passed by value
// and never mutated.
type Record struct {
	DeviceID  string
	Timestamp string
	Value     Value
}

// Normalize extracts the headline reading of an update based on its
// device_type: brightness for bulbs, current_temp for thermostats and
// battery_level for cameras. Missing readings default to zero of the
// expected kind; unknown device types yield None.
func Normalize(update device.Update) Record {
	r := Record{
		DeviceID:  update.DeviceID(),
		Timestamp: update.Str(device.FieldTimestamp),
	}

	switch update.DeviceType() {
	case device.TypeBulb:
		r.Value = Int(intField(update, device.FieldBrightness))
	case device.TypeThermostat:
		r.Value = Float(floatField(update, device.FieldCurrentTemp))
	case device.TypeCamera:
		r.Value = Int(intField(update, device.FieldBatteryLevel))
	default:
		r.Value = None()
	}

	return r
}

func intField(update device.Update, key string) int {
	v, _ := update.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func floatField(update device.Update, key string) float64 {
	v, _ := update.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
