package device

const (
	defaultTemperature = 20.0
	defaultHumidity    = 50.0
)

// Thermostat reports temperature and humidity in degrees Celsius and percent.
type Thermostat struct {
	base
	currentTemp float64
	targetTemp  float64
	humidity    float64
}

func NewThermostat(id, name, location string, currentTemp, targetTemp, humidity float64) *Thermostat {
	return &Thermostat{
		base:        base{id: id, name: name, location: location, typ: TypeThermostat},
		currentTemp: currentTemp,
		targetTemp:  targetTemp,
		humidity:    clampFloat(humidity, minPercent, maxPercent),
	}
}

// NewDefaultThermostat returns a thermostat at 20°C, target 20°C, 50% humidity.
func NewDefaultThermostat(id, name, location string) *Thermostat {
	return NewThermostat(id, name, location, defaultTemperature, defaultTemperature, defaultHumidity)
}

func (t *Thermostat) CurrentTemp() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentTemp
}

func (t *Thermostat) TargetTemp() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.targetTemp
}

func (t *Thermostat) Humidity() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.humidity
}

func (t *Thermostat) Snapshot() Update {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append(t.header(),
		Field{Key: FieldCurrentTemp, Value: t.currentTemp},
		Field{Key: FieldTargetTemp, Value: t.targetTemp},
		Field{Key: FieldHumidity, Value: t.humidity},
	)
}

// ThermostatState is a copy of a thermostat's readings.
type ThermostatState struct {
	CurrentTemp float64
	TargetTemp  float64
	Humidity    float64
}

// Apply replaces the readings with fn's result under a single lock, so a
// change computed from the current readings cannot interleave with another
// writer. Humidity is clamped as with UpdateHumidity.
func (t *Thermostat) Apply(fn func(ThermostatState) ThermostatState) ThermostatState {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := fn(ThermostatState{
		CurrentTemp: t.currentTemp,
		TargetTemp:  t.targetTemp,
		Humidity:    t.humidity,
	})
	t.currentTemp = next.CurrentTemp
	t.targetTemp = next.TargetTemp
	t.humidity = clampFloat(next.Humidity, minPercent, maxPercent)

	return ThermostatState{
		CurrentTemp: t.currentTemp,
		TargetTemp:  t.targetTemp,
		Humidity:    t.humidity,
	}
}

func (t *Thermostat) Execute(cmd Command) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch c := cmd.(type) {
	case SetTargetTemp:
		t.targetTemp = c.Temperature
	case UpdateTemp:
		t.currentTemp = c.Temperature
	case UpdateHumidity:
		t.humidity = clampFloat(c.Humidity, minPercent, maxPercent)
	default:
		return false
	}
	return true
}
