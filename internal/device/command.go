package device

// Command is a typed device instruction. The set of commands is closed.
type Command interface {
	// Name returns the wire name of the command, e.g. "set_brightness".
	Name() string
	command()
}

type (
	TurnOn        struct{}
	TurnOff       struct{}
	SetBrightness struct{ Brightness int }

	SetTargetTemp  struct{ Temperature float64 }
	UpdateTemp     struct{ Temperature float64 }
	UpdateHumidity struct{ Humidity float64 }

	TakeSnapshot      struct{}
	SetMotionDetected struct{ Motion bool }
	SetBatteryLevel   struct{ BatteryLevel int }
)

func (TurnOn) Name() string        { return "turn_on" }
func (TurnOff) Name() string       { return "turn_off" }
func (SetBrightness) Name() string { return "set_brightness" }

func (SetTargetTemp) Name() string  { return "set_target_temp" }
func (UpdateTemp) Name() string     { return "update_temp" }
func (UpdateHumidity) Name() string { return "update_humidity" }

func (TakeSnapshot) Name() string      { return "take_snapshot" }
func (SetMotionDetected) Name() string { return "set_motion_detected" }
func (SetBatteryLevel) Name() string   { return "set_battery_level" }

func (TurnOn) command()        {}
func (TurnOff) command()       {}
func (SetBrightness) command() {}

func (SetTargetTemp) command()  {}
func (UpdateTemp) command()     {}
func (UpdateHumidity) command() {}

func (TakeSnapshot) command()      {}
func (SetMotionDetected) command() {}
func (SetBatteryLevel) command()   {}
