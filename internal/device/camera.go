package device

import "time"

const defaultBatteryLevel = 100

// Camera is a battery powered security camera with motion detection.
type Camera struct {
	base
	motionDetected bool
	batteryLevel   int
	lastSnapshot   time.Time
	now            func() time.Time
}

func NewCamera(id, name, location string, batteryLevel int) *Camera {
	return &Camera{
		base:         base{id: id, name: name, location: location, typ: TypeCamera},
		batteryLevel: clampInt(batteryLevel, minPercent, maxPercent),
		now:          time.Now,
	}
}

// NewDefaultCamera returns a camera with a full battery.
func NewDefaultCamera(id, name, location string) *Camera {
	return NewCamera(id, name, location, defaultBatteryLevel)
}

func (c *Camera) MotionDetected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.motionDetected
}

func (c *Camera) BatteryLevel() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.batteryLevel
}

// LastSnapshot returns the time of the last snapshot, if one was taken.
func (c *Camera) LastSnapshot() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSnapshot, !c.lastSnapshot.IsZero()
}

func (c *Camera) Snapshot() Update {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var last any
	if !c.lastSnapshot.IsZero() {
		last = formatTime(c.lastSnapshot)
	}

	return append(c.header(),
		Field{Key: FieldMotionDetected, Value: c.motionDetected},
		Field{Key: FieldBatteryLevel, Value: c.batteryLevel},
		Field{Key: FieldLastSnapshot, Value: last},
	)
}

func (c *Camera) Execute(cmd Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch v := cmd.(type) {
	case TakeSnapshot:
		c.lastSnapshot = c.now()
	case SetMotionDetected:
		c.motionDetected = v.Motion
	case SetBatteryLevel:
		c.batteryLevel = clampInt(v.BatteryLevel, minPercent, maxPercent)
	default:
		return false
	}
	return true
}
