package device

// Bulb is a dimmable light.
type Bulb struct {
	base
	isOn       bool
	brightness int
}

func NewBulb(id, name, location string) *Bulb {
	return &Bulb{
		base: base{id: id, name: name, location: location, typ: TypeBulb},
	}
}

func (b *Bulb) IsOn() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isOn
}

func (b *Bulb) Brightness() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.brightness
}

func (b *Bulb) Snapshot() Update {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append(b.header(),
		Field{Key: FieldIsOn, Value: b.isOn},
		Field{Key: FieldBrightness, Value: b.brightness},
	)
}

func (b *Bulb) Execute(cmd Command) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch c := cmd.(type) {
	case TurnOn:
		b.isOn = true
	case TurnOff:
		b.isOn = false
		b.brightness = 0
	case SetBrightness:
		b.brightness = clampInt(c.Brightness, minPercent, maxPercent)
		if c.Brightness > 0 {
			b.isOn = true
		}
	default:
		return false
	}
	return true
}
