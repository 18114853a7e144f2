package device

import "codeberg.org/mutker/ecohub/internal/errors"

const ErrDuplicateID = errors.ErrorCode("device_duplicate_id")

// Fleet is the fixed set of devices managed for the lifetime of a run.
// Membership never changes after NewFleet, so it needs no locking.
type Fleet struct {
	devices []Device
	byID    map[string]Device
}

func NewFleet(devices ...Device) (*Fleet, error) {
	f := &Fleet{
		devices: make([]Device, 0, len(devices)),
		byID:    make(map[string]Device, len(devices)),
	}
	for _, d := range devices {
		if _, ok := f.byID[d.ID()]; ok {
			return nil, errors.New().WithData(ErrDuplicateID, d.ID())
		}
		f.devices = append(f.devices, d)
		f.byID[d.ID()] = d
	}
	return f, nil
}

// Lookup returns the device with the given id.
func (f *Fleet) Lookup(id string) (Device, bool) {
	d, ok := f.byID[id]
	return d, ok
}

// All returns the devices in construction order.
func (f *Fleet) All() []Device {
	out := make([]Device, len(f.devices))
	copy(out, f.devices)
	return out
}

func (f *Fleet) Len() int {
	return len(f.devices)
}

// ConnectAll connects every device and returns how many are connected.
func (f *Fleet) ConnectAll() int {
	n := 0
	for _, d := range f.devices {
		d.Connect()
		if d.IsConnected() {
			n++
		}
	}
	return n
}
