package device

// Type tags a device variant. It is immutable for the lifetime of a device.
type Type string

const (
	TypeBulb       Type = "BULB"
	TypeThermostat Type = "THERMOSTAT"
	TypeCamera     Type = "CAMERA"
)

// Device is a simulated smart device. All state changes other than Connect go
// through Execute. Implementations are safe for concurrent use.
type Device interface {
	ID() string
	Name() string
	Location() string
	Type() Type

	// Connect marks the device active. It is idempotent.
	Connect()
	IsConnected() bool

	// Snapshot returns the current state as a raw update record.
	Snapshot() Update

	// Execute applies cmd and reports whether it was applied. Commands that do
	// not belong to the device's variant are rejected.
	Execute(cmd Command) bool
}
