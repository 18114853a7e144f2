package device

import (
	"bytes"
	"encoding/json"
)

// Field is one named value of an update record.
type Field struct {
	Key   string
	Value any
}

// Update is a raw device update record: an ordered list of named fields.
// It marshals to a JSON object with keys in insertion order.
type Update []Field

// Get returns the value stored under key.
func (u Update) Get(key string) (any, bool) {
	for _, f := range u {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Str returns the value under key if it is a string.
func (u Update) Str(key string) string {
	v, _ := u.Get(key)
	s, _ := v.(string)
	return s
}

// With returns a copy of u with key set to value. An existing key keeps its
// position; a new key is appended.
func (u Update) With(key string, value any) Update {
	out := make(Update, len(u), len(u)+1)
	copy(out, u)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Key: key, Value: value})
}

// DeviceID returns the device_id field.
func (u Update) DeviceID() string {
	return u.Str(FieldDeviceID)
}

// DeviceType returns the device_type field.
func (u Update) DeviceType() Type {
	v, _ := u.Get(FieldDeviceType)
	switch t := v.(type) {
	case Type:
		return t
	case string:
		return Type(t)
	default:
		return ""
	}
}

func (u Update) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range u {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Field names shared by every update record.
const (
	FieldDeviceID   = "device_id"
	FieldName       = "name"
	FieldLocation   = "location"
	FieldDeviceType = "device_type"
	FieldConnected  = "connected"
	FieldTimestamp  = "timestamp"
)

// Variant field names.
const (
	FieldIsOn           = "is_on"
	FieldBrightness     = "brightness"
	FieldCurrentTemp    = "current_temp"
	FieldTargetTemp     = "target_temp"
	FieldHumidity       = "humidity"
	FieldMotionDetected = "motion_detected"
	FieldBatteryLevel   = "battery_level"
	FieldLastSnapshot   = "last_snapshot"
)
