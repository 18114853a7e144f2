package analytics

import "strconv"

// Kind discriminates the payload of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "none"
	}
}

// Value is the reading extracted from an update: an integer percentage, a
// floating point temperature, or nothing.
type Value struct {
	kind Kind
	i    int
	f    float64
}

func None() Value            { return Value{} }
func Int(v int) Value        { return Value{kind: KindInt, i: v} }
func Float(v float64) Value  { return Value{kind: KindFloat, f: v} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) AsInt() (int, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', 2, 64)
	default:
		return "null"
	}
}
