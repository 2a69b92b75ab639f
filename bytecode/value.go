package bytecode

import "fmt"

// ValueType tags the payload carried by a Value. Rather than the NaN-boxed
// uint64 encoding the pack's interpreters favor, wisp keeps the tag
// explicit: a plain tagged struct gives the same semantics without the
// unsafe-pointer arithmetic a boxed encoding would need to get right.
type ValueType int

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the universal runtime value: a nil, a bool, a float64 number,
// or a pointer to a heap-allocated Obj.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Obj    *Obj
}

var Nil = Value{Type: ValNil}

func Bool_(b bool) Value    { return Value{Type: ValBool, Bool: b} }
func Number(n float64) Value { return Value{Type: ValNumber, Number: n} }
func FromObj(o *Obj) Value  { return Value{Type: ValObj, Obj: o} }

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) IsObjType(t ObjType) bool {
	return v.Type == ValObj && v.Obj.Type == t
}

// IsTruthy implements Lox's truthiness: only nil and false are falsy.
// A literal zero is truthy, matching the language's usual semantics.
func (v Value) IsTruthy() bool {
	switch v.Type {
	case ValNil:
		return false
	case ValBool:
		return v.Bool
	default:
		return true
	}
}

func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return v.Bool == other.Bool
	case ValNumber:
		return v.Number == other.Number
	case ValObj:
		return v.Obj == other.Obj
	}
	return false
}

func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.Number)
	case ValObj:
		return v.Obj.String()
	}
	return "<invalid value>"
}

// formatNumber renders a float64 with Go's %g verb, without pulling in a
// locale-aware formatting package: wisp needs locale-independent output,
// which is exactly what fmt already guarantees and a locale-aware library
// would not. Go's %g prints the shortest digits that round-trip, so unlike
// C's printf("%g") it is not limited to six significant digits.
func formatNumber(n float64) string {
	return fmt.Sprintf("%g", n)
}
