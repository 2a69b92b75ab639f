package bytecode

import "fmt"

// ObjType tags the payload a heap Obj carries.
type ObjType int

const (
	ObjString ObjType = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
)

// Obj is the header every heap-allocated value shares, the same shape
// chazu-maggie's vm/object.go gives its own Object: a type tag, a mark
// bit for the collector, and a next pointer threading every live object
// into one intrusive allocation list. Where maggie dispatches on a vtable
// of slots, wisp dispatches on a typed payload field — Lox's object kinds
// are fixed and small, so a sealed set of payload structs is simpler and
// safer than maggie's generic slot array plus unsafe.Pointer conversions.
type Obj struct {
	Type     ObjType
	IsMarked bool
	Next     *Obj

	payload any
}

func (o *Obj) String() string {
	switch o.Type {
	case ObjString:
		return o.AsString().Chars
	case ObjFunction:
		f := o.AsFunction()
		if f.Name == "" {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", f.Name)
	case ObjNative:
		return "<native fn>"
	case ObjClosure:
		return o.AsClosure().Function.AsFunction().stringName()
	case ObjUpvalue:
		return "<upvalue>"
	case ObjClass:
		return o.AsClass().Name
	case ObjInstance:
		return fmt.Sprintf("%s instance", o.AsInstance().Class.AsClass().Name)
	case ObjBoundMethod:
		return o.AsBoundMethod().Method.AsClosure().Function.AsFunction().stringName()
	}
	return "<object>"
}

func (f *FunctionData) stringName() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// StringData is an interned, immutable Lox string.
type StringData struct {
	Chars string
	Hash  uint32
}

func (o *Obj) AsString() *StringData { return o.payload.(*StringData) }

func NewStringObj(s string, hash uint32) *Obj {
	return &Obj{Type: ObjString, payload: &StringData{Chars: s, Hash: hash}}
}

// FunctionData is a compiled function body: its own chunk, arity, and the
// name it was declared under (empty for the implicit top-level script).
type FunctionData struct {
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         string
}

func (o *Obj) AsFunction() *FunctionData { return o.payload.(*FunctionData) }

func NewFunctionObj() *Obj {
	return &Obj{Type: ObjFunction, payload: &FunctionData{Chunk: NewChunk()}}
}

// NativeFn is the signature every host-registered builtin implements.
type NativeFn func(args []Value) (Value, error)

type NativeData struct {
	Name string
	Fn   NativeFn
}

func (o *Obj) AsNative() *NativeData { return o.payload.(*NativeData) }

func NewNativeObj(name string, fn NativeFn) *Obj {
	return &Obj{Type: ObjNative, payload: &NativeData{Name: name, Fn: fn}}
}

// ClosureData pairs a function with the upvalues it captured at creation.
type ClosureData struct {
	Function *Obj
	Upvalues []*Obj
}

func (o *Obj) AsClosure() *ClosureData { return o.payload.(*ClosureData) }

func NewClosureObj(fn *Obj) *Obj {
	fd := fn.AsFunction()
	return &Obj{Type: ObjClosure, payload: &ClosureData{
		Function: fn,
		Upvalues: make([]*Obj, fd.UpvalueCount),
	}}
}

// UpvalueData is a cell referring to either a live stack slot (open) or a
// value it has copied out of the stack once that frame popped (closed).
type UpvalueData struct {
	Location *Value // points into the VM's value stack while open
	Slot     int    // stack index Location refers to, while open
	Closed   Value  // holds the value once closed
	Next     *Obj   // next node in the VM's open-upvalues list, by descending stack address
}

func (o *Obj) AsUpvalue() *UpvalueData { return o.payload.(*UpvalueData) }

func NewUpvalueObj(slot *Value, index int) *Obj {
	return &Obj{Type: ObjUpvalue, payload: &UpvalueData{Location: slot, Slot: index}}
}

// ClassData is a named bag of methods. wisp drops inheritance from the
// language surface, so there is no superclass pointer here —
// Inherit/GetSuper opcodes exist in the instruction set but the
// compiler never emits them.
type ClassData struct {
	Name    string
	Methods *Table
}

func (o *Obj) AsClass() *ClassData { return o.payload.(*ClassData) }

func NewClassObj(name string) *Obj {
	return &Obj{Type: ObjClass, payload: &ClassData{Name: name, Methods: NewTable()}}
}

// InstanceData is a class instance's own field table plus a back-pointer
// to its class's Obj header — not just the bare *ClassData payload — so
// the collector can mark the owning class reachable from a live instance.
type InstanceData struct {
	Class  *Obj
	Fields *Table
}

func (o *Obj) AsInstance() *InstanceData { return o.payload.(*InstanceData) }

func NewInstanceObj(class *Obj) *Obj {
	return &Obj{Type: ObjInstance, payload: &InstanceData{Class: class, Fields: NewTable()}}
}

// BoundMethodData pairs a receiver with the closure looked up on it, so
// that `obj.method` can be passed around as a first-class value.
type BoundMethodData struct {
	Receiver Value
	Method   *Obj
}

func (o *Obj) AsBoundMethod() *BoundMethodData { return o.payload.(*BoundMethodData) }

func NewBoundMethodObj(receiver Value, method *Obj) *Obj {
	return &Obj{Type: ObjBoundMethod, payload: &BoundMethodData{Receiver: receiver, Method: method}}
}
