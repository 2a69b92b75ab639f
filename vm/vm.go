// Package vm implements the stack-based bytecode interpreter: call
// frames, the value stack, closures, classes/instances, and the
// mark-sweep collector in gc.go. The for(;;) { read opcode; switch }
// dispatch loop and the flat value-stack-slot addressing are grounded on
// the same general shape chazu-maggie's vm/vm.go and pkg/bytecode/vm.go
// both use for their own interpreters, adapted from selector dispatch
// (maggie) and string-only values (pkg/bytecode) to Lox's tagged Value
// and method-table class model.
package vm

import (
	"fmt"
	"io"

	"github.com/chazu/wisp/bytecode"
	"github.com/chazu/wisp/compiler"
	"github.com/chazu/wisp/internal/config"
)

const uint8Count = 256

// InterpretResult reports how a top-level Interpret call finished.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM is one interpreter instance: its own heap, globals, and value
// stack. Nothing here is shared across instances, so multiple VMs can
// run side by side without synchronization — wisp has no concurrency
// primitives, so a single VM never needs to be made thread-safe either.
type VM struct {
	stack    []bytecode.Value
	stackTop int

	frames []CallFrame

	objects        *bytecode.Obj
	grayStack      []*bytecode.Obj
	bytesAllocated int
	nextGC         int

	globals      *bytecode.Table
	strings      *bytecode.Table
	openUpvalues *bytecode.Obj

	initString *bytecode.Obj

	config *config.Config
	stdout io.Writer
	stderr io.Writer
}

// New creates a VM ready to Interpret scripts. stdout receives `print`
// output; stderr receives runtime error traces.
func New(cfg *config.Config, stdout, stderr io.Writer) *VM {
	if cfg == nil {
		cfg = config.Default()
	}
	vm := &VM{
		stack:   make([]bytecode.Value, cfg.FramesMax*uint8Count),
		frames:  make([]CallFrame, 0, cfg.FramesMax),
		globals: bytecode.NewTable(),
		strings: bytecode.NewTable(),
		config:  cfg,
		stdout:  stdout,
		stderr:  stderr,
		nextGC:  cfg.InitialGCThreshold,
	}
	vm.initString = vm.internString("init")
	return vm
}

// DefineNative registers a host function as a global callable under name.
func (vm *VM) DefineNative(name string, fn bytecode.NativeFn) {
	nameObj := vm.internString(name)
	native := vm.track(bytecode.NewNativeObj(name, fn))
	vm.globals.Set(nameObj, bytecode.FromObj(native))
}

func (vm *VM) internString(s string) *bytecode.Obj {
	hash := bytecode.HashString(s)
	if existing := vm.strings.FindString(s, hash); existing != nil {
		return existing
	}
	obj := vm.track(bytecode.NewStringObj(s, hash))
	vm.strings.Set(obj, bytecode.Nil)
	return obj
}

// Interpret compiles and runs source, writing any output to vm's
// configured writers as it goes.
func (vm *VM) Interpret(source string) (InterpretResult, error) {
	fn, errs := compiler.Compile(source, vm.strings)
	if fn == nil {
		for _, e := range errs {
			fmt.Fprintln(vm.stderr, e)
		}
		return InterpretCompileError, errs[0]
	}

	fnObj := vm.track(fn)
	closure := vm.track(bytecode.NewClosureObj(fnObj))

	vm.push(bytecode.FromObj(closure))
	if err := vm.call(closure, 0); err != nil {
		fmt.Fprintln(vm.stderr, err)
		return InterpretRuntimeError, err
	}

	if err := vm.run(); err != nil {
		fmt.Fprintln(vm.stderr, err)
		return InterpretRuntimeError, err
	}
	return InterpretOK, nil
}

func (vm *VM) push(v bytecode.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() bytecode.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) bytecode.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	trace := make([]TraceFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		line := 0
		if f.IP-1 >= 0 && f.IP-1 < len(f.chunk().Lines) {
			line = f.chunk().Lines[f.IP-1]
		}
		trace = append(trace, TraceFrame{Line: line, Name: f.function().Name})
	}
	vm.stackTop = 0
	vm.frames = vm.frames[:0]
	return &RuntimeError{Message: msg, Trace: trace}
}
