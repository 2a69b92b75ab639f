package vm

import "github.com/chazu/wisp/bytecode"

// CallFrame is one activation record on the VM's call stack: the closure
// being executed, its instruction pointer, and the base slot it occupies
// in the shared value stack. This triple mirrors the CallFrame both
// chazu-maggie's vm/vm.go and milochristiansen-lua's frame bookkeeping
// use for their own register/stack-slot addressing, adapted here to
// Lox's flat value-stack-slot addressing rather than maggie's selector
// dispatch or lua's register file.
type CallFrame struct {
	Closure *bytecode.Obj
	IP      int
	Slots   int // index into vm.stack where this frame's window begins
}

func (f *CallFrame) function() *bytecode.FunctionData {
	return f.Closure.AsClosure().Function.AsFunction()
}

func (f *CallFrame) chunk() *bytecode.Chunk {
	return f.function().Chunk
}
