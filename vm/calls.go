package vm

import "github.com/chazu/wisp/bytecode"

// call pushes a new CallFrame for closure, checking arity and the frame
// depth limit.
func (vm *VM) call(closure *bytecode.Obj, argCount int) error {
	fn := closure.AsClosure().Function.AsFunction()
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(vm.frames) >= vm.config.FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{
		Closure: closure,
		IP:      0,
		Slots:   vm.stackTop - argCount - 1,
	})
	return nil
}

// callValue dispatches OP_CALL against whatever kind of callee is on the
// stack: a closure, a native, a class (construction), or a bound method.
func (vm *VM) callValue(callee bytecode.Value, argCount int) error {
	if callee.IsObj() {
		switch callee.Obj.Type {
		case bytecode.ObjClosure:
			return vm.call(callee.Obj, argCount)
		case bytecode.ObjNative:
			return vm.callNative(callee.Obj, argCount)
		case bytecode.ObjClass:
			return vm.instantiate(callee.Obj, argCount)
		case bytecode.ObjBoundMethod:
			bm := callee.Obj.AsBoundMethod()
			vm.stack[vm.stackTop-argCount-1] = bm.Receiver
			return vm.call(bm.Method, argCount)
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) callNative(native *bytecode.Obj, argCount int) error {
	nd := native.AsNative()
	args := make([]bytecode.Value, argCount)
	copy(args, vm.stack[vm.stackTop-argCount:vm.stackTop])
	result, err := nd.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stackTop -= argCount + 1
	vm.push(result)
	return nil
}

// instantiate implements calling a class value as a constructor: a fresh
// instance replaces the class on the stack, and `init` (if defined) runs
// against it with the call's arguments.
func (vm *VM) instantiate(class *bytecode.Obj, argCount int) error {
	cd := class.AsClass()
	instance := vm.track(bytecode.NewInstanceObj(class))
	vm.stack[vm.stackTop-argCount-1] = bytecode.FromObj(instance)

	if initializer, ok := cd.Methods.Get(vm.initString); ok {
		return vm.call(initializer.Obj, argCount)
	}
	if argCount != 0 {
		return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
	}
	return nil
}

// invoke fuses OP_GET_PROPERTY and OP_CALL for the common `receiver.method(args)`
// shape, avoiding an intermediate bound-method allocation.
func (vm *VM) invoke(name *bytecode.Obj, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsObjType(bytecode.ObjInstance) {
		return vm.runtimeError("Only instances have methods.")
	}
	inst := receiver.Obj.AsInstance()

	if field, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}

	method, ok := inst.Class.AsClass().Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.AsString().Chars)
	}
	return vm.call(method.Obj, argCount)
}

func (vm *VM) bindMethod(class *bytecode.Obj, name *bytecode.Obj) (bytecode.Value, error) {
	method, ok := class.AsClass().Methods.Get(name)
	if !ok {
		return bytecode.Nil, vm.runtimeError("Undefined property '%s'.", name.AsString().Chars)
	}
	bound := vm.track(bytecode.NewBoundMethodObj(vm.peek(0), method.Obj))
	return bytecode.FromObj(bound), nil
}

func (vm *VM) defineMethod(name *bytecode.Obj) {
	method := vm.peek(0)
	class := vm.peek(1).Obj.AsClass()
	class.Methods.Set(name, method)
	vm.pop()
}

// captureUpvalue finds or creates the open upvalue for a stack slot,
// keeping the open-upvalues list sorted by descending stack address so
// closeUpvalues can stop at the first location above the closing frame.
func (vm *VM) captureUpvalue(local int) *bytecode.Obj {
	var prev *bytecode.Obj
	cur := vm.openUpvalues
	for cur != nil && cur.AsUpvalue().Slot > local {
		prev = cur
		cur = cur.AsUpvalue().Next
	}
	if cur != nil && cur.AsUpvalue().Slot == local {
		return cur
	}

	created := vm.track(bytecode.NewUpvalueObj(&vm.stack[local], local))
	created.AsUpvalue().Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.AsUpvalue().Next = created
	}
	return created
}

// closeUpvalues copies out and detaches every open upvalue at or above
// the given stack slot, turning it from a live stack pointer into a
// self-contained closed value.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.AsUpvalue().Slot >= last {
		uv := vm.openUpvalues.AsUpvalue()
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.Next
	}
}
