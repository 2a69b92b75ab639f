package vm

import (
	"fmt"

	"github.com/chazu/wisp/bytecode"
)

// run is the dispatch loop: read one opcode, act on it, repeat. The
// for(;;) { switch op } shape and slot-addressed locals/globals are
// grounded on pkg/bytecode/vm.go's own run loop (see that file's OpConst/
// OpPop handling), generalized from its flat string-only stack to wisp's
// tagged Value and from its single flat frame to a real call-frame stack.
func (vm *VM) run() error {
	for {
		frame := vm.currentFrame()
		chunk := frame.chunk()

		if frame.IP >= len(chunk.Code) {
			return vm.runtimeError("ran off the end of a chunk")
		}
		op := bytecode.Opcode(chunk.Code[frame.IP])
		frame.IP++

		switch op {
		case bytecode.OpConstant:
			idx := vm.readByte(frame)
			vm.push(chunk.Constants[idx])

		case bytecode.OpNil:
			vm.push(bytecode.Nil)
		case bytecode.OpTrue:
			vm.push(bytecode.Bool_(true))
		case bytecode.OpFalse:
			vm.push(bytecode.Bool_(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.Slots+int(slot)])
		case bytecode.OpSetLocal:
			slot := vm.readByte(frame)
			vm.stack[frame.Slots+int(slot)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := chunk.Constants[vm.readByte(frame)].Obj
			val, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.AsString().Chars)
			}
			vm.push(val)
		case bytecode.OpDefineGlobal:
			name := chunk.Constants[vm.readByte(frame)].Obj
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := chunk.Constants[vm.readByte(frame)].Obj
			if isNew := vm.globals.Set(name, vm.peek(0)); isNew {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.AsString().Chars)
			}

		case bytecode.OpGetUpvalue:
			idx := vm.readByte(frame)
			vm.push(*frame.Closure.AsClosure().Upvalues[idx].AsUpvalue().Location)
		case bytecode.OpSetUpvalue:
			idx := vm.readByte(frame)
			*frame.Closure.AsClosure().Upvalues[idx].AsUpvalue().Location = vm.peek(0)

		case bytecode.OpGetProperty:
			if !vm.peek(0).IsObjType(bytecode.ObjInstance) {
				return vm.runtimeError("Only instances have properties.")
			}
			inst := vm.peek(0).Obj.AsInstance()
			name := chunk.Constants[vm.readByte(frame)].Obj
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			bound, err := vm.bindMethod(inst.Class, name)
			if err != nil {
				return err
			}
			vm.pop()
			vm.push(bound)
		case bytecode.OpSetProperty:
			if !vm.peek(1).IsObjType(bytecode.ObjInstance) {
				return vm.runtimeError("Only instances have fields.")
			}
			inst := vm.peek(1).Obj.AsInstance()
			name := chunk.Constants[vm.readByte(frame)].Obj
			inst.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)
		case bytecode.OpGetSuper:
			// unreachable: the compiler never emits OP_GET_SUPER because
			// wisp classes don't support inheritance.
			return vm.runtimeError("super is not supported")

		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(bytecode.Bool_(a.Equal(b)))
		case bytecode.OpGreater:
			if err := vm.numericBinary(func(a, b float64) bytecode.Value { return bytecode.Bool_(a > b) }); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.numericBinary(func(a, b float64) bytecode.Value { return bytecode.Bool_(a < b) }); err != nil {
				return err
			}
		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OpSubtract:
			if err := vm.numericBinary(func(a, b float64) bytecode.Value { return bytecode.Number(a - b) }); err != nil {
				return err
			}
		case bytecode.OpMultiply:
			if err := vm.numericBinary(func(a, b float64) bytecode.Value { return bytecode.Number(a * b) }); err != nil {
				return err
			}
		case bytecode.OpDivide:
			if err := vm.numericBinary(func(a, b float64) bytecode.Value { return bytecode.Number(a / b) }); err != nil {
				return err
			}
		case bytecode.OpNot:
			vm.push(bytecode.Bool_(!vm.pop().IsTruthy()))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(bytecode.Number(-vm.pop().Number))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case bytecode.OpJump:
			offset := vm.readShort(frame)
			frame.IP += offset
		case bytecode.OpJumpIfFalse:
			offset := vm.readShort(frame)
			if !vm.peek(0).IsTruthy() {
				frame.IP += offset
			}
		case bytecode.OpLoop:
			offset := vm.readShort(frame)
			frame.IP -= offset

		case bytecode.OpCall:
			argCount := int(vm.readByte(frame))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
		case bytecode.OpInvoke:
			name := chunk.Constants[vm.readByte(frame)].Obj
			argCount := int(vm.readByte(frame))
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
		case bytecode.OpSuperInvoke:
			return vm.runtimeError("super is not supported")

		case bytecode.OpClosure:
			fn := chunk.Constants[vm.readByte(frame)].Obj
			closure := vm.track(bytecode.NewClosureObj(fn))
			cd := closure.AsClosure()
			for i := range cd.Upvalues {
				isLocal := vm.readByte(frame)
				index := int(vm.readByte(frame))
				if isLocal != 0 {
					cd.Upvalues[i] = vm.captureUpvalue(frame.Slots + index)
				} else {
					cd.Upvalues[i] = frame.Closure.AsClosure().Upvalues[index]
				}
			}
			vm.push(bytecode.FromObj(closure))
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			closingSlot := frame.Slots
			vm.closeUpvalues(closingSlot)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = closingSlot
			vm.push(result)

		case bytecode.OpClass:
			name := chunk.Constants[vm.readByte(frame)].Obj
			vm.push(bytecode.FromObj(vm.track(bytecode.NewClassObj(name.AsString().Chars))))
		case bytecode.OpInherit:
			return vm.runtimeError("inheritance is not supported")
		case bytecode.OpMethod:
			name := chunk.Constants[vm.readByte(frame)].Obj
			vm.defineMethod(name)

		default:
			return vm.runtimeError("unknown opcode 0x%02X", byte(op))
		}
	}
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.chunk().Code[frame.IP]
	frame.IP++
	return b
}

func (vm *VM) readShort(frame *CallFrame) int {
	hi := vm.readByte(frame)
	lo := vm.readByte(frame)
	return int(hi)<<8 | int(lo)
}

func (vm *VM) numericBinary(op func(a, b float64) bytecode.Value) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().Number
	a := vm.pop().Number
	vm.push(op(a, b))
	return nil
}

func (vm *VM) add() error {
	if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
		b := vm.pop().Number
		a := vm.pop().Number
		vm.push(bytecode.Number(a + b))
		return nil
	}
	if vm.peek(0).IsObjType(bytecode.ObjString) && vm.peek(1).IsObjType(bytecode.ObjString) {
		b := vm.pop().Obj.AsString().Chars
		a := vm.pop().Obj.AsString().Chars
		vm.push(bytecode.FromObj(vm.internString(a + b)))
		return nil
	}
	return vm.runtimeError("Operands must be two numbers or two strings.")
}
