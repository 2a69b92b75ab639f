package bytecode

import "fmt"

// Opcode identifies a single bytecode instruction. Values are grouped into
// ranges by category, the same organizing idiom the rest of the pack uses
// for its own instruction sets.
type Opcode byte

const (
	OpConstant Opcode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn

	OpClass
	OpInherit
	OpMethod
)

// OpcodeInfo documents the name and operand width of an opcode,
// mirroring the metadata table the pack keeps alongside its own opcode
// enums for disassembly and validation.
type OpcodeInfo struct {
	Name         string
	OperandBytes int
}

var opcodeInfo = map[Opcode]OpcodeInfo{
	OpConstant:      {"OP_CONSTANT", 1},
	OpNil:           {"OP_NIL", 0},
	OpTrue:          {"OP_TRUE", 0},
	OpFalse:         {"OP_FALSE", 0},
	OpPop:           {"OP_POP", 0},
	OpGetLocal:      {"OP_GET_LOCAL", 1},
	OpSetLocal:      {"OP_SET_LOCAL", 1},
	OpGetGlobal:     {"OP_GET_GLOBAL", 1},
	OpDefineGlobal:  {"OP_DEFINE_GLOBAL", 1},
	OpSetGlobal:     {"OP_SET_GLOBAL", 1},
	OpGetUpvalue:    {"OP_GET_UPVALUE", 1},
	OpSetUpvalue:    {"OP_SET_UPVALUE", 1},
	OpGetProperty:   {"OP_GET_PROPERTY", 1},
	OpSetProperty:   {"OP_SET_PROPERTY", 1},
	OpGetSuper:      {"OP_GET_SUPER", 1},
	OpEqual:         {"OP_EQUAL", 0},
	OpGreater:       {"OP_GREATER", 0},
	OpLess:          {"OP_LESS", 0},
	OpAdd:           {"OP_ADD", 0},
	OpSubtract:      {"OP_SUBTRACT", 0},
	OpMultiply:      {"OP_MULTIPLY", 0},
	OpDivide:        {"OP_DIVIDE", 0},
	OpNot:           {"OP_NOT", 0},
	OpNegate:        {"OP_NEGATE", 0},
	OpPrint:         {"OP_PRINT", 0},
	OpJump:          {"OP_JUMP", 2},
	OpJumpIfFalse:   {"OP_JUMP_IF_FALSE", 2},
	OpLoop:          {"OP_LOOP", 2},
	OpCall:          {"OP_CALL", 1},
	OpInvoke:        {"OP_INVOKE", 2},
	OpSuperInvoke:   {"OP_SUPER_INVOKE", 2},
	OpClosure:       {"OP_CLOSURE", 1},
	OpCloseUpvalue:  {"OP_CLOSE_UPVALUE", 0},
	OpReturn:        {"OP_RETURN", 0},
	OpClass:         {"OP_CLASS", 1},
	OpInherit:       {"OP_INHERIT", 0},
	OpMethod:        {"OP_METHOD", 1},
}

func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeInfo[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("OP_UNKNOWN(0x%02X)", byte(op))}
}

func (op Opcode) String() string { return op.Info().Name }

func (op Opcode) OperandBytes() int { return op.Info().OperandBytes }
