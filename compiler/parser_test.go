package compiler

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/wisp/bytecode"
)

func compileOrFail(t *testing.T, src string) *bytecode.Obj {
	t.Helper()
	fn, errs := Compile(src, bytecode.NewTable())
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	return fn
}

func opcodes(chunk *bytecode.Chunk) []bytecode.Opcode {
	var ops []bytecode.Opcode
	i := 0
	for i < len(chunk.Code) {
		op := bytecode.Opcode(chunk.Code[i])
		ops = append(ops, op)
		i += 1 + op.OperandBytes()
	}
	return ops
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn := compileOrFail(t, "1 + 2 * 3;")
	ops := opcodes(fn.AsFunction().Chunk)
	want := []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpConstant, bytecode.OpConstant,
		bytecode.OpMultiply, bytecode.OpAdd, bytecode.OpPop,
		bytecode.OpNil, bytecode.OpReturn,
	}
	assertOps(t, ops, want)
}

func TestCompileVarAndPrint(t *testing.T) {
	fn := compileOrFail(t, "var x = 5; print x;")
	ops := opcodes(fn.AsFunction().Chunk)
	want := []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpDefineGlobal,
		bytecode.OpGetGlobal, bytecode.OpPrint,
		bytecode.OpNil, bytecode.OpReturn,
	}
	assertOps(t, ops, want)
}

func TestCompileIfElse(t *testing.T) {
	fn := compileOrFail(t, "if (true) { 1; } else { 2; }")
	ops := opcodes(fn.AsFunction().Chunk)
	want := []bytecode.Opcode{
		bytecode.OpTrue, bytecode.OpJumpIfFalse, bytecode.OpPop,
		bytecode.OpConstant, bytecode.OpPop, bytecode.OpJump,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpPop,
		bytecode.OpNil, bytecode.OpReturn,
	}
	assertOps(t, ops, want)
}

func TestCompileFunctionClosesOverLocal(t *testing.T) {
	fn := compileOrFail(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	scriptChunk := fn.AsFunction().Chunk
	if len(scriptChunk.Code) == 0 || bytecode.Opcode(scriptChunk.Code[0]) != bytecode.OpClosure {
		t.Fatalf("expected the script body to start with OP_CLOSURE for outer(), got code %v", scriptChunk.Code)
	}

	var outerFn *bytecode.FunctionData
	for _, c := range scriptChunk.Constants {
		if c.IsObjType(bytecode.ObjFunction) && c.Obj.AsFunction().Name == "outer" {
			outerFn = c.Obj.AsFunction()
		}
	}
	if outerFn == nil {
		t.Fatalf("expected the script's constant pool to contain the outer() function")
	}

	var innerFn *bytecode.FunctionData
	for _, c := range outerFn.Chunk.Constants {
		if c.IsObjType(bytecode.ObjFunction) && c.Obj.AsFunction().Name == "inner" {
			innerFn = c.Obj.AsFunction()
		}
	}
	if innerFn == nil {
		t.Fatalf("expected outer()'s constant pool to contain the inner() function")
	}
	if innerFn.UpvalueCount != 1 {
		t.Fatalf("expected inner() to capture exactly one upvalue, got %d", innerFn.UpvalueCount)
	}
	innerOps := opcodes(innerFn.Chunk)
	if len(innerOps) == 0 || innerOps[0] != bytecode.OpGetUpvalue {
		t.Fatalf("expected inner()'s body to read its upvalue first, got %v", innerOps)
	}
}

func TestCompileReportsSyntaxError(t *testing.T) {
	_, errs := Compile("var = 1;", bytecode.NewTable())
	if len(errs) == 0 {
		t.Fatalf("expected a compile error for a missing identifier")
	}
}

func TestCompileSuperIsRejected(t *testing.T) {
	_, errs := Compile("class A { f() { super.f(); } }", bytecode.NewTable())
	if len(errs) == 0 {
		t.Fatalf("expected an error: wisp classes do not support inheritance")
	}
}

func assertOps(t *testing.T, got, want []bytecode.Opcode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d opcodes %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

// chunkFixture is a summary of a compiled chunk (its opcode names and
// constant count), round tripped through CBOR to check that encoding and
// decoding preserve it — test-fixture serialization via fxamacker/cbor/v2, per
// SPEC_FULL.md's ambient test-tooling section.
type chunkFixture struct {
	OpcodeNames []string `cbor:"ops"`
	NumConstants int     `cbor:"num_constants"`
}

func TestChunkFixtureRoundTrip(t *testing.T) {
	fn := compileOrFail(t, `var x = 1; print x + 1;`)
	chunk := fn.AsFunction().Chunk

	var names []string
	for _, op := range opcodes(chunk) {
		names = append(names, op.String())
	}
	fixture := chunkFixture{OpcodeNames: names, NumConstants: len(chunk.Constants)}

	encoded, err := cbor.Marshal(fixture)
	if err != nil {
		t.Fatalf("cbor.Marshal: %v", err)
	}
	var decoded chunkFixture
	if err := cbor.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	if len(decoded.OpcodeNames) != len(fixture.OpcodeNames) {
		t.Fatalf("round-tripped fixture lost opcodes: got %v, want %v", decoded.OpcodeNames, fixture.OpcodeNames)
	}
	if decoded.NumConstants != fixture.NumConstants {
		t.Fatalf("round-tripped fixture lost constant count: got %d, want %d", decoded.NumConstants, fixture.NumConstants)
	}
}
