package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/wisp/bytecode"
	"github.com/chazu/wisp/internal/config"
)

func runScript(t *testing.T, src string) (stdout, stderr string, result InterpretResult) {
	t.Helper()
	var out, errBuf bytes.Buffer
	machine := New(config.Default(), &out, &errBuf)
	res, _ := machine.Interpret(src)
	return out.String(), errBuf.String(), res
}

func TestArithmeticAndPrint(t *testing.T) {
	out, _, res := runScript(t, `print 1 + 2 * 3;`)
	if res != InterpretOK {
		t.Fatalf("expected OK, got %v", res)
	}
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("got %q, want 7", out)
	}
}

func TestStringConcatenation(t *testing.T) {
	out, _, _ := runScript(t, `print "foo" + "bar";`)
	if strings.TrimSpace(out) != "foobar" {
		t.Fatalf("got %q, want foobar", out)
	}
}

func TestGlobalAndLocalScoping(t *testing.T) {
	out, _, _ := runScript(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
		print a;
	`)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "local" || lines[1] != "global" {
		t.Fatalf("got %v, want [local global]", lines)
	}
}

func TestClosureCapturesByReference(t *testing.T) {
	out, _, _ := runScript(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("got %v, want %v", lines, want)
		}
	}
}

func TestClassInitAndMethods(t *testing.T) {
	out, _, res := runScript(t, `
		class Counter {
			init(start) {
				this.value = start;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}
		var c = Counter(10);
		print c.increment();
		print c.increment();
	`)
	if res != InterpretOK {
		t.Fatalf("expected OK, got %v", res)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "11" || lines[1] != "12" {
		t.Fatalf("got %v, want [11 12]", lines)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, errOut, res := runScript(t, `print undefined_thing;`)
	if res != InterpretRuntimeError {
		t.Fatalf("expected a runtime error, got %v", res)
	}
	if !strings.Contains(errOut, "Undefined variable") {
		t.Fatalf("got %q", errOut)
	}
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	_, errOut, res := runScript(t, `
		fun a() { b(); }
		fun b() { c(); }
		fun c() { return "x" + 1; }
		a();
	`)
	if res != InterpretRuntimeError {
		t.Fatalf("expected a runtime error, got %v", res)
	}
	for _, want := range []string{"in c()", "in b()", "in a()"} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("expected trace to mention %q, got %q", want, errOut)
		}
	}
}

func TestNativeFunctionRegistration(t *testing.T) {
	var out, errBuf bytes.Buffer
	machine := New(config.Default(), &out, &errBuf)
	machine.DefineNative("double", func(args []bytecode.Value) (bytecode.Value, error) {
		return bytecode.Number(args[0].Number * 2), nil
	})
	if _, err := machine.Interpret(`print double(21);`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "42" {
		t.Fatalf("got %q, want 42", out.String())
	}
}

func TestStressGCDoesNotCorruptState(t *testing.T) {
	cfg := config.Default()
	cfg.StressGC = true
	var out, errBuf bytes.Buffer
	machine := New(cfg, &out, &errBuf)
	res, _ := machine.Interpret(`
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	if res != InterpretOK {
		t.Fatalf("expected OK under stress GC, got %v: %s", res, errBuf.String())
	}
	if strings.TrimSpace(out.String()) != "55" {
		t.Fatalf("got %q, want 55", out.String())
	}
}

// A class with no remaining named reference must stay allocated as long
// as a live instance still points back to it, under a collector that
// runs on every allocation.
func TestStressGCKeepsClassAliveThroughLiveInstance(t *testing.T) {
	cfg := config.Default()
	cfg.StressGC = true
	var out, errBuf bytes.Buffer
	machine := New(cfg, &out, &errBuf)
	res, _ := machine.Interpret(`
		fun makeGreeter() {
			class Greeter {
				init(name) {
					this.name = name;
				}
				greet() {
					return "hi " + this.name;
				}
			}
			return Greeter("wisp");
		}
		var g = makeGreeter();
		print g.greet();
	`)
	if res != InterpretOK {
		t.Fatalf("expected OK, got %v: %s", res, errBuf.String())
	}
	if strings.TrimSpace(out.String()) != "hi wisp" {
		t.Fatalf("got %q, want %q", out.String(), "hi wisp")
	}
}
