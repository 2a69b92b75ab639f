package bytecode

import "testing"

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil, false},
		{Bool_(false), false},
		{Bool_(true), true},
		{Number(0), true}, // zero is truthy, not falsy
		{Number(1), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestValueEquality(t *testing.T) {
	if !Number(1).Equal(Number(1)) {
		t.Errorf("expected equal numbers to be Equal")
	}
	if Number(1).Equal(Bool_(true)) {
		t.Errorf("expected different types to never be Equal")
	}
	if !Nil.Equal(Nil) {
		t.Errorf("expected nil to equal nil")
	}
}

func TestFormatNumber(t *testing.T) {
	if got := Number(3).String(); got != "3" {
		t.Errorf("Number(3).String() = %q, want %q", got, "3")
	}
	if got := Number(1.5).String(); got != "1.5" {
		t.Errorf("Number(1.5).String() = %q, want %q", got, "1.5")
	}
}
