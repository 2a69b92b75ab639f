package bytecode

import "testing"

func TestTableSetGetDelete(t *testing.T) {
	strs := NewTable()
	tbl := NewTable()
	foo := Intern(strs, "foo")
	bar := Intern(strs, "bar")

	if isNew := tbl.Set(foo, Number(1)); !isNew {
		t.Fatalf("expected Set of a fresh key to report isNew")
	}
	if isNew := tbl.Set(foo, Number(2)); isNew {
		t.Fatalf("expected Set of an existing key to report !isNew")
	}

	v, ok := tbl.Get(foo)
	if !ok || v.Number != 2 {
		t.Fatalf("Get(foo) = %v, %v; want 2, true", v, ok)
	}

	if _, ok := tbl.Get(bar); ok {
		t.Fatalf("expected bar to be absent")
	}

	if !tbl.Delete(foo) {
		t.Fatalf("expected Delete(foo) to succeed")
	}
	if _, ok := tbl.Get(foo); ok {
		t.Fatalf("expected foo to be gone after Delete")
	}
}

func TestTableGrowsAndKeepsAllEntries(t *testing.T) {
	tbl := NewTable()
	const n = 200
	keys := make([]*Obj, n)
	for i := 0; i < n; i++ {
		keys[i] = Intern(tbl, string(rune('a'))+itoa(i))
		tbl.Set(keys[i], Number(float64(i)))
	}
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(keys[i])
		if !ok || v.Number != float64(i) {
			t.Fatalf("entry %d lost after growth: got %v, %v", i, v, ok)
		}
	}
}

func TestFindStringMatchesByContent(t *testing.T) {
	tbl := NewTable()
	obj := Intern(tbl, "shared")
	found := tbl.FindString("shared", HashString("shared"))
	if found != obj {
		t.Fatalf("FindString did not return the interned object")
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
