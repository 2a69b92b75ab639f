package bytecode

// Intern returns the canonical *Obj for chars, allocating and registering
// a new one in table the first time it is seen. The compiler and the VM
// are handed the same table so that identifier names and string literals
// compiled at different times still compare equal by identity at
// runtime — a weak string-interning table, same as clox's.
func Intern(table *Table, chars string) *Obj {
	hash := HashString(chars)
	if existing := table.FindString(chars, hash); existing != nil {
		return existing
	}
	obj := NewStringObj(chars, hash)
	table.Set(obj, Nil)
	return obj
}
