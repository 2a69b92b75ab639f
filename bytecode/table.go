package bytecode

import "hash/fnv"

// Table is an open-addressing hash table with linear probing and
// tombstone deletion, keyed by interned string Objs. No Go repo in the
// retrieval pack implements this shape (the pack's own interpreters lean
// on Go's builtin map for the same job); it is grounded instead on
// original_source/table.c's findEntry/adjustCapacity/tableSet/tableDelete:
// a minimum capacity of 8, growth by doubling once load crosses 75%, and
// tombstones (empty key, non-nil value) that keep count stable across
// delete so the resize-growth math stays correct.
type Table struct {
	count    int // live entries + tombstones
	entries  []entry
}

type entry struct {
	key   *Obj // nil for both an empty slot and a tombstone; see taken
	value Value
	taken bool // distinguishes a tombstone (taken, key==nil) from never-used
}

const tableMinCapacity = 8
const tableMaxLoad = 0.75

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Count() int { return t.count }

func HashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (t *Table) findEntry(entries []entry, key *Obj) int {
	cap := len(entries)
	index := key.AsString().Hash % uint32(cap)
	var tombstone = -1
	for {
		e := &entries[index]
		if e.key == nil {
			if !e.taken {
				if tombstone != -1 {
					return tombstone
				}
				return int(index)
			}
			if tombstone == -1 {
				tombstone = int(index)
			}
		} else if e.key == key || e.key.AsString().Chars == key.AsString().Chars {
			return int(index)
		}
		index = (index + 1) % uint32(cap)
	}
}

func (t *Table) adjustCapacity(newCap int) {
	newEntries := make([]entry, newCap)
	liveCount := 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		dest := t.findEntry(newEntries, e.key)
		newEntries[dest] = entry{key: e.key, value: e.value, taken: true}
		liveCount++
	}
	t.entries = newEntries
	t.count = liveCount
}

// Get returns the value stored for key, if present.
func (t *Table) Get(key *Obj) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return Nil, false
	}
	return e.value, true
}

// Set stores value for key, growing the table first if needed. It
// returns true if this created a brand new key.
func (t *Table) Set(key *Obj, value Value) bool {
	if len(t.entries) == 0 || float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		newCap := tableMinCapacity
		if len(t.entries) > 0 {
			newCap = len(t.entries) * 2
		}
		t.adjustCapacity(newCap)
	}
	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	isNew := e.key == nil
	if isNew && !e.taken {
		t.count++
	}
	e.key = key
	e.value = value
	e.taken = true
	return isNew
}

// Delete removes key, leaving a tombstone in its slot so later probes
// keep working. Count is left unchanged, per the tombstone invariant.
func (t *Table) Delete(key *Obj) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findEntry(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = Bool_(true) // tombstone marker value, per the reference table's convention
	e.taken = true
	return true
}

// FindString looks up an interned string by its raw characters and hash,
// without requiring an already-interned *Obj key — used by the VM's
// string interner to check "do we already have this string" before
// allocating a new Obj for it.
func (t *Table) FindString(chars string, hash uint32) *Obj {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	index := hash % uint32(cap)
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.taken {
				return nil
			}
		} else if e.key.AsString().Hash == hash && e.key.AsString().Chars == chars {
			return e.key
		}
		index = (index + 1) % uint32(cap)
	}
}

// ForEach walks every live entry, the same style chazu-maggie's
// registry tables use for globals/class-method dumps.
func (t *Table) ForEach(fn func(key *Obj, value Value)) {
	for _, e := range t.entries {
		if e.key != nil {
			fn(e.key, e.value)
		}
	}
}

// RemoveWhite drops every entry whose key is not marked, per
// table.c's tableRemoveWhite: called on the string-intern table before
// a sweep so an interned string with no other reachable reference
// doesn't keep it alive forever.
func (t *Table) RemoveWhite() {
	for _, e := range t.entries {
		if e.key != nil && !e.key.IsMarked {
			t.Delete(e.key)
		}
	}
}
