package vm

import "github.com/chazu/wisp/bytecode"

// Garbage collection is a precise tri-color mark-sweep pass over the
// intrusive singly-linked list every heap Obj is threaded onto at
// allocation time (vm.objects). This departs deliberately from
// chazu-maggie's own VM.CollectGarbage, which walks a map[*Object]struct{}
// keep-alive set built by marking from the stack and globals — a shape
// that doesn't give the O(1)-insertion, stable-identity allocation list
// wisp's object headers need. The mark/gray-worklist/sweep structure
// below is the standard scheme: push reachable objects onto a gray
// worklist, blacken each by marking what it points to, then sweep the
// list of everything still white.

func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.RemoveWhite()
	vm.sweep()
	vm.nextGC = int(float64(vm.bytesAllocated) * vm.config.GCGrowthFactor)
	if vm.nextGC < vm.config.InitialGCThreshold {
		vm.nextGC = vm.config.InitialGCThreshold
	}
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < len(vm.frames); i++ {
		vm.markObject(vm.frames[i].Closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.AsUpvalue().Next {
		vm.markObject(uv)
	}
	vm.markTable(vm.globals)
	if vm.initString != nil {
		vm.markObject(vm.initString)
	}
}

func (vm *VM) markTable(t *bytecode.Table) {
	t.ForEach(func(key *bytecode.Obj, value bytecode.Value) {
		vm.markObject(key)
		vm.markValue(value)
	})
}

func (vm *VM) markValue(v bytecode.Value) {
	if v.IsObj() {
		vm.markObject(v.Obj)
	}
}

func (vm *VM) markObject(o *bytecode.Obj) {
	if o == nil || o.IsMarked {
		return
	}
	o.IsMarked = true
	vm.grayStack = append(vm.grayStack, o)
}

func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		o := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blackenObject(o)
	}
}

func (vm *VM) blackenObject(o *bytecode.Obj) {
	switch o.Type {
	case bytecode.ObjClosure:
		c := o.AsClosure()
		vm.markObject(c.Function)
		for _, uv := range c.Upvalues {
			vm.markObject(uv)
		}
	case bytecode.ObjFunction:
		f := o.AsFunction()
		for _, k := range f.Chunk.Constants {
			vm.markValue(k)
		}
	case bytecode.ObjUpvalue:
		uv := o.AsUpvalue()
		vm.markValue(uv.Closed)
	case bytecode.ObjClass:
		vm.markTable(o.AsClass().Methods)
	case bytecode.ObjInstance:
		inst := o.AsInstance()
		vm.markObject(inst.Class)
		vm.markTable(inst.Fields)
	case bytecode.ObjBoundMethod:
		bm := o.AsBoundMethod()
		vm.markValue(bm.Receiver)
		vm.markObject(bm.Method)
	}
}

func (vm *VM) sweep() {
	var previous *bytecode.Obj
	obj := vm.objects
	for obj != nil {
		if obj.IsMarked {
			obj.IsMarked = false
			previous = obj
			obj = obj.Next
			continue
		}
		unreached := obj
		obj = obj.Next
		if previous != nil {
			previous.Next = obj
		} else {
			vm.objects = obj
		}
		_ = unreached // no explicit free needed under Go's own allocator
		vm.bytesAllocated--
	}
}

// track registers a newly-allocated object at the head of the intrusive
// list and, if stress-GC is enabled or the threshold has been crossed,
// collects before returning it.
func (vm *VM) track(o *bytecode.Obj) *bytecode.Obj {
	o.Next = vm.objects
	vm.objects = o
	vm.bytesAllocated++
	if vm.config.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
	return o
}
