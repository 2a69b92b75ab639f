package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is a failed script execution: the triggering message plus
// a captured call-stack trace, formatted clox-style — the message first,
// then one "[line N] in <name>" per frame, innermost first. Keeping
// this as a distinct Go error type (rather than folding it
// into the stdout/stderr text) lets a host distinguish a script failure
// from a genuine internal error without parsing VM output, the same
// split chazu-maggie draws between its own error value and a Go panic in
// VM.ExecuteSafe.
type RuntimeError struct {
	Message string
	Trace   []TraceFrame
}

type TraceFrame struct {
	Line int
	Name string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		name := f.Name
		if name == "" {
			name = "script"
		} else {
			name += "()"
		}
		fmt.Fprintf(&b, "\n[line %d] in %s", f.Line, name)
	}
	return b.String()
}
