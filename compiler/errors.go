package compiler

import "fmt"

// CompileError is a single diagnostic produced during compilation. The
// parser keeps collecting these in panic-mode recovery rather than
// stopping at the first one, so a script with several unrelated mistakes
// gets reported for all of them in one pass.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}
