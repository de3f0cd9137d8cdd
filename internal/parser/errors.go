package parser

import "fmt"

// Error is a fatal parse error carrying the 1-based line number where
// parsing stopped. A parse error aborts the current document; there is no
// partial-document recovery.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func errorf(line int, format string, args ...interface{}) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}
