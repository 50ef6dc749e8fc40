package wavefront

import "fmt"

// ParseError reports structurally malformed OBJ or MTL content.
type ParseError struct {
	File string // may be empty when parsing from a reader
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("wavefront: %s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("wavefront: line %d: %s", e.Line, e.Msg)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
