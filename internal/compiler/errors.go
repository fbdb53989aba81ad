package compiler

import "fmt"

// Compile error codes (E200-E299)
const (
	// ErrDepthJump: a heading moved more than one level away from the
	// previous heading, or has no node at the depth above it, under JumpReject.
	ErrDepthJump = "E201"

	// ErrInvariant: the graph arena refused an edge the builder expected to be valid.
	ErrInvariant = "E202"

	// ErrPersistence: the Target failed to create an entity.
	ErrPersistence = "E203"

	// ErrRead: the outline text could not be read.
	ErrRead = "E204"
)

// CompileError reports why a compilation was aborted.
type CompileError struct {
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"` // 1-based outline line, 0 when not tied to a line
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

func persistenceError(line int, what string, err error) *CompileError {
	return &CompileError{Code: ErrPersistence, Line: line, Message: "create " + what, Err: err}
}
