package harness

import (
	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/toc"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Compile is what the compilation reported. Nil when it failed.
	Compile *compiler.Result `json:"compile,omitempty"`

	// ErrorCode is the compile error code when compilation failed.
	ErrorCode string `json:"error_code,omitempty"`

	// TOC is the compiled graph read back from the store.
	TOC *toc.TOC `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
