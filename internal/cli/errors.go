package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/roach88/folio/internal/book"
	"github.com/roach88/folio/internal/compiler"
)

// Error codes for CLI failures. Compile errors keep their own E2xx codes.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Book argument expansion error
	ErrCodeNoFiles        = "E003" // Glob matched no files
	ErrCodeLoadFailed     = "E004" // File read failed
	ErrCodeNotFound       = "E005" // Path or record not found
	ErrCodeBuildFailed    = "E006" // CUE syntax error
	ErrCodeWriteFailed    = "E007" // Database or metrics write error
	ErrCodeConfig         = "E008" // Invalid configuration
	ErrCodeScenarioFailed = "E009" // Conformance scenario failed

	// Book record validation errors
	ErrCodeBookTitle        = "E101" // Missing or empty title
	ErrCodeBookOutline      = "E102" // Missing or empty outline path
	ErrCodeBookContributors = "E103" // Contributors are not a list of names
	ErrCodeBookJumpPolicy   = "E104" // Unknown jump policy
	ErrCodeBookField        = "E105" // Unknown field
)

// MapFieldToErrorCode maps a book record field to its error code.
func MapFieldToErrorCode(field string) string {
	head, _, _ := strings.Cut(field, ".")
	switch head {
	case "title":
		return ErrCodeBookTitle
	case "outline":
		return ErrCodeBookOutline
	case "contributors":
		return ErrCodeBookContributors
	case "jump_policy":
		return ErrCodeBookJumpPolicy
	case "file":
		return ErrCodeLoadFailed
	case "cue":
		return ErrCodeBuildFailed
	case "":
		return ErrCodeGeneric
	default:
		return ErrCodeBookField
	}
}

// classifyError returns the CLI error code and message for err.
func classifyError(err error) (code, message string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compileErr.Code, strings.TrimPrefix(compileErr.Error(), "["+compileErr.Code+"] ")
	}
	var loadErr *book.LoadError
	if errors.As(err, &loadErr) {
		return MapFieldToErrorCode(loadErr.Field), loadErr.Error()
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound, err.Error()
	}
	return ErrCodeGeneric, err.Error()
}
