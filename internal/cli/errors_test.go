package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/folio/internal/book"
	"github.com/roach88/folio/internal/compiler"
)

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"title", ErrCodeBookTitle},
		{"outline", ErrCodeBookOutline},
		{"contributors", ErrCodeBookContributors},
		{"contributors.0", ErrCodeBookContributors},
		{"jump_policy", ErrCodeBookJumpPolicy},
		{"author", ErrCodeBookField},
		{"file", ErrCodeLoadFailed},
		{"cue", ErrCodeBuildFailed},
		{"", ErrCodeGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field), "field %q", tt.field)
	}
}

func TestClassifyError(t *testing.T) {
	compileErr := fmt.Errorf("compile: %w", &compiler.CompileError{Code: compiler.ErrDepthJump, Line: 3, Message: "too deep"})
	code, msg := classifyError(compileErr)
	assert.Equal(t, compiler.ErrDepthJump, code)
	assert.Equal(t, "line 3: too deep", msg)

	code, _ = classifyError(&book.LoadError{Field: "outline", Message: "incomplete value"})
	assert.Equal(t, ErrCodeBookOutline, code)

	code, _ = classifyError(fmt.Errorf("read outline: %w", fs.ErrNotExist))
	assert.Equal(t, ErrCodeNotFound, code)

	code, msg = classifyError(errors.New("boom"))
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Equal(t, "boom", msg)
}
