// Package book loads book records: the CUE files that name a book's title,
// its fallback contributors and the outline to compile.
//
// A record looks like:
//
//	title:        "Collected Stories"
//	contributors: ["Ann Author"]
//	outline:      "stories.outline"
//	jump_policy:  "reject" // optional
//
// Records are validated against an embedded CUE schema, so a missing title
// or a misspelled field is reported with its file position.
package book

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Book is a validated book record.
type Book struct {
	// Path is the record file the book was loaded from.
	Path string `json:"path"`

	Title        string   `json:"title"`
	Contributors []string `json:"contributors"`

	// Outline is the outline file path, resolved against the record's directory.
	Outline string `json:"outline"`

	// JumpPolicy is empty unless the record overrides the configured policy.
	JumpPolicy string `json:"jump_policy,omitempty"`
}

// record mirrors #Book for decoding.
type record struct {
	Title        string   `json:"title"`
	Contributors []string `json:"contributors"`
	Outline      string   `json:"outline"`
	JumpPolicy   string   `json:"jump_policy"`
}

// LoadError is a book record error with source position.
type LoadError struct {
	Field   string // record field at fault, "file" for I/O, "cue" for syntax
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and validates the book record at path.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Field: "file", Message: err.Error()}
	}
	return Parse(path, data)
}

// Parse validates record source. path names the source in positions and
// anchors a relative outline path.
func Parse(path string, data []byte) (*Book, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("book schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "cue")
	}

	unified := schema.LookupPath(cue.ParsePath("#Book")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, "")
	}

	var rec record
	if err := unified.Decode(&rec); err != nil {
		return nil, formatCUEError(err, "")
	}

	outline := rec.Outline
	if !filepath.IsAbs(outline) {
		outline = filepath.Join(filepath.Dir(path), outline)
	}
	contributors := rec.Contributors
	if contributors == nil {
		contributors = []string{}
	}

	return &Book{
		Path:         path,
		Title:        rec.Title,
		Contributors: contributors,
		Outline:      outline,
		JumpPolicy:   rec.JumpPolicy,
	}, nil
}

// ReadOutline returns the text of the book's outline file.
func (b *Book) ReadOutline() (string, error) {
	data, err := os.ReadFile(b.Outline)
	if err != nil {
		return "", &LoadError{Field: "file", Message: fmt.Sprintf("read outline: %v", err)}
	}
	return string(data), nil
}

// formatCUEError extracts the first error's field path and position.
// field overrides the path when non-empty.
func formatCUEError(err error, field string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Field: fieldOr(field, "cue"), Message: err.Error()}
	}

	first := errs[0]
	if field == "" {
		field = fieldOr(fieldPath(errors.Path(first)), "cue")
	}
	format, args := first.Msg()
	loadErr := &LoadError{Field: field, Message: fmt.Sprintf(format, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}

// fieldPath joins an error path, dropping definition selectors such as #Book.
func fieldPath(path []string) string {
	var parts []string
	for _, p := range path {
		if !strings.HasPrefix(p, "#") {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

func fieldOr(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}
