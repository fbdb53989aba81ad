package book

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidRecord(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "novel.cue", `
title:        "Collected Stories"
contributors: ["Ann Author", "Ben Editor"]
outline:      "stories.outline"
jump_policy:  "reject"
`)

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Collected Stories", b.Title)
	assert.Equal(t, []string{"Ann Author", "Ben Editor"}, b.Contributors)
	assert.Equal(t, filepath.Join(dir, "stories.outline"), b.Outline)
	assert.Equal(t, "reject", b.JumpPolicy)
	assert.Equal(t, path, b.Path)
}

func TestLoad_DefaultsContributorsAndPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "anon.cue", `
title:   "Anonymous"
outline: "/abs/anon.outline"
`)

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{}, b.Contributors)
	assert.Equal(t, "/abs/anon.outline", b.Outline)
	assert.Empty(t, b.JumpPolicy)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing title", `outline: "a.outline"`, "title"},
		{"empty title", `title: "", outline: "a.outline"`, "title"},
		{"missing outline", `title: "T"`, "outline"},
		{"numeric contributor", `title: "T", outline: "a", contributors: [1]`, "contributors"},
		{"unknown policy", `title: "T", outline: "a", jump_policy: "flatten"`, "jump_policy"},
		{"unknown field", `title: "T", outline: "a", author: "X"`, "author"},
		{"syntax error", `title: "T" outline: }`, "cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("book.cue", []byte(tt.src))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.True(t, strings.HasPrefix(loadErr.Field, tt.field), "field %q, want prefix %q", loadErr.Field, tt.field)
			assert.NotEmpty(t, loadErr.Message)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "file", loadErr.Field)
}

func TestReadOutline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.outline", "# One\n# Two\n")
	b, err := Load(writeFile(t, dir, "a.cue", `title: "A", outline: "a.outline"`))
	require.NoError(t, err)

	text, err := b.ReadOutline()
	require.NoError(t, err)
	assert.Equal(t, "# One\n# Two\n", text)

	b.Outline = filepath.Join(dir, "gone.outline")
	_, err = b.ReadOutline()
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "books/a.cue", "")
	b := writeFile(t, dir, "books/nested/b.cue", "")
	writeFile(t, dir, "books/notes.txt", "")

	got, err := Expand([]string{filepath.Join(dir, "books/**/*.cue")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	got, err = Expand([]string{b, filepath.Join(dir, "books/*.cue"), b})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, got, "argument order kept, duplicates dropped")
}

func TestExpand_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Expand([]string{filepath.Join(dir, "missing.cue")})
	assert.Error(t, err)

	_, err = Expand([]string{filepath.Join(dir, "*.cue")})
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Expand([]string{dir})
	assert.ErrorContains(t, err, "directory")
}
