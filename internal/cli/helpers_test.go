package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/folio/internal/config"
)

// newTestOptions returns root options backed by a database in a temp dir.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "folio.db")
	return &RootOptions{Format: format, Config: cfg}
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeBook writes a book record and its outline into dir and returns the
// record path.
func writeBook(t *testing.T, dir, name, record, outline string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".outline"), []byte(outline), 0644))
	path := filepath.Join(dir, name+".cue")
	require.NoError(t, os.WriteFile(path, []byte(record), 0644))
	return path
}

const anthologyRecord = `
title:        "Anthology"
contributors: ["Ann Editor"]
outline:      "anthology.outline"
`

const anthologyOutline = `# Preface
# Part One /
# The Lake || Ann Author; [Tom Translator]
## Notes
## Commentary || Carl Critic
# Afterword
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
