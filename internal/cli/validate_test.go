package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Outline(t *testing.T) {
	opts := newTestOptions(t, "text")
	path := filepath.Join(t.TempDir(), "draft.outline")
	writeFile(t, path, "# A\nnotes\n### Deep\n# B /\n")

	out, err := execute(t, NewValidateCommand(opts), path)
	require.NoError(t, err)
	assert.Contains(t, out, `✓ `+path+`: "draft" is valid`)
	assert.Contains(t, out, "2 work(s), 1 section(s), 0 person(s)")
	assert.Contains(t, out, "skipped lines: 2")
	assert.Contains(t, out, `! line 3: "Deep" at depth 3 after depth 1 is unreachable`)
	assert.NoFileExists(t, opts.Config.Database.Path, "dry runs never touch the database")
}

func TestValidate_BookRecordWithShow(t *testing.T) {
	opts := newTestOptions(t, "text")
	path := writeBook(t, t.TempDir(), "anthology", anthologyRecord, anthologyOutline)

	out, err := execute(t, NewValidateCommand(opts), path, "--show")
	require.NoError(t, err)
	assert.Contains(t, out, `"Anthology" is valid`)
	assert.Contains(t, out, "5 work(s), 1 section(s), 4 person(s)")
	assert.Contains(t, out, "# Preface\n# The Lake || Ann Author; [Tom Translator]\n## Notes\n## Commentary || Carl Critic\n# Afterword\n")
}

func TestValidate_FlagsOverride(t *testing.T) {
	opts := newTestOptions(t, "json")
	path := filepath.Join(t.TempDir(), "draft.outline")
	writeFile(t, path, "# A\n")

	out, err := execute(t, NewValidateCommand(opts), path,
		"--title", "Working Title", "--contributor", "Doe, Jane", "--contributor", "Ann Editor")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "Working Title", resp.Data.Title)
	assert.Equal(t, 2, resp.Data.Result.PersonsCreated)
}

func TestValidate_RejectedJump(t *testing.T) {
	opts := newTestOptions(t, "text")
	path := filepath.Join(t.TempDir(), "draft.outline")
	writeFile(t, path, "# A\n### Deep\n")

	out, err := execute(t, NewValidateCommand(opts), path, "--jump-policy", "reject")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "E201: line 2:")
}

func TestValidate_ConfigPolicy(t *testing.T) {
	opts := newTestOptions(t, "json")
	opts.Config.Compile.JumpPolicy = "reject"
	path := filepath.Join(t.TempDir(), "draft.outline")
	writeFile(t, path, "## Too Deep\n")

	out, err := execute(t, NewValidateCommand(opts), path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E201", resp.Error.Code)
}

func TestValidate_Errors(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, NewValidateCommand(opts), filepath.Join(t.TempDir(), "missing.outline"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	path := filepath.Join(t.TempDir(), "draft.outline")
	writeFile(t, path, "# A\n")
	_, err = execute(t, NewValidateCommand(opts), path, "--jump-policy", "flatten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeConfig)
}
