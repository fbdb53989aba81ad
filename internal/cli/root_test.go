package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "folio", cmd.Use)
	assert.Contains(t, cmd.Long, "Works")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "toc", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	require.NotNil(t, compileCmd.Flags().Lookup("jump-policy"))
	require.NotNil(t, compileCmd.Flags().Lookup("metrics"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	_, err := execute(t, cmd, "--format", "yaml", "toc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRoot_ExplicitConfigAndDBFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ci.yaml")
	writeFile(t, cfgPath, "database:\n  path: "+filepath.Join(dir, "from-config.db")+"\ncompile:\n  jump_policy: reject\n")
	dbPath := filepath.Join(dir, "from-flag.db")
	path := writeBook(t, dir, "anthology", anthologyRecord, "# A\n### Deep\n")

	cmd := NewRootCommand()
	out, err := execute(t, cmd, "--config", cfgPath, "--db", dbPath, "compile", path)
	require.Error(t, err, "config sets the reject policy")
	assert.Contains(t, out, "E201")
	assert.FileExists(t, dbPath)
	assert.NoFileExists(t, filepath.Join(dir, "from-config.db"))
}

func TestRoot_BadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, cfgPath, "compile:\n  jump_policy: sideways\n")

	cmd := NewRootCommand()
	cmd.SetErr(&bytes.Buffer{})
	_, err := execute(t, cmd, "--config", cfgPath, "toc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeConfig)
}
