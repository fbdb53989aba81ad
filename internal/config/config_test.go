package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/folio/internal/compiler"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "folio.db", cfg.Database.Path)
	assert.Equal(t, compiler.JumpOrphan, cfg.JumpPolicy())
	assert.Empty(t, cfg.Metrics.Textfile)
	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"reject policy", func(c *Config) { c.Compile.JumpPolicy = "reject" }, false},
		{"empty policy means orphan", func(c *Config) { c.Compile.JumpPolicy = "" }, false},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"unknown jump policy", func(c *Config) { c.Compile.JumpPolicy = "flatten" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }, true},
		{"debug log level", func(c *Config) { c.Log.Level = "debug" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Compile: CompileConfig{JumpPolicy: "reject"},
		Metrics: MetricsConfig{Textfile: "/tmp/folio.prom"},
	})

	assert.Equal(t, "folio.db", cfg.Database.Path, "zero values do not override")
	assert.Equal(t, compiler.JumpReject, cfg.JumpPolicy())
	assert.Equal(t, "/tmp/folio.prom", cfg.Metrics.Textfile)

	cfg.Merge(nil)
	assert.Equal(t, "reject", cfg.Compile.JumpPolicy)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: books.db\ncompile:\n  jump_policy: reject\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "books.db", cfg.Database.Path)
	assert.Equal(t, "reject", cfg.Compile.JumpPolicy)
	assert.Empty(t, cfg.Log.Level, "file configs only carry what they set")
}

func TestLoadFromFile_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compile:\n  jump_polcy: reject\n"), 0644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "jump_polcy")
}

func TestLoadFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Metrics.Textfile = "metrics.prom"

	require.NoError(t, cfg.SaveToFile(path))
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func newTestLoader(home, work string) *Loader {
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return work, nil }
	return l
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Layering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "chapters", "draft")
	require.NoError(t, os.MkdirAll(work, 0755))

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile),
		"database:\n  path: user.db\nlog:\n  level: debug\n")
	writeConfig(t, filepath.Join(project, ProjectConfigFile),
		"database:\n  path: project.db\n")

	cfg, err := newTestLoader(home, work).Load("")
	require.NoError(t, err)
	assert.Equal(t, "project.db", cfg.Database.Path, "project overrides user")
	assert.Equal(t, "debug", cfg.Log.Level, "user overrides defaults")
	assert.Equal(t, "orphan", cfg.Compile.JumpPolicy)
}

func TestLoader_NoFiles(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), t.TempDir()).Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_InvalidProjectConfig(t *testing.T) {
	work := t.TempDir()
	writeConfig(t, filepath.Join(work, ProjectConfigFile), "compile:\n  jump_policy: sideways\n")

	_, err := newTestLoader(t.TempDir(), work).Load("")
	assert.ErrorContains(t, err, "jump_policy")
}

func TestLoader_Explicit(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile), "database:\n  path: user.db\n")
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	writeConfig(t, explicit, "metrics:\n  textfile: ci.prom\n")

	cfg, err := newTestLoader(home, t.TempDir()).Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "folio.db", cfg.Database.Path, "explicit config skips the user layer")
	assert.Equal(t, "ci.prom", cfg.Metrics.Textfile)

	_, err = newTestLoader(home, t.TempDir()).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
