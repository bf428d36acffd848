package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/logifact/errors"
)

// isolate points the cascade at empty home and working directories.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)
	Reset()
	t.Cleanup(Reset)
	return home, project
}

func writeTOML(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, HostDocument, cfg.Input.Host)
	assert.Equal(t, "facts", cfg.Output.Root)
	assert.Equal(t, "minimal", cfg.Output.Mode)
	assert.Equal(t, 4, cfg.Output.Indent)
	assert.True(t, cfg.Output.CopyResources)
	assert.Equal(t, "java.lang.Object", cfg.Engine.ImplicitSupertype)
	assert.Equal(t, "facts.db", cfg.Store.Path)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Cascade(t *testing.T) {
	home, project := isolate(t)
	writeTOML(t, filepath.Join(home, UserDir, "config.toml"), "[output]\nmode = \"full\"\nindent = 2\n")
	writeTOML(t, filepath.Join(project, ProjectFile), "[output]\nroot = \"out\"\nindent = 8\n")

	cfg, err := Load()
	require.NoError(t, err)
	// the project file does not wipe keys it does not set
	assert.Equal(t, "full", cfg.Output.Mode)
	assert.Equal(t, "out", cfg.Output.Root)
	assert.Equal(t, 8, cfg.Output.Indent)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)

	files := LoadedFiles()
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(home, UserDir, "config.toml"), files[0])
}

func TestLoad_ProjectFoundUpwards(t *testing.T) {
	_, project := isolate(t)
	writeTOML(t, filepath.Join(project, ProjectFile), "[store]\nenabled = true\n")
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Store.Enabled)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	_, project := isolate(t)
	writeTOML(t, filepath.Join(project, ProjectFile), "[output]\nmode = \"full\"\n")
	t.Setenv("LOGIFACT_OUTPUT_MODE", "both")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "both", cfg.Output.Mode)
}

func TestLoad_Cached(t *testing.T) {
	isolate(t)
	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeTOML(t, path, "[input]\nhost = \"go\"\npaths = [\"./...\"]\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, HostGo, cfg.Input.Host)
	assert.Equal(t, []string{"./..."}, cfg.Input.Paths)
	assert.Equal(t, "facts", cfg.Output.Root)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestIntrospect(t *testing.T) {
	_, project := isolate(t)
	writeTOML(t, filepath.Join(project, ProjectFile), "[output]\nroot = \"out\"\n")
	t.Setenv("LOGIFACT_WATCH_DEBOUNCE_MS", "10")

	byKey := make(map[string]Setting)
	for _, s := range Introspect() {
		byKey[s.Key] = s
	}
	assert.Equal(t, SourceProject, byKey["output.root"].Source)
	assert.Equal(t, filepath.Join(project, ProjectFile), byKey["output.root"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["output.mode"].Source)
	assert.Equal(t, SourceEnvironment, byKey["watch.debounce_ms"].Source)
	assert.Equal(t, "LOGIFACT_WATCH_DEBOUNCE_MS", byKey["watch.debounce_ms"].SourcePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"go host", func(c *Config) { c.Input.Host = HostGo }, false},
		{"unknown host", func(c *Config) { c.Input.Host = "javadoc" }, true},
		{"empty root", func(c *Config) { c.Output.Root = "" }, true},
		{"bad mode", func(c *Config) { c.Output.Mode = "verbose" }, true},
		{"zero indent is valid", func(c *Config) { c.Output.Indent = 0 }, false},
		{"negative indent", func(c *Config) { c.Output.Indent = -1 }, true},
		{"store without path", func(c *Config) { c.Store.Enabled = true; c.Store.Path = "" }, true},
		{"disabled store without path", func(c *Config) { c.Store.Path = "" }, false},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	cfg := Default()

	data, err := Render(cfg, FormatTOML)
	require.NoError(t, err)
	var fromTOML Config
	require.NoError(t, toml.Unmarshal(data, &fromTOML))
	assert.Equal(t, cfg.Output, fromTOML.Output)

	data, err = Render(cfg, FormatJSON)
	require.NoError(t, err)
	var fromJSON Config
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, cfg.Engine, fromJSON.Engine)

	data, err = Render(cfg, FormatYAML)
	require.NoError(t, err)
	var fromYAML Config
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, cfg.Watch, fromYAML.Watch)

	_, err = Render(cfg, "ini")
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFile)
	require.NoError(t, WriteStarter(path, false))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Output, cfg.Output)

	err = WriteStarter(path, false)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	require.NoError(t, os.WriteFile(path, []byte("[output]\nroot = \"mine\"\n"), 0644))
	require.NoError(t, WriteStarter(path, true))
	backup, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Contains(t, string(backup), "mine")
}

func TestCreateBackupRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	for _, content := range []string{"one", "two", "three", "four"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		require.NoError(t, createBackup(path))
	}
	for suffix, want := range map[string]string{".back1": "four", ".back2": "three", ".back3": "two"} {
		got, err := os.ReadFile(path + suffix)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), suffix)
	}
}
