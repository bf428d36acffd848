package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/writer"
)

const model = `{"packages": [{"name": "com.acme", "members": [{"kind": "class", "name": "Box"}]}]}`

// isolate keeps the config cascade away from the real home and project.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	config.Reset()
	t.Cleanup(config.Reset)
	return dir
}

func root(sub ...*cobra.Command) *cobra.Command {
	r := &cobra.Command{Use: "logifact", SilenceUsage: true, SilenceErrors: true}
	r.PersistentFlags().CountP("verbose", "v", "")
	for _, c := range sub {
		r.AddCommand(c)
	}
	return r
}

func TestResolveOptionsFlagsOverrideConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFile),
		[]byte("[output]\nmode = \"full\"\nroot = \"out\"\n\n[store]\nenabled = true\n"), 0644))

	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd)
	require.NoError(t, cmd.Flags().Set("mode", "both"))
	require.NoError(t, cmd.Flags().Set("no-resources", "true"))

	cfg, opts, err := resolveOptions(cmd, []string{"model.json"})
	require.NoError(t, err)
	assert.Equal(t, writer.ModeBoth, opts.Mode)
	assert.Equal(t, "out", opts.Root)
	assert.Equal(t, []string{"model.json"}, opts.Inputs)
	assert.Equal(t, "facts.db", opts.StorePath)
	assert.False(t, opts.CopyResources)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)

	// the cached configuration is not modified
	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "full", loaded.Output.Mode)

	// an empty --store disables the store
	require.NoError(t, cmd.Flags().Set("store", ""))
	_, opts, err = resolveOptions(cmd, nil)
	require.NoError(t, err)
	assert.Empty(t, opts.StorePath)
}

func TestResolveOptionsRejectsBadMode(t *testing.T) {
	isolate(t)
	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd)
	require.NoError(t, cmd.Flags().Set("mode", "verbose"))

	_, _, err := resolveOptions(cmd, []string{"model.json"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestGenerateThenCheck(t *testing.T) {
	dir := isolate(t)
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0644))
	out := filepath.Join(dir, "facts")

	r := root(GenerateCmd, CheckCmd)
	r.SetArgs([]string{"generate", "--out", out, "--no-resources", modelPath})
	require.NoError(t, r.Execute())
	assert.FileExists(t, filepath.Join(out, "minimal", "com", "acme", "Box.pl"))

	r.SetArgs([]string{"check", "--out", out, modelPath})
	require.NoError(t, r.Execute())

	require.NoError(t, os.Remove(filepath.Join(out, "minimal", "com", "acme", "Box.pl")))
	r.SetArgs([]string{"check", "--out", out, modelPath})
	err := r.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 fact file(s) out of date")
}

func TestGenerateJSONReport(t *testing.T) {
	dir := isolate(t)
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0644))

	r := root(GenerateCmd)
	var buf bytes.Buffer
	r.SetOut(&buf)
	r.SetArgs([]string{"generate", "--json", "--mode", "both", "--out", filepath.Join(dir, "facts"), "--no-resources", modelPath})
	require.NoError(t, r.Execute())

	var report generateReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report.Targets, 2)
	assert.Equal(t, "minimal", report.Targets[0].Name)
	assert.Equal(t, 1, report.Targets[1].Types)
	assert.Equal(t, 0, report.Resources)
	assert.Empty(t, report.Error)
}

func TestConfigShowAndInit(t *testing.T) {
	dir := isolate(t)

	r := root(ConfigCmd)
	var buf bytes.Buffer
	r.SetOut(&buf)
	r.SetArgs([]string{"config", "show", "--format", "json"})
	require.NoError(t, r.Execute())
	assert.Contains(t, buf.String(), `"implicit_supertype": "java.lang.Object"`)

	r.SetArgs([]string{"config", "init"})
	require.NoError(t, r.Execute())
	assert.FileExists(t, filepath.Join(dir, config.ProjectFile))

	r.SetArgs([]string{"config", "init"})
	assert.Error(t, r.Execute())
}

func TestServeRequiresFactTree(t *testing.T) {
	isolate(t)
	r := root(ServeCmd)
	r.SetArgs([]string{"serve", filepath.Join(t.TempDir(), "missing")})
	err := r.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fact tree")
}

func TestVersionJSON(t *testing.T) {
	r := root(VersionCmd)
	var buf bytes.Buffer
	r.SetOut(&buf)
	r.SetArgs([]string{"version", "--json"})
	require.NoError(t, r.Execute())
	assert.Contains(t, buf.String(), `"fact_format"`)
}
