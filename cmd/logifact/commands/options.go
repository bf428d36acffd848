package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/generate"
	"github.com/teranos/logifact/writer"
)

// ConfigFile is set by the root --config flag. Empty means the cascade.
var ConfigFile string

// LoadConfig loads --config when set, otherwise the cascade.
func LoadConfig() (*config.Config, error) {
	if ConfigFile != "" {
		return config.LoadFromFile(ConfigFile)
	}
	return config.Load()
}

// addGenerateFlags registers the flags shared by generate, check and watch.
func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("host", config.HostDocument, "Model host: document or go")
	f.String("dir", ".", "Working directory for the go host")
	f.StringP("out", "o", "facts", "Output root")
	f.StringP("mode", "m", string(writer.DefaultMode), "Output mode: minimal, full or both")
	f.Bool("pretty", false, "Pretty print facts")
	f.Int("indent", 4, "Indent width for pretty printing")
	f.String("store", "", "Also record facts in this SQLite store")
	f.Bool("strict", false, "Fail when any declaration is unsupported")
	f.Bool("no-resources", false, "Do not copy guidance files next to the facts")
}

// resolveOptions merges explicitly set flags and positional inputs over the
// loaded configuration.
func resolveOptions(cmd *cobra.Command, args []string) (*config.Config, generate.Options, error) {
	loaded, err := LoadConfig()
	if err != nil {
		return nil, generate.Options{}, err
	}
	cfg := *loaded

	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Input.Host, _ = f.GetString("host")
	}
	if f.Changed("dir") {
		cfg.Input.Dir, _ = f.GetString("dir")
	}
	if len(args) > 0 {
		cfg.Input.Paths = args
	}
	if f.Changed("out") {
		cfg.Output.Root, _ = f.GetString("out")
	}
	if f.Changed("mode") {
		cfg.Output.Mode, _ = f.GetString("mode")
	}
	if f.Changed("pretty") {
		cfg.Output.Pretty, _ = f.GetBool("pretty")
	}
	if f.Changed("indent") {
		cfg.Output.Indent, _ = f.GetInt("indent")
	}
	if f.Changed("store") {
		cfg.Store.Path, _ = f.GetString("store")
		cfg.Store.Enabled = cfg.Store.Path != ""
	}
	if f.Changed("strict") {
		cfg.Engine.Strict, _ = f.GetBool("strict")
	}
	if noRes, _ := f.GetBool("no-resources"); noRes {
		cfg.Output.CopyResources = false
	}

	opts, err := generate.FromConfig(&cfg)
	if err != nil {
		return nil, generate.Options{}, err
	}
	return &cfg, opts, nil
}
