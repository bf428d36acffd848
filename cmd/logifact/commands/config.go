package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage logifact configuration",
	Long: `Display and manage logifact configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (LOGIFACT_* prefix)
3. Project config (./logifact.toml, searched up the directory tree)
4. User config (~/.logifact/config.toml)
5. System config (/etc/logifact/config.toml)
6. Default values

Examples:
  logifact config show                  # Show current configuration
  logifact config show --format json    # Show configuration as JSON
  logifact config get output.mode       # Get a specific value
  logifact config where                 # Show where each value comes from
  logifact config init                  # Write a starter logifact.toml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration merged from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., output.mode, store.path)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade, which files exist, and the source of
every effective setting.`,
	RunE: runConfigWhere,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long:  "Write the default configuration to ./logifact.toml (or the given path)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var (
	configFormat string
	configForce  bool
)

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", config.FormatTOML, "Output format: toml, json, yaml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file (kept as .back1)")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	data, err := config.Render(cfg, configFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if ConfigFile != "" {
		return errors.WithHint(
			errors.New("config get reads the cascade only"),
			"drop --config or use 'config show'")
	}
	v := config.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.Get(key))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	for i, src := range config.SearchPaths() {
		state := "missing"
		if _, err := os.Stat(src.Path); err == nil {
			state = "found"
		}
		fmt.Fprintf(out, "  %d. [%s]  %s (%s)\n", i+2, src.Source, src.Path, state)
	}
	fmt.Fprintf(out, "  -. [%s]  %s_* environment variables\n", config.SourceEnvironment, config.EnvPrefix)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Active configuration:")
	for _, s := range config.Introspect() {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		origin := string(s.Source)
		if s.Source != config.SourceDefault && s.SourcePath != "" {
			origin += " " + s.SourcePath
		}
		fmt.Fprintf(out, "  %-28s = %-20s [%s]\n", s.Key, value, origin)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ProjectFile
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.WriteStarter(path, configForce); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}
