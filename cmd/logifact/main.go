package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/logifact/cmd/logifact/commands"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
)

var rootCmd = &cobra.Command{
	Use:   "logifact",
	Short: "logifact - program declarations as Prolog facts",
	Long: `logifact - Emit the declarations of a program as Prolog-style facts.

A program model (modules, packages, types and their members) is walked and
every declaration becomes a fact file laid out by namespace, ready for a
logic engine or an LLM to query.

Available commands:
  generate - Write fact files from a model document or Go packages
  check    - Verify generated facts are up to date
  watch    - Regenerate facts on every model change
  serve    - Serve facts over MCP (stdio)
  config   - Manage configuration
  version  - Show version information

Examples:
  logifact generate model.yaml
  logifact generate --host go --mode both ./...
  logifact check model.yaml
  logifact serve facts/full`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLog, _ := cmd.Flags().GetBool("json-log")
		if !cmd.Flags().Changed("json-log") {
			if fromConfig, err := loadRootConfig(); err == nil {
				jsonLog = fromConfig
			}
		}
		if err := logger.InitializeWithVerbosity(jsonLog, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Logger.Debugw("Logger initialized", "verbosity", logger.LevelName(verbosity))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Log as JSON to stderr")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Use this config file instead of the cascade")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

// loadRootConfig reads log.json before any command runs. Load errors are
// left for the command itself to report.
func loadRootConfig() (bool, error) {
	cfg, err := commands.LoadConfig()
	if err != nil {
		return false, err
	}
	return cfg.Log.JSON, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
