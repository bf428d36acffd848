package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/mcpserver"
	"github.com/teranos/logifact/writer"
)

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve [fact-dir]",
	Short: "Serve generated facts over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing a fact
tree to assistants. Tools: list_packages, read_fact, find_type.

Without an argument the first variant of the configured output mode is
served, e.g. facts/minimal.

Examples:
  logifact serve
  logifact serve facts/full`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		mode, err := writer.ParseMode(cfg.Output.Mode)
		if err != nil {
			return err
		}
		dir = mode.Targets(cfg.Output.Root)[0].Dir
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.WithHint(
			errors.Newf("no fact tree at %s", dir),
			"run 'logifact generate' first or pass the fact directory")
	}

	return mcpserver.New(dir, logger.Logger.Named("mcp")).Serve()
}
