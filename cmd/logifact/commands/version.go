package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/logifact/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show logifact version information",
	Long:  `Display version, fact format, build time, commit hash, and platform information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		info := version.Get()

		if jsonOutput {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format version info: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "Fact format: %s\n", info.FactFormat)
		fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s\n", info.Platform)
		fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", info.GoVersion)
		if info.Dev() {
			fmt.Fprintln(cmd.OutOrStdout(), "Untagged development build")
		}
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
