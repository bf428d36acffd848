package commands

import (
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/logifact/display"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/generate"
	"github.com/teranos/logifact/logger"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check [inputs...]",
	Short: "Verify generated facts are up to date",
	Long: `Regenerate facts into a temporary directory and compare them with the
output root. Facts are compared as terms, so pretty and compact files with
the same content match. Exits non-zero when anything differs.

Examples:
  logifact check model.yaml
  logifact check --host go --mode both ./...`,
	RunE: runCheck,
}

func init() {
	addGenerateFlags(CheckCmd)
	CheckCmd.Flags().Bool("json", false, "Print the comparison as JSON")
}

type differenceReport struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type checkReport struct {
	Target      string             `json:"target"`
	UpToDate    bool               `json:"up_to_date"`
	Compared    int                `json:"compared"`
	Differences []differenceReport `json:"differences"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}

	results, err := generate.Check(cmd.Context(), opts, logger.Logger.Named("check"))
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	asJSON := display.ShouldOutputJSON(cmd)
	var reports []checkReport
	stale := 0
	for _, name := range names {
		res := results[name]
		stale += len(res.Differences)
		if asJSON {
			r := checkReport{Target: name, UpToDate: res.UpToDate, Compared: res.Compared, Differences: []differenceReport{}}
			for _, d := range res.Differences {
				r.Differences = append(r.Differences, differenceReport{Path: d.Path, Kind: string(d.Kind)})
			}
			reports = append(reports, r)
			continue
		}
		if res.UpToDate {
			pterm.Success.Printf("%s: %d facts up to date\n", name, res.Compared)
			continue
		}
		pterm.Error.Printf("%s: %d of %d facts differ\n", name, len(res.Differences), res.Compared)
		if logger.ShouldOutput(verbosity(cmd), logger.OutputDifferences) {
			for _, d := range res.Differences {
				pterm.Printf("  %-8s %s\n", d.Kind, d.Path)
			}
		}
	}

	if asJSON {
		if err := display.OutputJSON(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	}

	if stale > 0 {
		cmd.SilenceUsage = true
		return errors.WithHint(
			errors.Newf("%d fact file(s) out of date", stale),
			"run 'logifact generate' with the same inputs")
	}
	return nil
}
