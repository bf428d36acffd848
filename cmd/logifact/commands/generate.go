package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/display"
	"github.com/teranos/logifact/generate"
	"github.com/teranos/logifact/logger"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate [inputs...]",
	Short: "Generate fact files from a program model",
	Long: `Generate Prolog-style fact files describing declarations.

Inputs are model documents (.json, .yaml, .toml) for the document host, or
Go package patterns for the go host. Without inputs, input.paths from the
configuration is used.

Examples:
  logifact generate model.yaml                     # Minimal facts under ./facts/minimal
  logifact generate --mode both --pretty model.json
  logifact generate --host go ./...                # Facts for the Go module in .
  logifact generate --store facts.db model.toml    # Also record the run in SQLite`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(GenerateCmd)
	GenerateCmd.Flags().Bool("json", false, "Print the run summary as JSON")
}

type targetReport struct {
	Name     string `json:"name"`
	Dir      string `json:"dir"`
	Modules  int    `json:"modules"`
	Packages int    `json:"packages"`
	Types    int    `json:"types"`
	Files    int    `json:"files"`
	RunID    string `json:"run_id,omitempty"`
}

type generateReport struct {
	Facts       int            `json:"facts"`
	DurationMS  int64          `json:"duration_ms"`
	Targets     []targetReport `json:"targets"`
	Resources   int            `json:"resources"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func newGenerateReport(summary *generate.Summary, err error) generateReport {
	r := generateReport{
		Facts:      summary.Facts(),
		DurationMS: summary.Duration.Milliseconds(),
		Targets:    []targetReport{},
		Resources:  len(summary.Resources),
	}
	for _, t := range summary.Targets {
		tr := targetReport{Name: t.Target.Name, Dir: t.Target.Dir, Files: len(t.Files), RunID: t.RunID}
		if t.Result != nil {
			tr.Modules, tr.Packages, tr.Types = t.Result.Modules, t.Result.Packages, t.Result.Types
		}
		r.Targets = append(r.Targets, tr)
	}
	for _, d := range summary.Diagnostics() {
		r.Diagnostics = append(r.Diagnostics, d.Error())
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func runGenerate(cmd *cobra.Command, args []string) error {
	_, opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}

	asJSON := display.ShouldOutputJSON(cmd)
	var spinner *pterm.SpinnerPrinter
	if !asJSON && !logger.JSONOutput {
		spinner, _ = pterm.DefaultSpinner.Start("Generating facts...")
	}
	summary, err := generate.Run(cmd.Context(), opts, logger.Logger.Named("generate"))
	if spinner != nil {
		_ = spinner.Stop()
	}
	if summary == nil {
		return err
	}
	if asJSON {
		if jsonErr := display.OutputJSON(cmd.OutOrStdout(), newGenerateReport(summary, err)); jsonErr != nil {
			return jsonErr
		}
		return err
	}
	printSummary(summary, verbosity(cmd))
	return err
}

func printSummary(summary *generate.Summary, verbose int) {
	pterm.Success.Printf("Generated %d fact files in %s\n",
		summary.Facts(), summary.Duration.Round(time.Millisecond))
	if logger.ShouldOutput(verbose, logger.OutputConfig) {
		for _, path := range config.LoadedFiles() {
			pterm.Info.Printf("Config: %s\n", path)
		}
	}
	for _, t := range summary.Targets {
		pterm.Info.Printf("%s → %s\n", generate.Describe(t), t.Target.Dir)
		if t.RunID != "" {
			pterm.Printf("  store run: %s\n", t.RunID)
		}
		if logger.ShouldOutput(verbose, logger.OutputTiming) && t.Result != nil {
			pterm.Printf("  walk: %s\n", t.Result.Duration.Round(time.Microsecond))
		}
		if logger.ShouldOutput(verbose, logger.OutputFiles) {
			for _, f := range t.Files {
				pterm.Printf("  %s\n", f)
			}
		}
	}
	if n := len(summary.Resources); n > 0 && logger.ShouldOutput(verbose, logger.OutputProgress) {
		pterm.Info.Printf("Copied %d resource files\n", n)
	}

	diags := summary.Diagnostics()
	if len(diags) == 0 {
		return
	}
	pterm.Warning.Printf("%d unsupported declaration(s) skipped\n", len(diags))
	if logger.ShouldOutput(verbose, logger.OutputDiagnostics) {
		for _, d := range diags {
			pterm.Printf("  %s\n", d.Error())
		}
	}
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}
