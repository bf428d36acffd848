package logger

// OutputCategory defines a category of CLI output that can be enabled/disabled
// independently of log severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputSummary     OutputCategory = iota // Files written, diagnostics count
	OutputDifferences                       // check: changed/missing/extra facts

	// Level 1 (-v)
	OutputProgress    // Resource copies
	OutputDiagnostics // Each unsupported-variant diagnostic
	OutputConfig      // Config file sources

	// Level 2 (-vv)
	OutputFiles  // Every file written
	OutputTiming // Walk timing
)

var categoryLevels = map[OutputCategory]int{
	OutputSummary:     VerbosityUser,
	OutputDifferences: VerbosityUser,

	OutputProgress:    VerbosityInfo,
	OutputDiagnostics: VerbosityInfo,
	OutputConfig:      VerbosityInfo,

	OutputFiles:  VerbosityDebug,
	OutputTiming: VerbosityDebug,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}
