package writer

import (
	"path/filepath"
	"strings"

	"github.com/teranos/logifact/errors"
)

// Mode selects which fact variants a run produces.
type Mode string

const (
	ModeMinimal Mode = "minimal"
	ModeFull    Mode = "full"
	ModeBoth    Mode = "both"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = ModeMinimal

// Modes lists every accepted mode.
var Modes = []Mode{ModeMinimal, ModeFull, ModeBoth}

// ParseMode accepts a mode name case-insensitively. The empty string means
// DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeFull:
		return ModeFull, nil
	case ModeMinimal:
		return ModeMinimal, nil
	case ModeBoth:
		return ModeBoth, nil
	}
	return "", errors.WithHintf(
		errors.Newf("unknown output mode %q", s),
		"valid modes: %s, %s, %s", ModeMinimal, ModeFull, ModeBoth)
}

// Target is one output variant: where it goes and whether it carries docs.
type Target struct {
	Name        string
	Dir         string
	IncludeDocs bool
}

// Targets expands a mode into its output directories under root. Each
// variant gets its own subdirectory named after it.
func (m Mode) Targets(root string) []Target {
	minimal := Target{Name: string(ModeMinimal), Dir: filepath.Join(root, string(ModeMinimal))}
	full := Target{Name: string(ModeFull), Dir: filepath.Join(root, string(ModeFull)), IncludeDocs: true}
	switch m {
	case ModeMinimal:
		return []Target{minimal}
	case ModeBoth:
		return []Target{minimal, full}
	default:
		return []Target{full}
	}
}
