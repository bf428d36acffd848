// Package check reports whether an output root is up to date with the
// model it was generated from.
//
// A fresh tree is generated into a temporary directory and compared fact by
// fact with the existing root. Facts are compared as parsed terms, so a
// pretty-printed file equals its compact form.
package check

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/resources"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/writer"
)

// DiffKind classifies a difference between the generated and existing trees.
type DiffKind string

const (
	// Missing facts were generated but are absent from the root.
	Missing DiffKind = "missing"
	// Extra facts exist in the root but were not generated.
	Extra DiffKind = "extra"
	// Changed facts exist on both sides with different content.
	Changed DiffKind = "changed"
)

// Difference is one fact file that differs.
type Difference struct {
	Path string
	Kind DiffKind
}

// Result holds the outcome of a comparison.
type Result struct {
	UpToDate    bool
	Compared    int
	Differences []Difference
}

// Generator writes a fresh fact tree rooted at dir.
type Generator func(ctx context.Context, dir string) error

// Run generates into a temporary directory and compares it with root.
func Run(ctx context.Context, root string, generate Generator, log *zap.SugaredLogger) (*Result, error) {
	if log == nil {
		log = logger.ComponentLogger("check")
	}
	tmp, err := os.MkdirTemp("", "logifact-check-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tmp)

	if err := generate(ctx, tmp); err != nil {
		return nil, errors.Wrap(err, "failed to generate facts for comparison")
	}
	res, err := CompareDirectories(tmp, root)
	if err != nil {
		return nil, err
	}
	log.Infow("Check complete",
		logger.FieldPath, root,
		"compared", res.Compared,
		"differences", len(res.Differences))
	return res, nil
}

// CompareDirectories compares every fact file under generated with its
// counterpart under existing. Only fact files take part; copied resources
// are ignored.
func CompareDirectories(generated, existing string) (*Result, error) {
	want, err := factFiles(generated)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool)
	if _, statErr := os.Stat(existing); statErr == nil {
		if have, err = factFiles(existing); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for rel := range want {
		res.Compared++
		if !have[rel] {
			res.Differences = append(res.Differences, Difference{Path: rel, Kind: Missing})
			continue
		}
		same, err := sameFact(filepath.Join(generated, rel), filepath.Join(existing, rel))
		if err != nil {
			return nil, err
		}
		if !same {
			res.Differences = append(res.Differences, Difference{Path: rel, Kind: Changed})
		}
	}
	for rel := range have {
		if !want[rel] {
			res.Differences = append(res.Differences, Difference{Path: rel, Kind: Extra})
		}
	}

	sort.Slice(res.Differences, func(i, j int) bool {
		return res.Differences[i].Path < res.Differences[j].Path
	})
	res.UpToDate = len(res.Differences) == 0
	return res, nil
}

// factFiles lists fact files under root as slash-separated relative paths.
func factFiles(root string) (map[string]bool, error) {
	files := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != writer.Extension {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isResource(rel) {
			return nil
		}
		files[rel] = true
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list facts under %s", root)
	}
	return files, nil
}

func isResource(rel string) bool {
	for _, name := range resources.Names() {
		if rel == name {
			return true
		}
	}
	return false
}

// sameFact compares two fact files as terms. Files that do not parse are
// compared as trimmed text.
func sameFact(a, b string) (bool, error) {
	textA, err := os.ReadFile(a)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", a)
	}
	textB, err := os.ReadFile(b)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", b)
	}

	ta, errA := term.Parse(string(textA))
	tb, errB := term.Parse(string(textB))
	if errA != nil || errB != nil {
		return strings.TrimSpace(string(textA)) == strings.TrimSpace(string(textB)), nil
	}
	return term.Equal(ta, tb), nil
}
