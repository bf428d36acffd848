// Package golang builds the program model from Go source.
//
// Packages are loaded and type-checked with golang.org/x/tools/go/packages
// and mapped onto model symbols: structs become classes, interfaces become
// interfaces, named basic types with constants become enums and every other
// named type becomes a class extending its underlying type. The enclosing
// go.mod becomes the module.
package golang

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/model"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedModule

// Loader serves the packages matching patterns under dir.
type Loader struct {
	dir      string
	patterns []string
	logger   *zap.SugaredLogger
}

// NewLoader returns a loader for patterns (default ./...) resolved in dir.
// Packages are reloaded on every call to Roots.
func NewLoader(dir string, patterns []string, log *zap.SugaredLogger) *Loader {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	if log == nil {
		log = logger.ComponentLogger("golang")
	}
	return &Loader{dir: dir, patterns: patterns, logger: log}
}

// Roots loads and converts the matching packages. Packages that belong to
// a module are grouped under it; the rest are returned as bare packages.
func (l *Loader) Roots(ctx context.Context) ([]model.Symbol, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     l.dir,
		Mode:    loadMode,
	}
	pkgs, err := packages.Load(cfg, l.patterns...)
	if err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "failed to load packages %s", strings.Join(l.patterns, " ")),
			errors.ErrInvalidModel)
	}
	if err := loadErrors(pkgs); err != nil {
		return nil, err
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	type group struct {
		mod   *packages.Module
		pkgs  []*model.Package
		paths []string
	}
	var (
		groups []*group
		byPath = make(map[string]*group)
		loose  []model.Symbol
	)
	for _, p := range pkgs {
		mp := ConvertPackage(p.Types, p.TypesInfo, p.Syntax)
		l.logger.Debugw("Package converted",
			logger.FieldPackage, p.PkgPath,
			"files", len(p.Syntax),
			"members", len(mp.Members))

		if p.Module == nil || p.Module.GoMod == "" {
			loose = append(loose, mp)
			continue
		}
		g := byPath[p.Module.Path]
		if g == nil {
			g = &group{mod: p.Module}
			byPath[p.Module.Path] = g
			groups = append(groups, g)
		}
		g.pkgs = append(g.pkgs, mp)
		g.paths = append(g.paths, p.PkgPath)
	}

	roots := make([]model.Symbol, 0, len(groups)+len(loose))
	for _, g := range groups {
		f, err := ReadModFile(g.mod.GoMod)
		if err != nil {
			return nil, err
		}
		roots = append(roots, BuildModule(f, g.pkgs, g.paths))
		l.logger.Debugw("Module built",
			logger.FieldModule, g.mod.Path,
			"packages", len(g.pkgs),
			"requires", len(f.Require))
	}
	roots = append(roots, loose...)

	l.logger.Infow("Go packages loaded",
		logger.FieldPath, l.dir,
		"packages", len(pkgs),
		"modules", len(groups))
	return roots, nil
}

// loadErrors collects the errors go/packages reports per package, which
// Load itself does not return.
func loadErrors(pkgs []*packages.Package) error {
	var msgs []string
	for _, p := range pkgs {
		for _, e := range p.Errors {
			msgs = append(msgs, e.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	err := errors.Newf("%d package error(s), first: %s", len(msgs), msgs[0])
	err = errors.WithDetail(err, strings.Join(msgs, "\n"))
	err = errors.WithHint(err, "the source must type-check; run 'go build' in the loaded directory")
	return errors.Mark(err, errors.ErrInvalidModel)
}
