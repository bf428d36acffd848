// Package generate runs the fact pipeline end to end: a host provider
// feeds the traversal engine once per output variant, writing fact files
// and, when enabled, recording the run in the fact store.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/logifact/check"
	"github.com/teranos/logifact/config"
	"github.com/teranos/logifact/db"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/host/document"
	"github.com/teranos/logifact/host/golang"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/model"
	"github.com/teranos/logifact/resources"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/traverse"
	"github.com/teranos/logifact/version"
	"github.com/teranos/logifact/writer"
)

// Options is one fully resolved generation request.
type Options struct {
	Host   string
	Inputs []string
	// Dir is the working directory for the go host.
	Dir string

	Root          string
	Mode          writer.Mode
	Pretty        bool
	Indent        int
	CopyResources bool

	ImplicitSupertype string
	Strict            bool

	// StorePath enables the fact store when non-empty.
	StorePath string
}

// FromConfig resolves cfg into Options.
func FromConfig(cfg *config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	mode, err := writer.ParseMode(cfg.Output.Mode)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Host:              cfg.Input.Host,
		Inputs:            cfg.Input.Paths,
		Dir:               cfg.Input.Dir,
		Root:              cfg.Output.Root,
		Mode:              mode,
		Pretty:            cfg.Output.Pretty,
		Indent:            cfg.Output.Indent,
		CopyResources:     cfg.Output.CopyResources,
		ImplicitSupertype: cfg.Engine.ImplicitSupertype,
		Strict:            cfg.Engine.Strict,
	}
	if cfg.Store.Enabled {
		opts.StorePath = cfg.Store.Path
	}
	return opts, nil
}

// Provider builds the host provider for opts.
func Provider(opts Options, log *zap.SugaredLogger) (model.Provider, error) {
	if log == nil {
		log = logger.ComponentLogger("generate")
	}
	switch opts.Host {
	case config.HostDocument, "":
		if len(opts.Inputs) == 0 {
			return nil, errors.WithHint(
				errors.New("no model documents given"),
				"pass model files as arguments or set input.paths")
		}
		return document.NewProvider(opts.Inputs, log.Named("document")), nil
	case config.HostGo:
		return golang.NewLoader(opts.Dir, opts.Inputs, log.Named("golang")), nil
	}
	return nil, errors.Mark(
		errors.WithHintf(errors.Newf("unknown input host %q", opts.Host),
			"valid hosts: %s, %s", config.HostDocument, config.HostGo),
		errors.ErrInvalidConfig)
}

// TargetResult is the outcome of one output variant.
type TargetResult struct {
	Target writer.Target
	Result *traverse.Result
	Files  []string
	RunID  string
}

// Summary is the outcome of a Run.
type Summary struct {
	Targets   []TargetResult
	Resources []string
	Duration  time.Duration
}

// Facts totals the facts written across targets, indices included.
func (s *Summary) Facts() int {
	n := 0
	for _, t := range s.Targets {
		n += len(t.Files)
	}
	return n
}

// Diagnostics returns the diagnostics of the first target. Every target
// walks the same roots, so later targets repeat them.
func (s *Summary) Diagnostics() []error {
	if len(s.Targets) == 0 || s.Targets[0].Result == nil {
		return nil
	}
	var out []error
	for _, d := range s.Targets[0].Result.Diagnostics {
		out = append(out, d)
	}
	return out
}

// Run loads the model once and writes every target of opts.Mode.
func Run(ctx context.Context, opts Options, log *zap.SugaredLogger) (*Summary, error) {
	if log == nil {
		log = logger.ComponentLogger("generate")
	}
	start := time.Now()

	p, err := Provider(opts, log)
	if err != nil {
		return nil, err
	}
	roots, err := p.Roots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load program model")
	}

	var store *db.Store
	if opts.StorePath != "" {
		store, err = db.OpenStore(ctx, opts.StorePath, version.FactFormat, log.Named("store"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open fact store %s", opts.StorePath)
		}
		defer store.Close()
	}

	summary := &Summary{}
	for _, target := range opts.Mode.Targets(opts.Root) {
		tr, err := runTarget(ctx, roots, target, opts, store, log)
		if tr != nil {
			summary.Targets = append(summary.Targets, *tr)
		}
		if err != nil {
			return summary, err
		}
	}
	if opts.CopyResources {
		written, err := resources.CopyTo(opts.Root)
		if err != nil {
			return summary, errors.Wrapf(err, "failed to copy resources to %s", opts.Root)
		}
		summary.Resources = written
	}
	summary.Duration = time.Since(start)

	log.Infow("Generation complete",
		logger.FieldMode, string(opts.Mode),
		logger.FieldFacts, summary.Facts(),
		logger.FieldDurationMS, summary.Duration.Milliseconds())

	if opts.Strict {
		if err := strictError(summary.Diagnostics()); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func runTarget(ctx context.Context, roots []model.Symbol, target writer.Target, opts Options,
	store *db.Store, log *zap.SugaredLogger) (*TargetResult, error) {
	files := writer.NewFileWriter(target.Dir,
		writer.WithRenderer(Renderer(opts)),
		writer.WithLogger(log.Named("writer")))

	tr := &TargetResult{Target: target}
	var w traverse.Writer = files
	if store != nil {
		id, err := store.BeginRun(ctx, target.Name)
		if err != nil {
			return nil, err
		}
		tr.RunID = id
		w = writer.Multi(files, store)
	}

	engine := traverse.New(w, traverse.Options{
		IncludeDocs:       target.IncludeDocs,
		ImplicitSupertype: opts.ImplicitSupertype,
	}, log.Named("traverse"))

	res, err := engine.Run(ctx, model.Static(roots))
	tr.Result = res
	tr.Files = files.Written()
	if err != nil {
		return tr, errors.Wrapf(err, "failed to generate %s facts", target.Name)
	}

	if store != nil {
		if err := store.FinishRun(ctx, len(res.Diagnostics)); err != nil {
			return tr, err
		}
	}
	log.Infow("Target written",
		logger.FieldMode, target.Name,
		logger.FieldPath, target.Dir,
		logger.FieldRunID, tr.RunID,
		logger.FieldCount, len(tr.Files))
	return tr, nil
}

// Renderer selects compact or pretty output for opts.
func Renderer(opts Options) writer.Renderer {
	if opts.Pretty {
		return writer.Pretty(term.IndentWidth(opts.Indent))
	}
	return writer.Compact
}

func strictError(diags []error) error {
	if len(diags) == 0 {
		return nil
	}
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, d.Error())
	}
	return errors.WithDetail(
		errors.Mark(
			errors.Newf("%d unsupported declaration(s) in strict mode", len(diags)),
			errors.ErrUnsupportedVariant),
		strings.Join(lines, "\n"))
}

// Check regenerates every target of opts into scratch directories and
// compares each with what is on disk under opts.Root.
func Check(ctx context.Context, opts Options, log *zap.SugaredLogger) (map[string]*check.Result, error) {
	if log == nil {
		log = logger.ComponentLogger("check")
	}
	p, err := Provider(opts, log)
	if err != nil {
		return nil, err
	}
	roots, err := p.Roots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load program model")
	}

	results := make(map[string]*check.Result)
	for _, target := range opts.Mode.Targets(opts.Root) {
		gen := func(ctx context.Context, dir string) error {
			scratch := writer.Target{Name: target.Name, Dir: dir, IncludeDocs: target.IncludeDocs}
			_, err := runTarget(ctx, roots, scratch, opts, nil, log)
			return err
		}
		res, err := check.Run(ctx, target.Dir, gen, log)
		if err != nil {
			return results, errors.Wrapf(err, "failed to check %s", target.Name)
		}
		results[target.Name] = res
	}
	return results, nil
}

// Describe is a one-line human summary of a target.
func Describe(t TargetResult) string {
	if t.Result == nil {
		return fmt.Sprintf("%s: no facts", t.Target.Name)
	}
	return fmt.Sprintf("%s: %d modules, %d packages, %d types, %d files",
		t.Target.Name, t.Result.Modules, t.Result.Packages, t.Result.Types, len(t.Files))
}
