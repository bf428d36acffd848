package document

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/model"
)

// Provider serves the roots of one or more model files, in argument order.
type Provider struct {
	paths  []string
	logger *zap.SugaredLogger
}

// NewProvider returns a provider over paths. Files are read on every call
// to Roots, so a watcher can reuse one provider across runs.
func NewProvider(paths []string, log *zap.SugaredLogger) *Provider {
	if log == nil {
		log = logger.ComponentLogger("document")
	}
	return &Provider{paths: paths, logger: log}
}

// Paths returns the model files the provider reads.
func (p *Provider) Paths() []string { return p.paths }

func (p *Provider) Roots(ctx context.Context) ([]model.Symbol, error) {
	var roots []model.Symbol
	for _, path := range p.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		syms, err := doc.Symbols()
		if err != nil {
			return nil, err
		}
		p.logger.Debugw("Model loaded",
			logger.FieldFile, path,
			"modules", len(doc.Modules),
			"packages", len(doc.Packages),
			"types", len(doc.Types))
		roots = append(roots, syms...)
	}
	return roots, nil
}
