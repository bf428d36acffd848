package writer

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/term"
)

// Default permissions for generated output.
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// FileWriter writes fact files under a root directory.
type FileWriter struct {
	root   string
	render Renderer
	logger *zap.SugaredLogger

	mu      sync.Mutex
	written []string
}

// Option configures a FileWriter or Memory writer.
type Option func(*options)

type options struct {
	render Renderer
	logger *zap.SugaredLogger
}

// WithRenderer selects compact (default) or pretty output.
func WithRenderer(r Renderer) Option {
	return func(o *options) { o.render = r }
}

// WithLogger sets the writer's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{render: Compact}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.ComponentLogger("writer")
	}
	return o
}

// NewFileWriter returns a writer rooted at root. Directories are created on
// demand.
func NewFileWriter(root string, opts ...Option) *FileWriter {
	o := buildOptions(opts)
	return &FileWriter{root: root, render: o.render, logger: o.logger}
}

// Written returns the relative paths written so far, in order.
func (w *FileWriter) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.written))
	copy(out, w.written)
	return out
}

func (w *FileWriter) WriteModule(ctx context.Context, module string, fact *term.Compound) error {
	return w.write(ctx, ModulePath(module), fact)
}

func (w *FileWriter) WritePackage(ctx context.Context, pkg string, fact *term.Compound) error {
	return w.write(ctx, PackagePath(pkg), fact)
}

func (w *FileWriter) WriteType(ctx context.Context, pkg, name string, fact *term.Compound) error {
	return w.write(ctx, TypePath(pkg, name), fact)
}

func (w *FileWriter) WriteIndex(ctx context.Context, name string, fact *term.Compound) error {
	return w.write(ctx, IndexPath(name), fact)
}

func (w *FileWriter) write(ctx context.Context, rel string, fact *term.Compound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), DefaultDirPermissions); err != nil {
		return errors.WrapPersistence(err, full)
	}
	if err := os.WriteFile(full, []byte(w.render(fact)), DefaultFilePermissions); err != nil {
		return errors.WrapPersistence(err, full)
	}

	w.mu.Lock()
	w.written = append(w.written, rel)
	w.mu.Unlock()

	w.logger.Debugw("Fact written", logger.FieldPath, full, logger.FieldKind, fact.Name())
	return nil
}
