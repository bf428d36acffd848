package writer

import (
	"context"
	"sort"
	"sync"

	"github.com/teranos/logifact/term"
)

// Memory keeps rendered fact files in memory, keyed by the relative path a
// FileWriter would use.
type Memory struct {
	render Renderer

	mu    sync.RWMutex
	files map[string]string
}

// NewMemory returns an empty in-memory writer.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{render: o.render, files: make(map[string]string)}
}

func (m *Memory) WriteModule(ctx context.Context, module string, fact *term.Compound) error {
	return m.put(ctx, ModulePath(module), fact)
}

func (m *Memory) WritePackage(ctx context.Context, pkg string, fact *term.Compound) error {
	return m.put(ctx, PackagePath(pkg), fact)
}

func (m *Memory) WriteType(ctx context.Context, pkg, name string, fact *term.Compound) error {
	return m.put(ctx, TypePath(pkg, name), fact)
}

func (m *Memory) WriteIndex(ctx context.Context, name string, fact *term.Compound) error {
	return m.put(ctx, IndexPath(name), fact)
}

func (m *Memory) put(ctx context.Context, rel string, fact *term.Compound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.files[rel] = m.render(fact)
	m.mu.Unlock()
	return nil
}

// File returns the content stored at a relative path.
func (m *Memory) File(rel string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.files[rel]
	return s, ok
}

// Paths returns every stored relative path, sorted.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
