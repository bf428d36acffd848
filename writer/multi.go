package writer

import (
	"context"

	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/traverse"
)

// multi fans every fact out to several writers in order, stopping at the
// first failure.
type multi []traverse.Writer

// Multi combines writers. Nil entries are ignored.
func Multi(ws ...traverse.Writer) traverse.Writer {
	var m multi
	for _, w := range ws {
		if w != nil {
			m = append(m, w)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) WriteModule(ctx context.Context, module string, fact *term.Compound) error {
	for _, w := range m {
		if err := w.WriteModule(ctx, module, fact); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) WritePackage(ctx context.Context, pkg string, fact *term.Compound) error {
	for _, w := range m {
		if err := w.WritePackage(ctx, pkg, fact); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) WriteType(ctx context.Context, pkg, name string, fact *term.Compound) error {
	for _, w := range m {
		if err := w.WriteType(ctx, pkg, name, fact); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) WriteIndex(ctx context.Context, name string, fact *term.Compound) error {
	for _, w := range m {
		if err := w.WriteIndex(ctx, name, fact); err != nil {
			return err
		}
	}
	return nil
}
