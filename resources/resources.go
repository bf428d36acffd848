// Package resources embeds the guidance files copied next to generated facts.
package resources

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/teranos/logifact/errors"
)

//go:embed files/LLM_context.md files/java_metastructure.pl files/templates/master_LLM_context.md.template
var files embed.FS

const base = "files"

// Names of the embedded resources, relative to the output root.
const (
	LLMContext     = "LLM_context.md"
	Metastructure  = "java_metastructure.pl"
	MasterTemplate = "templates/master_LLM_context.md.template"
)

// Names lists every resource in copy order.
func Names() []string {
	return []string{LLMContext, Metastructure, MasterTemplate}
}

// Read returns an embedded resource by name.
func Read(name string) ([]byte, error) {
	data, err := files.ReadFile(path.Join(base, name))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "resource %s", name), errors.ErrNotFound)
	}
	return data, nil
}

// CopyTo writes every resource under root, replacing existing copies, and
// returns the paths written.
func CopyTo(root string) ([]string, error) {
	written := make([]string, 0, len(Names()))
	err := fs.WalkDir(files, base, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := p[len(base)+1:]
		data, err := files.ReadFile(p)
		if err != nil {
			return errors.Wrapf(err, "read resource %s", rel)
		}
		dest := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.WrapPersistence(err, dest)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return errors.WrapPersistence(err, dest)
		}
		written = append(written, dest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}
