package golang

import (
	"os"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/model"
)

// ReadModFile parses the go.mod at path.
func ReadModFile(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse %s", path), errors.ErrInvalidModel)
	}
	if f.Module == nil {
		return nil, errors.Mark(errors.Newf("%s has no module directive", path), errors.ErrInvalidModel)
	}
	return f, nil
}

// BuildModule maps a go.mod and the module's loaded packages onto a
// model.Module. Require lines become requires carrying version (and
// indirect) annotations. Every package is exported; internal packages are
// exported only to the module itself.
func BuildModule(f *modfile.File, pkgs []*model.Package, importPaths []string) *model.Module {
	m := &model.Module{
		Name:     Namespace(f.Module.Mod.Path),
		Packages: pkgs,
	}
	if f.Go != nil {
		m.Annotations = []model.Annotation{versionAnnotation("go", f.Go.Version)}
	}

	for _, r := range f.Require {
		anns := []model.Annotation{versionAnnotation("version", r.Mod.Version)}
		if r.Indirect {
			anns = append(anns, model.Annotation{Name: "indirect"})
		}
		m.Requires = append(m.Requires, model.Requires{
			Module:      Namespace(r.Mod.Path),
			Annotations: anns,
		})
	}

	for i, p := range pkgs {
		ex := model.Exports{Package: p.Name}
		if i < len(importPaths) && isInternal(importPaths[i]) {
			ex.To = []string{m.Name}
		}
		m.Exports = append(m.Exports, ex)
	}
	return m
}

func versionAnnotation(name, version string) model.Annotation {
	return model.Annotation{
		Name: name,
		Args: []model.AnnotationArg{{Name: "value", Value: model.StringValue(version)}},
	}
}

func isInternal(importPath string) bool {
	return strings.HasPrefix(importPath, "internal/") ||
		strings.Contains(importPath, "/internal/") ||
		strings.HasSuffix(importPath, "/internal") ||
		importPath == "internal"
}
