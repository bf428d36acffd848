package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/model"
)

// Symbols converts the document into model roots: modules first, then
// packages, then loose types, each in document order.
func (d *Document) Symbols() ([]model.Symbol, error) {
	var roots []model.Symbol
	for _, m := range d.Modules {
		mod, err := convertModule(m)
		if err != nil {
			return nil, err
		}
		roots = append(roots, mod)
	}
	for _, p := range d.Packages {
		pkg, err := convertPackage(p)
		if err != nil {
			return nil, err
		}
		roots = append(roots, pkg)
	}
	for _, t := range d.Types {
		c := &converter{pkg: t.Package}
		sym, err := c.member(t)
		if err != nil {
			return nil, err
		}
		roots = append(roots, sym)
	}
	return roots, nil
}

// converter carries the package and type-parameter scope of the member
// being converted.
type converter struct {
	pkg    string
	scope  []string
	parent *converter
}

func (c *converter) inScope(name string) bool {
	for s := c; s != nil; s = s.parent {
		for _, n := range s.scope {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (c *converter) with(params []TypeParamDoc) *converter {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return &converter{pkg: c.pkg, scope: names, parent: c}
}

func (c *converter) typ(s, where string) (model.TypeExpr, error) {
	t, err := ParseType(s, c.inScope)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", where)
	}
	return t, nil
}

func (c *converter) types(ss []string, where string) ([]model.TypeExpr, error) {
	out := make([]model.TypeExpr, 0, len(ss))
	for _, s := range ss {
		t, err := c.typ(s, where)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func convertModule(m ModuleDoc) (*model.Module, error) {
	c := &converter{}
	where := "module " + m.Name
	mod := &model.Module{
		Name:      m.Name,
		Modifiers: m.Modifiers,
		Doc:       m.Doc,
	}
	var err error
	if mod.Annotations, err = c.annotations(m.Annotations, where); err != nil {
		return nil, err
	}
	for _, r := range m.Requires {
		anns, err := c.annotations(r.Annotations, where)
		if err != nil {
			return nil, err
		}
		mod.Requires = append(mod.Requires, model.Requires{Module: r.Module, Modifiers: r.Modifiers, Annotations: anns})
	}
	for _, e := range m.Exports {
		anns, err := c.annotations(e.Annotations, where)
		if err != nil {
			return nil, err
		}
		mod.Exports = append(mod.Exports, model.Exports{Package: e.Package, To: e.To, Annotations: anns})
	}
	if mod.Uses, err = c.types(m.Uses, where); err != nil {
		return nil, err
	}
	for _, p := range m.Provides {
		svc, err := c.typ(p.Service, where)
		if err != nil {
			return nil, err
		}
		impls, err := c.types(p.Implementations, where)
		if err != nil {
			return nil, err
		}
		anns, err := c.annotations(p.Annotations, where)
		if err != nil {
			return nil, err
		}
		mod.Provides = append(mod.Provides, model.Provides{Service: svc, Implementations: impls, Annotations: anns})
	}
	for _, p := range m.Packages {
		pkg, err := convertPackage(p)
		if err != nil {
			return nil, err
		}
		mod.Packages = append(mod.Packages, pkg)
	}
	return mod, nil
}

func convertPackage(p PackageDoc) (*model.Package, error) {
	c := &converter{pkg: p.Name}
	pkg := &model.Package{Name: p.Name, Doc: p.Doc}
	for _, m := range p.Members {
		sym, err := c.member(m)
		if err != nil {
			return nil, err
		}
		pkg.Members = append(pkg.Members, sym)
	}
	return pkg, nil
}

// member classifies a declaration by its kind tag. Tags no kind set
// recognizes become model.Unsupported so the traversal can report them.
func (c *converter) member(m MemberDoc) (model.Symbol, error) {
	if k := model.ParseTypeKind(m.Kind); k != model.TypeKindUnsupported {
		return c.typeDecl(m, k)
	}
	if k := model.ParseExecutableKind(m.Kind); k != model.ExecutableUnsupported {
		return c.executable(m, k)
	}
	if k := model.ParseVariableKind(m.Kind); k != model.VariableUnsupported {
		return c.variable(m, k)
	}
	return &model.Unsupported{Kind: strings.ToUpper(m.Kind), Name: m.Name}, nil
}

func (c *converter) typeDecl(m MemberDoc, kind model.TypeKind) (*model.Type, error) {
	pkg := c.pkg
	if m.Package != "" {
		pkg = m.Package
	}
	inner := c.with(m.TypeParams)
	inner.pkg = pkg
	where := "type " + m.Name

	t := &model.Type{
		Kind:      kind,
		RawKind:   strings.ToUpper(m.Kind),
		Name:      m.Name,
		Package:   pkg,
		Modifiers: m.Modifiers,
		Permits:   m.Permits,
		Doc:       m.Doc,
	}
	var err error
	if t.TypeParams, err = inner.typeParams(m.TypeParams, where); err != nil {
		return nil, err
	}
	if t.Superclass, err = inner.typ(m.Extends, where); err != nil {
		return nil, err
	}
	if t.Interfaces, err = inner.types(m.Implements, where); err != nil {
		return nil, err
	}
	for _, comp := range m.Components {
		ct, err := inner.typ(comp.Type, where+" component "+comp.Name)
		if err != nil {
			return nil, err
		}
		anns, err := inner.annotations(comp.Annotations, where)
		if err != nil {
			return nil, err
		}
		t.Components = append(t.Components, model.RecordComponent{Name: comp.Name, Type: ct, Annotations: anns})
	}
	if t.Annotations, err = inner.annotations(m.Annotations, where); err != nil {
		return nil, err
	}
	for _, child := range m.Members {
		sym, err := inner.member(child)
		if err != nil {
			return nil, err
		}
		t.Members = append(t.Members, sym)
	}
	return t, nil
}

func (c *converter) executable(m MemberDoc, kind model.ExecutableKind) (*model.Executable, error) {
	inner := c.with(m.TypeParams)
	where := "executable " + m.Name

	x := &model.Executable{
		Kind:      kind,
		RawKind:   strings.ToUpper(m.Kind),
		Name:      m.Name,
		Modifiers: m.Modifiers,
		Doc:       m.Doc,
	}
	var err error
	if x.TypeParams, err = inner.typeParams(m.TypeParams, where); err != nil {
		return nil, err
	}
	if kind == model.ExecutableMethod {
		if x.Return, err = inner.typ(m.Returns, where); err != nil {
			return nil, err
		}
	}
	for _, p := range m.Params {
		pt, err := inner.typ(p.Type, where+" parameter "+p.Name)
		if err != nil {
			return nil, err
		}
		anns, err := inner.annotations(p.Annotations, where)
		if err != nil {
			return nil, err
		}
		x.Params = append(x.Params, model.Parameter{Name: p.Name, Type: pt, Modifiers: p.Modifiers, Annotations: anns})
	}
	if x.Throws, err = inner.types(m.Throws, where); err != nil {
		return nil, err
	}
	if x.Annotations, err = inner.annotations(m.Annotations, where); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *converter) variable(m MemberDoc, kind model.VariableKind) (*model.Variable, error) {
	where := "variable " + m.Name
	t, err := c.typ(m.Type, where)
	if err != nil {
		return nil, err
	}
	anns, err := c.annotations(m.Annotations, where)
	if err != nil {
		return nil, err
	}
	return &model.Variable{
		Kind:        kind,
		RawKind:     strings.ToUpper(m.Kind),
		Name:        m.Name,
		Modifiers:   m.Modifiers,
		Type:        t,
		Annotations: anns,
		Doc:         m.Doc,
	}, nil
}

func (c *converter) typeParams(ps []TypeParamDoc, where string) ([]model.TypeParam, error) {
	out := make([]model.TypeParam, 0, len(ps))
	for _, p := range ps {
		bounds, err := c.types(p.Bounds, where+" type parameter "+p.Name)
		if err != nil {
			return nil, err
		}
		anns, err := c.annotations(p.Annotations, where)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TypeParam{Name: p.Name, Bounds: bounds, Annotations: anns})
	}
	return out, nil
}

func (c *converter) annotations(as []AnnotationDoc, where string) ([]model.Annotation, error) {
	out := make([]model.Annotation, 0, len(as))
	for _, a := range as {
		ann, err := c.annotation(a, where)
		if err != nil {
			return nil, err
		}
		out = append(out, ann)
	}
	return out, nil
}

func (c *converter) annotation(a AnnotationDoc, where string) (model.Annotation, error) {
	ann := model.Annotation{Name: a.Name}
	for _, arg := range a.Args {
		v, err := c.value(arg, where+" @"+a.Name)
		if err != nil {
			return model.Annotation{}, err
		}
		ann.Args = append(ann.Args, model.AnnotationArg{Name: arg.Name, Value: v})
	}
	return ann, nil
}

// value converts an element value. Kinds no case recognizes become
// model.UnknownValue so the encoder can report them.
func (c *converter) value(a ArgDoc, where string) (model.Value, error) {
	kind := strings.ToLower(a.Kind)
	if kind == "" {
		kind = inferKind(a)
	}
	bad := func(format string, args ...interface{}) error {
		return errors.Mark(
			errors.Wrapf(errors.Newf(format, args...), "%s argument %s", where, a.Name),
			errors.ErrInvalidModel)
	}

	switch kind {
	case "bool", "boolean":
		switch v := a.Value.(type) {
		case bool:
			return model.BoolValue(v), nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, bad("not a boolean: %q", v)
			}
			return model.BoolValue(b), nil
		}
		return nil, bad("not a boolean: %v", a.Value)
	case "int", "long", "short", "byte":
		n, ok := toInt(a.Value)
		if !ok {
			return nil, bad("not an integer: %v", a.Value)
		}
		return model.IntValue(n), nil
	case "float", "double":
		f, ok := toFloat(a.Value)
		if !ok {
			return nil, bad("not a number: %v", a.Value)
		}
		return model.FloatValue(f), nil
	case "char":
		s, ok := a.Value.(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return nil, bad("not a single character: %v", a.Value)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return model.CharValue(r), nil
	case "string":
		s, ok := a.Value.(string)
		if !ok {
			return nil, bad("not a string: %v", a.Value)
		}
		return model.StringValue(s), nil
	case "type", "class":
		s, _ := a.Value.(string)
		t, err := c.typ(s, where)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, bad("empty type literal")
		}
		return model.TypeValue{Type: t}, nil
	case "enum":
		s, _ := a.Value.(string)
		dot := strings.LastIndex(s, ".")
		if dot <= 0 || dot == len(s)-1 {
			return nil, bad("enum value must read Enclosing.CONSTANT: %q", s)
		}
		return model.EnumValue{Enclosing: s[:dot], Constant: s[dot+1:]}, nil
	case "annotation":
		if a.Annotation == nil {
			return nil, bad("annotation value missing")
		}
		ann, err := c.annotation(*a.Annotation, where)
		if err != nil {
			return nil, err
		}
		return model.AnnotationValue{Annotation: ann}, nil
	case "array":
		out := make(model.ArrayValue, 0, len(a.Values))
		for _, el := range a.Values {
			v, err := c.value(el, where)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return model.UnknownValue{Description: kind}, nil
}

func inferKind(a ArgDoc) string {
	switch {
	case a.Annotation != nil:
		return "annotation"
	case a.Values != nil:
		return "array"
	}
	switch v := a.Value.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return "int"
		}
		return "float"
	}
	return fmt.Sprintf("%T", a.Value)
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 0, 64)
		return i, err == nil
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
