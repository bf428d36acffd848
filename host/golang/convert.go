package golang

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/teranos/logifact/model"
)

// Go has no access keywords: exported names are public and everything else
// carries no visibility modifier.
var modAbstract = []string{"public", "abstract"}

func visibility(exported bool, extra ...string) []string {
	var mods []string
	if exported {
		mods = append(mods, "public")
	}
	return append(mods, extra...)
}

// converter turns one type-checked package into a model.Package.
type converter struct {
	pkg   *types.Package
	info  *types.Info
	ns    string
	types map[string]*model.Type
	// enums holds the named basic types that have constants declared in
	// the package, keyed by type name.
	enums map[string]bool
}

// ConvertPackage maps a type-checked package onto the model.
//
// Type declarations come first, in source order. Methods and New<Type>
// constructors attach to their type; remaining funcs, vars and consts are
// static members of a final class named after the package, which follows
// the types. Constants of a named basic type turn that type into an enum.
func ConvertPackage(pkg *types.Package, info *types.Info, files []*ast.File) *model.Package {
	c := &converter{
		pkg:   pkg,
		info:  info,
		ns:    Namespace(pkg.Path()),
		types: make(map[string]*model.Type),
		enums: make(map[string]bool),
	}
	out := &model.Package{Name: c.ns}

	for _, f := range files {
		c.collectEnums(f)
		if f.Doc != nil && out.Doc == "" {
			out.Doc = strings.TrimSpace(f.Doc.Text())
		}
	}
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if s := c.typeDecl(ts, specDoc(gd, ts.Doc)); s != nil {
					out.Members = append(out.Members, s)
				}
			}
		}
	}
	var scope []model.Symbol
	for _, f := range files {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if s := c.funcDecl(d); s != nil {
					scope = append(scope, s)
				}
			case *ast.GenDecl:
				if d.Tok == token.VAR || d.Tok == token.CONST {
					scope = append(scope, c.valueDecl(d)...)
				}
			}
		}
	}
	if len(scope) > 0 {
		out.Members = append(out.Members, c.scopeType(scope))
	}
	return out
}

// scopeType holds a package's funcs, vars and consts. It is a final class
// named after the package, with a trailing underscore when a declared type
// already uses that name.
func (c *converter) scopeType(members []model.Symbol) *model.Type {
	name := c.pkg.Name()
	for c.types[name] != nil {
		name += "_"
	}
	return &model.Type{
		Kind:      model.TypeKindClass,
		RawKind:   "PACKAGE",
		Name:      name,
		Package:   c.ns,
		Modifiers: []string{"public", "final"},
		Members:   members,
	}
}

func specDoc(gd *ast.GenDecl, doc *ast.CommentGroup) string {
	if doc == nil && len(gd.Specs) == 1 {
		doc = gd.Doc
	}
	return strings.TrimSpace(doc.Text())
}

func (c *converter) collectEnums(f *ast.File) {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			for _, name := range spec.(*ast.ValueSpec).Names {
				if owner := c.enumOwner(name); owner != "" {
					c.enums[owner] = true
				}
			}
		}
	}
}

// enumOwner returns the local named basic type a constant belongs to.
func (c *converter) enumOwner(name *ast.Ident) string {
	obj, ok := c.info.Defs[name].(*types.Const)
	if !ok || name.Name == "_" {
		return ""
	}
	n, ok := obj.Type().(*types.Named)
	if !ok || n.Obj().Pkg() != c.pkg {
		return ""
	}
	if _, basic := n.Underlying().(*types.Basic); !basic {
		return ""
	}
	return n.Obj().Name()
}

func (c *converter) typeDecl(ts *ast.TypeSpec, doc string) model.Symbol {
	obj, ok := c.info.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil
	}
	if obj.IsAlias() {
		return &model.Unsupported{Kind: "ALIAS", Name: obj.Name()}
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return &model.Unsupported{Kind: "ALIAS", Name: obj.Name()}
	}

	t := &model.Type{
		Kind:       model.TypeKindClass,
		Name:       obj.Name(),
		Package:    c.ns,
		Modifiers:  visibility(obj.Exported()),
		TypeParams: typeParams(named.TypeParams()),
		Doc:        doc,
	}
	c.types[t.Name] = t

	switch u := named.Underlying().(type) {
	case *types.Struct:
		t.RawKind = "STRUCT"
		c.structMembers(t, u, ts.Type)
	case *types.Interface:
		t.Kind = model.TypeKindInterface
		c.interfaceMembers(t, ts.Type)
	case *types.Basic:
		if c.enums[t.Name] {
			t.Kind = model.TypeKindEnum
		} else {
			t.Superclass = typeExpr(u)
		}
	default:
		t.Superclass = typeExpr(u)
	}
	return t
}

// structMembers turns fields into field members. Embedded fields are
// listed as implemented types.
func (c *converter) structMembers(t *model.Type, st *types.Struct, expr ast.Expr) {
	docs := fieldDocs(expr)
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			t.Interfaces = append(t.Interfaces, typeExpr(f.Type()))
			continue
		}
		if f.Name() == "_" {
			continue
		}
		t.Members = append(t.Members, &model.Variable{
			Kind:        model.VariableField,
			Name:        f.Name(),
			Modifiers:   visibility(f.Exported()),
			Type:        typeExpr(f.Type()),
			Annotations: tagAnnotations(st.Tag(i)),
			Doc:         docs[f.Name()],
		})
	}
}

func fieldDocs(expr ast.Expr) map[string]string {
	docs := make(map[string]string)
	st, ok := expr.(*ast.StructType)
	if !ok || st.Fields == nil {
		return docs
	}
	for _, field := range st.Fields.List {
		text := strings.TrimSpace(field.Doc.Text())
		for _, n := range field.Names {
			docs[n.Name] = text
		}
	}
	return docs
}

// interfaceMembers walks the interface syntax so methods keep source
// order; go/types sorts them by name.
func (c *converter) interfaceMembers(t *model.Type, expr ast.Expr) {
	it, ok := expr.(*ast.InterfaceType)
	if !ok || it.Methods == nil {
		return
	}
	for _, field := range it.Methods.List {
		if len(field.Names) == 0 {
			if tv, ok := c.info.Types[field.Type]; ok {
				t.Interfaces = append(t.Interfaces, typeExpr(tv.Type))
			}
			continue
		}
		for _, n := range field.Names {
			fn, ok := c.info.Defs[n].(*types.Func)
			if !ok {
				continue
			}
			t.Members = append(t.Members, c.executable(fn, modAbstract, strings.TrimSpace(field.Doc.Text())))
		}
	}
}

func (c *converter) funcDecl(fd *ast.FuncDecl) model.Symbol {
	fn, ok := c.info.Defs[fd.Name].(*types.Func)
	if !ok || fd.Name.Name == "_" || fd.Name.Name == "init" {
		return nil
	}
	doc := strings.TrimSpace(fd.Doc.Text())

	if fd.Recv != nil {
		if owner := c.types[receiverName(fd.Recv)]; owner != nil {
			owner.Members = append(owner.Members, c.executable(fn, visibility(fn.Exported()), doc))
		}
		return nil
	}
	if owner := c.constructorOwner(fn); owner != nil {
		x := c.executable(fn, visibility(fn.Exported()), doc)
		x.Kind = model.ExecutableConstructor
		x.Name = owner.Name
		x.Return = nil
		owner.Members = append(owner.Members, x)
		return nil
	}
	return c.executable(fn, visibility(fn.Exported(), "static"), doc)
}

func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// constructorOwner matches New<Type> funcs whose first result is the local
// struct type <Type> or a pointer to it.
func (c *converter) constructorOwner(fn *types.Func) *model.Type {
	name, ok := strings.CutPrefix(fn.Name(), "New")
	if !ok || name == "" {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.Results().Len() == 0 {
		return nil
	}
	res := sig.Results().At(0).Type()
	if p, ok := res.(*types.Pointer); ok {
		res = p.Elem()
	}
	n, ok := res.(*types.Named)
	if !ok || n.Obj().Pkg() != c.pkg || n.Obj().Name() != name {
		return nil
	}
	owner := c.types[name]
	if owner == nil || owner.RawKind != "STRUCT" {
		return nil
	}
	return owner
}

// executable maps a func or method. A trailing error result becomes a
// throws entry; multiple remaining results collapse into a tuple.
func (c *converter) executable(fn *types.Func, mods []string, doc string) *model.Executable {
	sig := fn.Type().(*types.Signature)
	x := &model.Executable{
		Kind:       model.ExecutableMethod,
		Name:       fn.Name(),
		Modifiers:  mods,
		TypeParams: typeParams(sig.TypeParams()),
		Doc:        doc,
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		name := v.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		p := model.Parameter{Name: name, Type: typeExpr(v.Type())}
		if sig.Variadic() && i == params.Len()-1 {
			p.Modifiers = []string{"variadic"}
		}
		x.Params = append(x.Params, p)
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isError(results.At(n-1).Type()) {
		x.Throws = []model.TypeExpr{model.Ref("error")}
		n--
	}
	switch n {
	case 0:
		x.Return = model.Void()
	case 1:
		x.Return = typeExpr(results.At(0).Type())
	default:
		args := make([]model.TypeExpr, n)
		for i := range args {
			args[i] = typeExpr(results.At(i).Type())
		}
		x.Return = model.Ref("tuple", args...)
	}
	return x
}

// valueDecl maps package-level vars and consts. Constants of an enum type
// attach to the enum instead of the package.
func (c *converter) valueDecl(gd *ast.GenDecl) []model.Symbol {
	var out []model.Symbol
	for _, spec := range gd.Specs {
		vs := spec.(*ast.ValueSpec)
		doc := specDoc(gd, vs.Doc)
		for _, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			obj := c.info.Defs[name]
			if obj == nil {
				continue
			}
			v := &model.Variable{
				Kind: model.VariableField,
				Name: name.Name,
				Type: typeExpr(types.Default(obj.Type())),
				Doc:  doc,
			}
			if gd.Tok == token.CONST {
				v.Modifiers = visibility(obj.Exported(), "static", "final")
				if owner := c.enumOwner(name); owner != "" && c.types[owner] != nil {
					c.types[owner].Members = append(c.types[owner].Members, v)
					continue
				}
			} else {
				v.Modifiers = visibility(obj.Exported(), "static")
			}
			out = append(out, v)
		}
	}
	return out
}
