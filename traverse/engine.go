// Package traverse walks a program model depth-first and turns every module,
// package and type scope into a fact handed to a Writer.
//
// Each scope builds its member list in an accumulator that is created on
// entry, passed down to the children that append to it, and consumed when
// the scope's own fact is built. Accumulators and the module/package
// indices live on the stack of a single Walk, so one Engine can serve
// concurrent walks.
package traverse

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/logifact/encode"
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/model"
	"github.com/teranos/logifact/term"
)

// Index file names.
const (
	ModuleIndex  = "module_index"
	PackageIndex = "package_index"
)

// packageMember is the diagnostic kind for executables and variables found
// directly in a package.
const packageMember = "PACKAGE_MEMBER"

// DefaultImplicitSupertype is the root class whose extends slot renders null.
const DefaultImplicitSupertype = "java.lang.Object"

// Writer persists completed top-level facts keyed by namespace.
type Writer interface {
	WriteModule(ctx context.Context, module string, fact *term.Compound) error
	WritePackage(ctx context.Context, pkg string, fact *term.Compound) error
	WriteType(ctx context.Context, pkg, name string, fact *term.Compound) error
	WriteIndex(ctx context.Context, name string, fact *term.Compound) error
}

// Options configure fact content.
type Options struct {
	// IncludeDocs embeds documentation text (full mode). Otherwise every
	// documentation slot is ''.
	IncludeDocs bool
	// ImplicitSupertype is omitted from extends slots. Empty means
	// DefaultImplicitSupertype.
	ImplicitSupertype string
}

// Engine converts symbol trees into facts.
type Engine struct {
	writer Writer
	opts   Options
	logger *zap.SugaredLogger
}

// New creates an engine writing to w.
func New(w Writer, opts Options, log *zap.SugaredLogger) *Engine {
	if opts.ImplicitSupertype == "" {
		opts.ImplicitSupertype = DefaultImplicitSupertype
	}
	if log == nil {
		log = logger.ComponentLogger("traverse")
	}
	return &Engine{writer: w, opts: opts, logger: log}
}

// Result summarises one walk.
type Result struct {
	// ModuleIndex is nil when the walk saw no modules.
	ModuleIndex  *term.Compound
	PackageIndex *term.Compound
	Modules      int
	Packages     int
	Types        int
	Diagnostics  []encode.Diagnostic
	Duration     time.Duration
}

// Facts returns the number of facts handed to the writer during the walk,
// excluding indices.
func (r *Result) Facts() int {
	return r.Modules + r.Packages + r.Types
}

// accumulator collects the member facts of one scope, in visit order.
type accumulator []*term.Compound

// walk holds what one Walk call shares across scopes. It never outlives
// the call.
type walk struct {
	ctx        context.Context
	engine     *Engine
	enc        *encode.Encoder
	restricted map[string]bool
	written    map[string]bool
	modules    []term.Term
	packages   []term.Term
	result     *Result
}

// Run asks p for its roots, walks them and writes the index facts.
func (e *Engine) Run(ctx context.Context, p model.Provider) (*Result, error) {
	roots, err := p.Roots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load program model")
	}
	res, err := e.Walk(ctx, roots)
	if err != nil {
		return res, err
	}
	if err := e.WriteIndices(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// WriteIndices persists the index facts of a completed walk. The module
// index is only written when modules were seen.
func (e *Engine) WriteIndices(ctx context.Context, res *Result) error {
	if res.ModuleIndex != nil {
		if err := e.writer.WriteIndex(ctx, ModuleIndex, res.ModuleIndex); err != nil {
			return errors.WrapPersistence(err, ModuleIndex)
		}
	}
	if err := e.writer.WriteIndex(ctx, PackageIndex, res.PackageIndex); err != nil {
		return errors.WrapPersistence(err, PackageIndex)
	}
	return nil
}

// Walk traverses roots, writing every module, package and type fact, and
// returns the indices without writing them. It stops at the first writer
// failure or context cancellation.
func (e *Engine) Walk(ctx context.Context, roots []model.Symbol) (*Result, error) {
	start := time.Now()
	res := &Result{}
	w := &walk{
		ctx:        ctx,
		engine:     e,
		restricted: restrictedPackages(roots),
		written:    make(map[string]bool),
		result:     res,
	}
	w.enc = encode.New(e.logger, func(d encode.Diagnostic) {
		res.Diagnostics = append(res.Diagnostics, d)
	})

	for _, root := range roots {
		if err := w.root(root); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
	}

	if len(w.modules) > 0 {
		res.ModuleIndex = term.NewCompound(ModuleIndex, term.NewList(w.modules...))
	}
	res.PackageIndex = term.NewCompound(PackageIndex, term.NewList(w.packages...))
	res.Duration = time.Since(start)

	e.logger.Infow("Walk complete",
		"modules", res.Modules,
		"packages", res.Packages,
		"types", res.Types,
		"diagnostics", len(res.Diagnostics),
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}

// restrictedPackages gathers every package exported only to named modules,
// across all modules, so the package index does not depend on root order.
func restrictedPackages(roots []model.Symbol) map[string]bool {
	restricted := make(map[string]bool)
	for _, s := range roots {
		m, ok := s.(*model.Module)
		if !ok {
			continue
		}
		for _, ex := range m.Exports {
			if ex.Restricted() {
				restricted[ex.Package] = true
			}
		}
	}
	return restricted
}

func (w *walk) root(s model.Symbol) error {
	switch v := s.(type) {
	case *model.Module:
		return w.module(v)
	case *model.Package:
		return w.pkg(v)
	case *model.Type:
		// A type listed on its own has no enclosing scope; its marker is dropped.
		_, err := w.typeDecl(v, v.Package, nil)
		return err
	case *model.Variable:
		if v.Kind != model.VariableField {
			return nil
		}
		w.enc.In(v.Name).Unsupported(v.Kind.String(), "field %s outside any type", v.Name)
		return nil
	case *model.Executable:
		w.enc.In(v.Name).Unsupported(v.Kind.String(), "executable %s outside any type", v.Name)
		return nil
	case *model.Unsupported:
		w.enc.In(v.Name).Unsupported(v.Kind, "declaration kind %s", v.Kind)
		return nil
	default:
		w.enc.Unsupported("symbol", "symbol %T", s)
		return nil
	}
}

func (w *walk) module(m *model.Module) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	enc := w.enc.In(m.Name)

	requires := make([]term.Term, 0, len(m.Requires))
	for _, r := range m.Requires {
		if r.Module == "java.base" && len(r.Modifiers) == 0 {
			continue
		}
		requires = append(requires, term.NewCompound("requires",
			term.Atoms(r.Modifiers...),
			term.Atom(r.Module),
			enc.Annotations(r.Annotations),
		))
	}

	exports := make([]term.Term, len(m.Exports))
	for i, ex := range m.Exports {
		exports[i] = term.NewCompound("exports",
			term.Atom(ex.Package),
			term.Atoms(ex.To...),
			enc.Annotations(ex.Annotations),
		)
	}

	provides := make([]term.Term, len(m.Provides))
	for i, p := range m.Provides {
		provides[i] = term.NewCompound("provides",
			enc.Type(p.Service),
			enc.Types(p.Implementations),
			enc.Annotations(p.Annotations),
		)
	}

	names := make([]string, len(m.Packages))
	for i, p := range m.Packages {
		names[i] = p.Name
	}

	fact := term.NewCompound("module",
		term.Atom(m.Name),
		encode.Modifiers(m.Modifiers),
		term.NewList(requires...),
		term.NewList(exports...),
		enc.Types(m.Uses),
		term.NewList(provides...),
		term.Atoms(names...),
	)
	if err := w.engine.writer.WriteModule(w.ctx, m.Name, fact); err != nil {
		return errors.WrapPersistence(err, "module "+m.Name)
	}
	w.modules = append(w.modules, term.Atom(m.Name))
	w.result.Modules++
	w.engine.logger.Debugw("Module written", logger.FieldModule, m.Name, "packages", len(m.Packages))

	for _, p := range m.Packages {
		if err := w.pkg(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) pkg(p *model.Package) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if w.written[p.Name] {
		return nil
	}
	w.written[p.Name] = true

	members := accumulator{}
	for _, s := range p.Members {
		var err error
		if members, err = w.member(s, p.Name, members, w.enc.In(p.Name), false); err != nil {
			return err
		}
	}

	fact := term.NewCompound("package_declaration",
		term.Atom(p.Name),
		term.ListOf(members),
	)
	if err := w.engine.writer.WritePackage(w.ctx, p.Name, fact); err != nil {
		return errors.WrapPersistence(err, "package "+p.Name)
	}
	if !w.restricted[p.Name] {
		w.packages = append(w.packages, term.Atom(p.Name))
	}
	w.result.Packages++
	w.engine.logger.Debugw("Package written",
		logger.FieldPackage, p.Name,
		"members", len(members),
		"restricted", w.restricted[p.Name])
	return nil
}

// member visits one symbol declared directly in a package or type scope
// and returns the scope's accumulator with the symbol's fact appended.
// Executables and variables only belong to types; at package scope they
// are reported and skipped.
func (w *walk) member(s model.Symbol, pkg string, acc accumulator, enc *encode.Encoder, inType bool) (accumulator, error) {
	switch v := s.(type) {
	case *model.Type:
		return w.typeDecl(v, pkg, acc)
	case *model.Executable:
		if !inType {
			enc.Unsupported(packageMember, "%s %s declared outside a type", v.Kind, v.Name)
			break
		}
		if f := w.executable(v, enc); f != nil {
			acc = append(acc, f)
		}
	case *model.Variable:
		if !inType {
			enc.Unsupported(packageMember, "%s %s declared outside a type", v.Kind, v.Name)
			break
		}
		if f := w.variable(v, enc); f != nil {
			acc = append(acc, f)
		}
	case *model.Unsupported:
		enc.Unsupported(v.Kind, "declaration kind %s for %s", v.Kind, v.Name)
	case *model.Module, *model.Package:
		enc.Unsupported("scope", "%T %s nested in %s", s, s.SymbolName(), enc.Scope())
	default:
		enc.Unsupported("symbol", "symbol %T", s)
	}
	return acc, nil
}

// typeDecl visits a type scope, writes the type's own fact and returns the
// enclosing accumulator with a type_declaration marker appended.
func (w *walk) typeDecl(t *model.Type, pkg string, outer accumulator) (accumulator, error) {
	if err := w.ctx.Err(); err != nil {
		return outer, err
	}
	qualified := t.Name
	if pkg != "" {
		qualified = pkg + "." + t.Name
	}
	enc := w.enc.In(qualified)

	if t.Kind == model.TypeKindUnsupported {
		raw := t.RawKind
		if raw == "" {
			raw = t.Kind.String()
		}
		enc.Unsupported(raw, "type kind %s for %s", raw, qualified)
		return outer, nil
	}

	members := accumulator{}
	for _, s := range t.Members {
		var err error
		if members, err = w.member(s, pkg, members, enc, true); err != nil {
			return outer, err
		}
	}

	fact := w.typeFact(t, pkg, members, enc)
	if err := w.engine.writer.WriteType(w.ctx, pkg, t.Name, fact); err != nil {
		return outer, errors.WrapPersistence(err, "type "+qualified)
	}
	w.result.Types++
	w.engine.logger.Debugw("Type written",
		logger.FieldType, qualified,
		logger.FieldKind, t.Kind.String(),
		"members", len(members))

	marker := term.NewCompound("type_declaration", term.Atom(t.Name), term.Atom(t.Kind.String()))
	return append(outer, marker), nil
}

func (w *walk) typeFact(t *model.Type, pkg string, members accumulator, enc *encode.Encoder) *term.Compound {
	name := term.Atom(t.Name)
	pkgAtom := term.Atom(pkg)
	mods := encode.Modifiers(t.Modifiers)
	memberList := term.ListOf(members)
	annotations := enc.Annotations(t.Annotations)
	doc := encode.Doc(t.Doc, w.engine.opts.IncludeDocs)

	switch t.Kind {
	case model.TypeKindClass:
		return term.NewCompound("class",
			name, pkgAtom, mods,
			enc.TypeParams(t.TypeParams),
			enc.Extends(t.Superclass, w.engine.opts.ImplicitSupertype),
			enc.Implements(t.Interfaces),
			term.Atoms(t.Permits...),
			memberList, annotations, doc,
		)
	case model.TypeKindInterface:
		permits := make([]term.Term, len(t.Permits))
		for i, p := range t.Permits {
			permits[i] = term.NewCompound("declared_type", term.Atom(p), term.EmptyList())
		}
		return term.NewCompound("interface",
			name, pkgAtom, mods,
			enc.TypeParams(t.TypeParams),
			enc.Implements(t.Interfaces),
			memberList, annotations,
			term.NewList(permits...),
			doc,
		)
	case model.TypeKindEnum:
		return term.NewCompound("enum",
			name, pkgAtom, mods,
			enc.Implements(t.Interfaces),
			memberList, annotations, doc,
		)
	case model.TypeKindAnnotation:
		return term.NewCompound("annotation_type",
			name, pkgAtom, mods,
			memberList, annotations, doc,
		)
	case model.TypeKindRecord:
		components := make([]term.Term, len(t.Components))
		for i, c := range t.Components {
			components[i] = term.NewCompound("record_component",
				term.Atom(c.Name),
				enc.Type(c.Type),
				enc.Annotations(c.Annotations),
			)
		}
		return term.NewCompound("record",
			name, pkgAtom, mods,
			enc.TypeParams(t.TypeParams),
			enc.Implements(t.Interfaces),
			term.NewList(components...),
			memberList, annotations, doc,
		)
	}
	// typeDecl filters unsupported kinds before building facts
	panic(errors.AssertionFailedf("unhandled type kind %d", t.Kind))
}

func (w *walk) executable(x *model.Executable, enc *encode.Encoder) *term.Compound {
	doc := encode.Doc(x.Doc, w.engine.opts.IncludeDocs)
	switch x.Kind {
	case model.ExecutableMethod:
		ret := x.Return
		if ret == nil {
			ret = model.Void()
		}
		return term.NewCompound("method",
			term.Atom(x.Name),
			encode.Modifiers(x.Modifiers),
			enc.TypeParams(x.TypeParams),
			enc.Type(ret),
			enc.Params(x.Params),
			enc.Throws(x.Throws),
			enc.Annotations(x.Annotations),
			doc,
		)
	case model.ExecutableConstructor:
		return term.NewCompound("constructor",
			term.Atom(x.Name),
			encode.Modifiers(x.Modifiers),
			enc.TypeParams(x.TypeParams),
			enc.Params(x.Params),
			enc.Throws(x.Throws),
			enc.Annotations(x.Annotations),
			doc,
		)
	default:
		kind := x.RawKind
		if kind == "" {
			kind = x.Kind.String()
		}
		enc.Unsupported(kind, "executable kind %s for %s", kind, x.Name)
		return nil
	}
}

func (w *walk) variable(v *model.Variable, enc *encode.Encoder) *term.Compound {
	switch v.Kind {
	case model.VariableField:
		return term.NewCompound("field",
			term.Atom(v.Name),
			encode.Modifiers(v.Modifiers),
			enc.Type(v.Type),
			enc.Annotations(v.Annotations),
			encode.Doc(v.Doc, w.engine.opts.IncludeDocs),
		)
	case model.VariableEnumConstant, model.VariableParameter, model.VariableLocal,
		model.VariableResource, model.VariableExceptionParam:
		// owned by the scopes that declare them
		return nil
	default:
		kind := v.RawKind
		if kind == "" {
			kind = v.Kind.String()
		}
		enc.Unsupported(kind, "variable kind %s for %s", kind, v.Name)
		return nil
	}
}
