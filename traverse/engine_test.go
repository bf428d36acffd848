package traverse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/model"
	"github.com/teranos/logifact/term"
)

// recordingWriter keeps every fact keyed the way a file writer would lay it out.
type recordingWriter struct {
	facts  map[string]*term.Compound
	order  []string
	failOn string
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{facts: make(map[string]*term.Compound)}
}

func (r *recordingWriter) put(key string, fact *term.Compound) error {
	if key == r.failOn {
		return fmt.Errorf("disk full")
	}
	r.facts[key] = fact
	r.order = append(r.order, key)
	return nil
}

func (r *recordingWriter) WriteModule(_ context.Context, m string, f *term.Compound) error {
	return r.put("module:"+m, f)
}

func (r *recordingWriter) WritePackage(_ context.Context, p string, f *term.Compound) error {
	return r.put("package:"+p, f)
}

func (r *recordingWriter) WriteType(_ context.Context, p, n string, f *term.Compound) error {
	return r.put("type:"+p+"/"+n, f)
}

func (r *recordingWriter) WriteIndex(_ context.Context, n string, f *term.Compound) error {
	return r.put("index:"+n, f)
}

func (r *recordingWriter) text(key string) string {
	if f, ok := r.facts[key]; ok {
		return f.Encode()
	}
	return ""
}

func field(name string) *model.Variable {
	return &model.Variable{Kind: model.VariableField, Name: name, Type: &model.Primitive{Kind: "int"}}
}

func method(name string) *model.Executable {
	return &model.Executable{Kind: model.ExecutableMethod, Name: name, Return: model.Void()}
}

func newEngine(t *testing.T, w Writer, opts Options) *Engine {
	return New(w, opts, zaptest.NewLogger(t).Sugar())
}

func TestSingleClassMinimal(t *testing.T) {
	w := newRecordingWriter()
	pkg := &model.Package{
		Name: "com.acme",
		Members: []model.Symbol{
			&model.Type{
				Kind:    model.TypeKindClass,
				Name:    "Widget",
				Package: "com.acme",
				Doc:     "A widget.",
				Members: []model.Symbol{field("count"), method("run")},
			},
		},
	}

	res, err := newEngine(t, w, Options{}).Run(context.Background(), model.Static{pkg})
	require.NoError(t, err)

	assert.Equal(t,
		"package_declaration('com.acme', [type_declaration('Widget', 'CLASS')])",
		w.text("package:com.acme"))
	assert.Equal(t,
		"class('Widget', 'com.acme', [], [], null, [], [], ["+
			"field(count, [], type(primitive, int), [], ''), "+
			"method(run, [], [], type(no_type, void), [], [], [], '')"+
			"], [], '')",
		w.text("type:com.acme/Widget"))
	assert.Equal(t, "package_index(['com.acme'])", w.text("index:package_index"))
	_, hasModuleIndex := w.facts["index:module_index"]
	assert.False(t, hasModuleIndex)

	assert.Nil(t, res.ModuleIndex)
	assert.Equal(t, 1, res.Packages)
	assert.Equal(t, 1, res.Types)
	assert.Equal(t, 2, res.Facts())
	assert.Empty(t, res.Diagnostics)
}

func TestMemberOrderFollowsModel(t *testing.T) {
	w := newRecordingWriter()
	typ := &model.Type{
		Kind:    model.TypeKindClass,
		Name:    "Ordered",
		Package: "p",
		Members: []model.Symbol{field("fieldA"), method("methodB"), field("fieldC")},
	}
	_, err := newEngine(t, w, Options{}).Walk(context.Background(), []model.Symbol{&model.Package{Name: "p", Members: []model.Symbol{typ}}})
	require.NoError(t, err)

	members := w.facts["type:p/Ordered"].Arg(7).(*term.List)
	require.Equal(t, 3, members.Len())
	var got []string
	for _, m := range members.Elems() {
		c := m.(*term.Compound)
		got = append(got, c.Name()+":"+c.Arg(0).(term.Atom).String())
	}
	assert.Equal(t, []string{"field:fieldA", "method:methodB", "field:fieldC"}, got)
}

func TestNestedTypeMarkerGoesToEnclosingType(t *testing.T) {
	w := newRecordingWriter()
	inner := &model.Type{Kind: model.TypeKindEnum, Name: "Color", Members: []model.Symbol{
		&model.Variable{Kind: model.VariableEnumConstant, Name: "RED"},
		method("values"),
	}}
	outer := &model.Type{Kind: model.TypeKindClass, Name: "Palette", Members: []model.Symbol{
		field("size"), inner, method("pick"),
	}}
	sibling := &model.Type{Kind: model.TypeKindInterface, Name: "Brush", Members: []model.Symbol{method("stroke")}}

	_, err := newEngine(t, w, Options{}).Walk(context.Background(), []model.Symbol{
		&model.Package{Name: "art", Members: []model.Symbol{outer, sibling}},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"package_declaration(art, [type_declaration('Palette', 'CLASS'), type_declaration('Brush', 'INTERFACE')])",
		w.text("package:art"))

	outerMembers := w.facts["type:art/Palette"].Arg(7).Encode()
	assert.Equal(t,
		"[field(size, [], type(primitive, int), [], ''), type_declaration('Color', 'ENUM'), method(pick, [], [], type(no_type, void), [], [], [], '')]",
		outerMembers)

	// enum constants are not emitted as fields
	assert.Equal(t,
		"enum('Color', art, [], [], [method(values, [], [], type(no_type, void), [], [], [], '')], [], '')",
		w.text("type:art/Color"))

	// sibling scopes never share an accumulator
	assert.Equal(t,
		"interface('Brush', art, [], [], [], [method(stroke, [], [], type(no_type, void), [], [], [], '')], [], [], '')",
		w.text("type:art/Brush"))

	// nested type files are written before their enclosing type
	assert.Equal(t, []string{"type:art/Color", "type:art/Palette", "type:art/Brush", "package:art"}, w.order)
}

func TestTypeShapes(t *testing.T) {
	w := newRecordingWriter()
	tv := &model.TypeVar{Name: "T"}
	types := []model.Symbol{
		&model.Type{
			Kind:        model.TypeKindClass,
			Name:        "Box",
			Modifiers:   []string{"public", "final"},
			TypeParams:  []model.TypeParam{{Name: "T"}},
			Superclass:  model.Ref("x.Base"),
			Interfaces:  []model.TypeExpr{model.Ref("java.lang.Comparable", tv)},
			Permits:     []string{"x.Sub"},
			Annotations: []model.Annotation{{Name: "java.lang.Deprecated"}},
		},
		&model.Type{Kind: model.TypeKindInterface, Name: "Shape", Permits: []string{"x.Circle"},
			Interfaces: []model.TypeExpr{model.Ref("x.Named")}},
		&model.Type{Kind: model.TypeKindAnnotation, Name: "Marker", Members: []model.Symbol{method("value")}},
		&model.Type{Kind: model.TypeKindRecord, Name: "Point",
			Components: []model.RecordComponent{{Name: "x", Type: &model.Primitive{Kind: "int"}}},
			Members:    []model.Symbol{&model.Executable{Kind: model.ExecutableConstructor, Name: "Point"}}},
	}
	_, err := newEngine(t, w, Options{}).Walk(context.Background(), []model.Symbol{&model.Package{Name: "x", Members: types}})
	require.NoError(t, err)

	assert.Equal(t,
		"class('Box', x, [modifier(public), modifier(final)], [type_parameter('T', [], [])], "+
			"extends(declared, declared_type('x.Base', [])), "+
			"[implements(declared, declared_type('java.lang.Comparable', [type(type_variable, 'T')]))], "+
			"['x.Sub'], [], [annotation('java.lang.Deprecated', [])], '')",
		w.text("type:x/Box"))
	assert.Equal(t,
		"interface('Shape', x, [], [], [implements(declared, declared_type('x.Named', []))], [], [], [declared_type('x.Circle', [])], '')",
		w.text("type:x/Shape"))
	assert.Equal(t,
		"annotation_type('Marker', x, [], [method(value, [], [], type(no_type, void), [], [], [], '')], [], '')",
		w.text("type:x/Marker"))
	assert.Equal(t,
		"record('Point', x, [], [], [], [record_component(x, type(primitive, int), [])], [constructor('Point', [], [], [], [], [], '')], [], '')",
		w.text("type:x/Point"))
}

func TestDocsOnlyInFullMode(t *testing.T) {
	typ := func() *model.Type {
		return &model.Type{Kind: model.TypeKindClass, Name: "D", Doc: "First line.\r\nSecond line."}
	}

	minimal := newRecordingWriter()
	_, err := newEngine(t, minimal, Options{}).Walk(context.Background(), []model.Symbol{&model.Package{Name: "d", Members: []model.Symbol{typ()}}})
	require.NoError(t, err)
	assert.Equal(t, term.Atom(""), minimal.facts["type:d/D"].Arg(9))

	full := newRecordingWriter()
	_, err = newEngine(t, full, Options{IncludeDocs: true}).Walk(context.Background(), []model.Symbol{&model.Package{Name: "d", Members: []model.Symbol{typ()}}})
	require.NoError(t, err)
	assert.Equal(t, term.Atom(`First line.\nSecond line.`), full.facts["type:d/D"].Arg(9))
}

func TestModuleAndRestrictedPackages(t *testing.T) {
	w := newRecordingWriter()
	api := &model.Package{Name: "com.acme.api"}
	internal := &model.Package{Name: "com.acme.internal"}
	mod := &model.Module{
		Name: "com.acme",
		Requires: []model.Requires{
			{Module: "java.base"},
			{Module: "java.sql", Modifiers: []string{"transitive"}},
		},
		Exports: []model.Exports{
			{Package: "com.acme.api"},
			{Package: "com.acme.internal", To: []string{"com.acme.tests"}},
		},
		Uses: []model.TypeExpr{model.Ref("com.acme.api.Plugin")},
		Provides: []model.Provides{{
			Service:         model.Ref("com.acme.api.Plugin"),
			Implementations: []model.TypeExpr{model.Ref("com.acme.internal.Default")},
		}},
		Packages: []*model.Package{api, internal},
	}
	// a stray package listed before the module is still filtered
	roots := []model.Symbol{internal, mod, &model.Package{Name: "com.other"}}

	res, err := newEngine(t, w, Options{}).Run(context.Background(), model.Static(roots))
	require.NoError(t, err)

	assert.Equal(t,
		"module('com.acme', [], "+
			"[requires([transitive], 'java.sql', [])], "+
			"[exports('com.acme.api', [], []), exports('com.acme.internal', ['com.acme.tests'], [])], "+
			"[declared_type('com.acme.api.Plugin', [])], "+
			"[provides(declared_type('com.acme.api.Plugin', []), [declared_type('com.acme.internal.Default', [])], [])], "+
			"['com.acme.api', 'com.acme.internal'])",
		w.text("module:com.acme"))

	assert.Equal(t, "module_index(['com.acme'])", w.text("index:module_index"))
	assert.Equal(t, "package_index(['com.acme.api', 'com.other'])", w.text("index:package_index"))

	// the package shared by the module and the roots is written once
	assert.Equal(t, 3, res.Packages)
	assert.Equal(t, 1, res.Modules)
}

func TestUnsupportedKindsAreSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := newRecordingWriter()
	eng := New(w, Options{}, zap.New(core).Sugar())

	typ := &model.Type{Kind: model.TypeKindClass, Name: "C", Members: []model.Symbol{
		&model.Executable{Kind: model.ExecutableStaticInit, Name: "<clinit>"},
		&model.Variable{Kind: model.VariableUnsupported, RawKind: "BINDING_VARIABLE", Name: "b"},
		&model.Variable{Kind: model.VariableLocal, Name: "tmp"},
		field("kept"),
	}}
	weird := &model.Type{Kind: model.TypeKindUnsupported, RawKind: "MODULE_IMPORT", Name: "W"}
	roots := []model.Symbol{
		&model.Package{Name: "u", Members: []model.Symbol{typ, weird, &model.Unsupported{Kind: "OTHER", Name: "o"}}},
	}

	res, err := eng.Walk(context.Background(), roots)
	require.NoError(t, err)

	assert.Equal(t, "package_declaration(u, [type_declaration('C', 'CLASS')])", w.text("package:u"))
	assert.Equal(t, "[field(kept, [], type(primitive, int), [], '')]", w.facts["type:u/C"].Arg(7).Encode())
	_, written := w.facts["type:u/W"]
	assert.False(t, written)

	require.Len(t, res.Diagnostics, 4)
	kinds := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		kinds[i] = d.Kind
		assert.True(t, errors.IsUnsupported(d))
	}
	assert.Equal(t, []string{"STATIC_INIT", "BINDING_VARIABLE", "MODULE_IMPORT", "OTHER"}, kinds)
	assert.Equal(t, "u.C", res.Diagnostics[0].Scope)
	assert.Equal(t, 4, logs.FilterMessage("Unsupported variant skipped").Len())
}

func TestPackageLevelMembersAreSkipped(t *testing.T) {
	w := newRecordingWriter()
	roots := []model.Symbol{&model.Package{Name: "p", Members: []model.Symbol{
		method("run"),
		&model.Type{Kind: model.TypeKindClass, Name: "T"},
		field("x"),
	}}}

	res, err := newEngine(t, w, Options{}).Walk(context.Background(), roots)
	require.NoError(t, err)
	assert.Equal(t, "package_declaration(p, [type_declaration('T', 'CLASS')])", w.text("package:p"))

	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, "PACKAGE_MEMBER", d.Kind)
		assert.Equal(t, "p", d.Scope)
		assert.True(t, errors.IsUnsupported(d))
	}
	assert.Contains(t, res.Diagnostics[0].Error(), "METHOD run")
	assert.Contains(t, res.Diagnostics[1].Error(), "FIELD x")
}

func TestTopLevelTypeDropsMarker(t *testing.T) {
	w := newRecordingWriter()
	res, err := newEngine(t, w, Options{}).Walk(context.Background(), []model.Symbol{
		&model.Type{Kind: model.TypeKindClass, Name: "Loose", Package: "l"},
	})
	require.NoError(t, err)
	assert.Contains(t, w.facts, "type:l/Loose")
	assert.Equal(t, "package_index([])", res.PackageIndex.Encode())
}

func TestWriterFailureAborts(t *testing.T) {
	w := newRecordingWriter()
	w.failOn = "type:f/Second"
	roots := []model.Symbol{&model.Package{Name: "f", Members: []model.Symbol{
		&model.Type{Kind: model.TypeKindClass, Name: "First"},
		&model.Type{Kind: model.TypeKindClass, Name: "Second"},
		&model.Type{Kind: model.TypeKindClass, Name: "Third"},
	}}}

	res, err := newEngine(t, w, Options{}).Run(context.Background(), model.Static(roots))
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err))
	assert.Contains(t, err.Error(), "f.Second")
	assert.Equal(t, []string{"type:f/First"}, w.order)
	assert.Equal(t, 1, res.Types)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newEngine(t, newRecordingWriter(), Options{}).Walk(ctx, []model.Symbol{&model.Package{Name: "c"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImplicitSupertypeOption(t *testing.T) {
	w := newRecordingWriter()
	typ := &model.Type{Kind: model.TypeKindClass, Name: "S", Superclass: model.Ref("any")}
	_, err := newEngine(t, w, Options{ImplicitSupertype: "any"}).Walk(context.Background(), []model.Symbol{&model.Package{Name: "s", Members: []model.Symbol{typ}}})
	require.NoError(t, err)
	assert.Equal(t, term.Null(), w.facts["type:s/S"].Arg(4))
}
