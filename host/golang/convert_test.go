package golang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/logifact/model"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/traverse"
	"github.com/teranos/logifact/writer"
)

const shapesSrc = `// Package shapes draws things.
package shapes

// Shape is anything with an area.
type Shape interface {
	// Area returns the surface.
	Area() float64
	Name() string
}

// Color names a fill.
type Color int

const (
	Red Color = iota
	Green
)

// Square is a shape.
type Square struct {
	Base
	// Side length.
	Side  float64 ` + "`json:\"side\" yaml:\"side,omitempty\"`" + `
	label string
}

type Base struct{}

type Stack[T any] struct{ items []T }

type Lookup map[string][]*Square

type Alias = Square

// NewSquare builds a square.
func NewSquare(side float64) (*Square, error) { return &Square{Side: side}, nil }

func (s *Square) Area() float64 { return s.Side * s.Side }

func (s Square) Name() string { return s.label }

func (s *Stack[T]) Push(items ...T) { s.items = append(s.items, items...) }

func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Scale multiplies an area.
func Scale(s Shape, by float64) float64 { return s.Area() * by }

var Default = Square{Side: 1}

const Pi = 3.14
`

// checkSource type-checks a self-contained source file the way go/packages
// would, without shelling out to the go command.
func checkSource(t *testing.T, path, src string) (*types.Package, *types.Info, []*ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	pkg, err := (&types.Config{}).Check(path, fset, []*ast.File{f}, info)
	require.NoError(t, err)
	return pkg, info, []*ast.File{f}
}

func convertShapes(t *testing.T) *model.Package {
	t.Helper()
	pkg, info, files := checkSource(t, "example.com/shapes", shapesSrc)
	return ConvertPackage(pkg, info, files)
}

func memberNames(syms []model.Symbol) []string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.SymbolName()
	}
	return names
}

func TestConvertPackageLayout(t *testing.T) {
	p := convertShapes(t)
	assert.Equal(t, "example.com.shapes", p.Name)
	assert.Equal(t, "Package shapes draws things.", p.Doc)
	assert.Equal(t,
		[]string{"Shape", "Color", "Square", "Base", "Stack", "Lookup", "Alias", "shapes"},
		memberNames(p.Members))
	assert.Equal(t, &model.Unsupported{Kind: "ALIAS", Name: "Alias"}, p.Members[6])
}

func TestConvertInterface(t *testing.T) {
	shape := convertShapes(t).Members[0].(*model.Type)
	assert.Equal(t, model.TypeKindInterface, shape.Kind)
	assert.Equal(t, []string{"public"}, shape.Modifiers)
	assert.Equal(t, "Shape is anything with an area.", shape.Doc)
	require.Len(t, shape.Members, 2)

	area := shape.Members[0].(*model.Executable)
	assert.Equal(t, "Area", area.Name)
	assert.Equal(t, []string{"public", "abstract"}, area.Modifiers)
	assert.Equal(t, &model.Primitive{Kind: "float64"}, area.Return)
	assert.Equal(t, "Area returns the surface.", area.Doc)
	assert.Equal(t, "Name", shape.Members[1].SymbolName())
}

func TestConvertEnum(t *testing.T) {
	color := convertShapes(t).Members[1].(*model.Type)
	assert.Equal(t, model.TypeKindEnum, color.Kind)
	assert.Nil(t, color.Superclass)
	require.Len(t, color.Members, 2)

	red := color.Members[0].(*model.Variable)
	assert.Equal(t, "Red", red.Name)
	assert.Equal(t, model.VariableField, red.Kind)
	assert.Equal(t, []string{"public", "static", "final"}, red.Modifiers)
	assert.Equal(t, model.Ref("example.com.shapes.Color"), red.Type)
}

func TestConvertStruct(t *testing.T) {
	square := convertShapes(t).Members[2].(*model.Type)
	assert.Equal(t, model.TypeKindClass, square.Kind)
	assert.Equal(t, "STRUCT", square.RawKind)
	assert.Equal(t, []model.TypeExpr{model.Ref("example.com.shapes.Base")}, square.Interfaces)
	assert.Equal(t, []string{"Side", "label", "Square", "Area", "Name"}, memberNames(square.Members))

	side := square.Members[0].(*model.Variable)
	assert.Equal(t, []string{"public"}, side.Modifiers)
	assert.Equal(t, "Side length.", side.Doc)
	assert.Equal(t, []model.Annotation{{Name: "tag", Args: []model.AnnotationArg{
		{Name: "json", Value: model.StringValue("side")},
		{Name: "yaml", Value: model.StringValue("side,omitempty")},
	}}}, side.Annotations)

	label := square.Members[1].(*model.Variable)
	assert.Empty(t, label.Modifiers)
	assert.Nil(t, label.Annotations)

	ctor := square.Members[2].(*model.Executable)
	assert.Equal(t, model.ExecutableConstructor, ctor.Kind)
	assert.Nil(t, ctor.Return)
	assert.Equal(t, []model.Parameter{{Name: "side", Type: &model.Primitive{Kind: "float64"}}}, ctor.Params)
	assert.Equal(t, []model.TypeExpr{model.Ref("error")}, ctor.Throws)
	assert.Equal(t, "NewSquare builds a square.", ctor.Doc)
}

func TestConvertGenerics(t *testing.T) {
	stack := convertShapes(t).Members[4].(*model.Type)
	assert.Equal(t, []model.TypeParam{{Name: "T", Bounds: []model.TypeExpr{model.Ref("any")}}}, stack.TypeParams)
	assert.Empty(t, stack.Modifiers)
	require.Len(t, stack.Members, 3)

	items := stack.Members[0].(*model.Variable)
	assert.Equal(t, &model.Array{Elem: &model.TypeVar{Name: "T"}}, items.Type)

	push := stack.Members[1].(*model.Executable)
	assert.Equal(t, model.Void(), push.Return)
	assert.Equal(t, []model.Parameter{{
		Name:      "items",
		Type:      &model.Array{Elem: &model.TypeVar{Name: "T"}},
		Modifiers: []string{"variadic"},
	}}, push.Params)

	pop := stack.Members[2].(*model.Executable)
	assert.Equal(t, model.Ref("tuple", &model.TypeVar{Name: "T"}, &model.Primitive{Kind: "bool"}), pop.Return)
	assert.Empty(t, pop.Throws)
}

func TestConvertPackageLevel(t *testing.T) {
	p := convertShapes(t)

	lookup := p.Members[5].(*model.Type)
	assert.Equal(t,
		model.Ref("map", &model.Primitive{Kind: "string"}, &model.Array{Elem: model.Ref("example.com.shapes.Square")}),
		lookup.Superclass)

	require.Len(t, p.Members, 8)
	scope := p.Members[7].(*model.Type)
	assert.Equal(t, "shapes", scope.Name)
	assert.Equal(t, model.TypeKindClass, scope.Kind)
	assert.Equal(t, []string{"public", "final"}, scope.Modifiers)
	require.Len(t, scope.Members, 3)

	scale := scope.Members[0].(*model.Executable)
	assert.Equal(t, []string{"public", "static"}, scale.Modifiers)
	assert.Equal(t, model.Ref("example.com.shapes.Shape"), scale.Params[0].Type)

	def := scope.Members[1].(*model.Variable)
	assert.Equal(t, []string{"public", "static"}, def.Modifiers)

	pi := scope.Members[2].(*model.Variable)
	assert.Equal(t, []string{"public", "static", "final"}, pi.Modifiers)
	assert.Equal(t, &model.Primitive{Kind: "float64"}, pi.Type)
}

func TestConvertedFacts(t *testing.T) {
	mem := writer.NewMemory()
	engine := traverse.New(mem, traverse.Options{}, zaptest.NewLogger(t).Sugar())

	res, err := engine.Run(context.Background(), model.Static{convertShapes(t)})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Types)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "ALIAS", res.Diagnostics[0].Kind)

	text, ok := mem.File("example/com/shapes/Square.pl")
	require.True(t, ok)
	args := term.SplitArgs(text)
	require.Len(t, args, 10)
	assert.Equal(t, "null", args[4])
	assert.Equal(t, "[implements(declared, declared_type('example.com.shapes.Base', []))]", args[5])

	pkgText, ok := mem.File("example/com/shapes/package.pl")
	require.True(t, ok)
	pkgArgs := term.SplitArgs(pkgText)
	require.Len(t, pkgArgs, 2)
	assert.Contains(t, pkgArgs[1], "type_declaration('Color', 'ENUM')")
	assert.Contains(t, pkgArgs[1], "type_declaration(shapes, 'CLASS')")
	assert.NotContains(t, pkgArgs[1], "method(")
	assert.NotContains(t, pkgArgs[1], "Alias")

	scopeText, ok := mem.File("example/com/shapes/shapes.pl")
	require.True(t, ok)
	assert.Contains(t, scopeText, "method('Scale', [modifier(public), modifier(static)]")
	assert.Contains(t, scopeText, "field('Pi', [modifier(public), modifier(static), modifier(final)]")
}

func TestScopeTypeAvoidsDeclaredName(t *testing.T) {
	const src = `package clash

type clash struct{}

func Run() {}
`
	pkg, info, files := checkSource(t, "example.com/clash", src)
	p := ConvertPackage(pkg, info, files)
	require.Len(t, p.Members, 2)
	assert.Equal(t, "clash", p.Members[0].SymbolName())
	assert.Equal(t, "clash_", p.Members[1].SymbolName())
}

func TestReceiverName(t *testing.T) {
	for src, want := range map[string]string{
		"func (s *Square) f() {}":    "Square",
		"func (s Square) f() {}":     "Square",
		"func (s *Stack[T]) f() {}":  "Stack",
		"func (s Pair[K, V]) f() {}": "Pair",
	} {
		f, err := parser.ParseFile(token.NewFileSet(), "r.go", "package p\n"+src, 0)
		require.NoError(t, err)
		assert.Equal(t, want, receiverName(f.Decls[0].(*ast.FuncDecl).Recv), src)
	}
}
