package term

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintSimpleCompoundSingleLine(t *testing.T) {
	p := NewPrinter("")
	c := NewCompound("type_declaration", Atom("Widget"), Atom("CLASS"))

	out := p.Print(c)
	assert.Equal(t, "type_declaration('Widget', 'CLASS').", out)
	assert.NotContains(t, out, "\n")
}

func TestPrintEmptyListStaysSimple(t *testing.T) {
	c := NewCompound("annotation", Atom("java.lang.Deprecated"), EmptyList())
	assert.Equal(t, "annotation('java.lang.Deprecated', []).", NewPrinter("").Print(c))
}

func TestPrintZeroArity(t *testing.T) {
	assert.Equal(t, "f().", NewPrinter("").Print(NewCompound("f")))
}

func TestPrintNestedListIndentsOnePerLevel(t *testing.T) {
	c := NewCompound("package_declaration",
		Atom("com.acme"),
		NewList(
			NewCompound("type_declaration", Atom("A"), Atom("CLASS")),
			NewCompound("type_declaration", Atom("B"), Atom("ENUM")),
		),
	)
	want := strings.Join([]string{
		"package_declaration(",
		"    'com.acme',",
		"    [",
		"        type_declaration('A', 'CLASS'),",
		"        type_declaration('B', 'ENUM')",
		"    ]",
		").",
	}, "\n")
	assert.Equal(t, want, NewPrinter(DefaultIndent).Print(c))
}

func TestPrintAtomListInline(t *testing.T) {
	c := NewCompound("m", Atoms("a", "b"))
	// a non-empty list makes the compound complex even when the list itself is simple
	want := "m(\n  [a, b]\n)."
	assert.Equal(t, want, NewPrinter("  ").Print(c))
}

func TestPrintOnlyTopLevelGetsPeriod(t *testing.T) {
	c := NewCompound("outer", NewCompound("inner", Atom("x")))
	out := NewPrinter("").Print(c)
	assert.Equal(t, 1, strings.Count(out, "."))
	assert.True(t, strings.HasSuffix(out, ")."))
}

func TestPrintDeepIndentation(t *testing.T) {
	c := NewCompound("a", NewCompound("b", NewList(NewCompound("c", Atom("d")))))
	lines := strings.Split(NewPrinter("\t").Print(c), "\n")
	want := []string{
		"a(",
		"\tb(",
		"\t\t[",
		"\t\t\tc(d)",
		"\t\t]",
		"\t)",
		").",
	}
	assert.Equal(t, want, lines)
}

func TestIndentWidth(t *testing.T) {
	assert.Equal(t, "  ", IndentWidth(2))
	assert.Equal(t, "", IndentWidth(0))
	assert.Equal(t, "", IndentWidth(-3))
}

func TestPrintWithoutIndent(t *testing.T) {
	c := NewCompound("f", NewList(NewCompound("g", Atom("a"))))
	assert.Equal(t, "f(\n[\ng(a)\n]\n).", NewPrinter("").Print(c))
}

func TestPrettyPreservesSemantics(t *testing.T) {
	c := NewCompound("method",
		Atom("run"),
		NewList(NewCompound("modifier", Atom("public"))),
		EmptyList(),
		NewCompound("type", Atom("no_type"), Atom("void")),
		NewList(NewCompound("parameter", Atom("ctx"), NewCompound("declared_type", Atom("x.Ctx"), EmptyList()), EmptyList(), EmptyList())),
		EmptyList(),
		EmptyList(),
		Atom("Runs it."),
	)
	parsed, err := Parse(NewPrinter("").Print(c))
	assert.NoError(t, err)
	assert.Equal(t, c.Encode(), parsed.Encode())
	assert.Equal(t, "[]", NewPrinter("").Sprint(EmptyList()))
}
