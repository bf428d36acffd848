// Package term is the structured-term data model facts are built from.
//
// A Term is an Atom, a Compound (name plus ordered arguments) or a List.
// Terms are immutable once constructed and encode deterministically:
//
//	term.NewCompound("field", term.Atom("count"), term.EmptyList(), term.Null())
//	// field(count, [], null)
package term

import (
	"regexp"
	"strings"
)

// Term is one node of a fact tree.
type Term interface {
	// Encode renders the canonical one-line text of the term.
	Encode() string
	isTerm()
}

var plainAtom = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

// reserved literals are always quoted so they read as atoms, not constants
var reserved = map[string]bool{
	"true":  true,
	"false": true,
	"null":  true,
}

// Atom is a scalar token.
type Atom string

// Encode quotes the atom unless it is a plain identifier.
// Embedded single quotes are doubled.
func (a Atom) Encode() string {
	s := string(a)
	if plainAtom.MatchString(s) && !reserved[s] {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// String returns the raw atom value.
func (a Atom) String() string { return string(a) }

func (Atom) isTerm() {}

// NullAtom renders as the bare token null.
//
// It is distinct from Atom("null"), which is quoted like any other
// reserved word.
type NullAtom struct{}

// Null returns the null placeholder used for absent optional slots.
func Null() NullAtom { return NullAtom{} }

func (NullAtom) Encode() string { return "null" }
func (NullAtom) isTerm()        {}

// Compound is a named tuple with fixed arity.
type Compound struct {
	name string
	args []Term
}

// NewCompound builds name(args...). The argument slice is copied.
func NewCompound(name string, args ...Term) *Compound {
	c := &Compound{name: name}
	if len(args) > 0 {
		c.args = make([]Term, len(args))
		copy(c.args, args)
	}
	return c
}

// Name returns the functor.
func (c *Compound) Name() string { return c.name }

// Arity returns the number of arguments.
func (c *Compound) Arity() int { return len(c.args) }

// Arg returns the i-th argument.
func (c *Compound) Arg(i int) Term { return c.args[i] }

// Args returns a copy of the arguments.
func (c *Compound) Args() []Term {
	out := make([]Term, len(c.args))
	copy(out, c.args)
	return out
}

func (c *Compound) Encode() string {
	var b strings.Builder
	b.WriteString(c.name)
	b.WriteByte('(')
	writeJoined(&b, c.args)
	b.WriteByte(')')
	return b.String()
}

// Fact renders the compound as a complete fact terminated by a period.
func (c *Compound) Fact() string {
	return c.Encode() + "."
}

func (*Compound) isTerm() {}

// List is an ordered sequence of terms.
type List struct {
	elems []Term
}

// NewList builds [elems...]. The element slice is copied.
func NewList(elems ...Term) *List {
	l := &List{}
	if len(elems) > 0 {
		l.elems = make([]Term, len(elems))
		copy(l.elems, elems)
	}
	return l
}

// EmptyList returns [].
func EmptyList() *List { return &List{} }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Elem returns the i-th element.
func (l *List) Elem(i int) Term { return l.elems[i] }

// Elems returns a copy of the elements.
func (l *List) Elems() []Term {
	out := make([]Term, len(l.elems))
	copy(out, l.elems)
	return out
}

func (l *List) Encode() string {
	var b strings.Builder
	b.WriteByte('[')
	writeJoined(&b, l.elems)
	b.WriteByte(']')
	return b.String()
}

func (*List) isTerm() {}

func writeJoined(b *strings.Builder, terms []Term) {
	for i, t := range terms {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Encode())
	}
}

// Atoms converts strings into a list of atoms.
func Atoms(values ...string) *List {
	elems := make([]Term, len(values))
	for i, v := range values {
		elems[i] = Atom(v)
	}
	return &List{elems: elems}
}

// ListOf converts compounds into a list.
func ListOf(cs []*Compound) *List {
	elems := make([]Term, len(cs))
	for i, c := range cs {
		elems[i] = c
	}
	return &List{elems: elems}
}

// Unquote inverts Atom encoding: surrounding quotes are removed and doubled
// quotes collapse. Text that is not quoted is returned unchanged.
func Unquote(encoded string) string {
	if len(encoded) >= 2 && encoded[0] == '\'' && encoded[len(encoded)-1] == '\'' {
		return strings.ReplaceAll(encoded[1:len(encoded)-1], "''", "'")
	}
	return encoded
}

// Equal reports whether two terms encode identically.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Encode() == b.Encode()
}
