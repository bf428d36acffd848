package term

import "strings"

// DefaultIndent is the indentation unit of output.indent's default.
const DefaultIndent = "    "

// Printer renders terms as indented multi-line text.
//
// A compound whose arguments are all atoms or empty lists, and a list whose
// elements are all atoms, stay on one line. Anything else puts one child
// per line, one indent unit deeper than its parent.
type Printer struct {
	indent string
}

// NewPrinter returns a printer using indent as the unit. An empty indent
// keeps the line breaks but indents nothing.
func NewPrinter(indent string) *Printer {
	return &Printer{indent: indent}
}

// IndentWidth builds an indent unit of n spaces. Zero or less is no
// indentation.
func IndentWidth(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Print renders c as a complete fact terminated by a period.
func (p *Printer) Print(c *Compound) string {
	var b strings.Builder
	p.compound(&b, c, 0)
	b.WriteByte('.')
	return b.String()
}

// Sprint renders any term without a terminating period.
func (p *Printer) Sprint(t Term) string {
	var b strings.Builder
	p.term(&b, t, 0)
	return b.String()
}

func (p *Printer) term(b *strings.Builder, t Term, level int) {
	switch v := t.(type) {
	case *Compound:
		p.compound(b, v, level)
	case *List:
		p.list(b, v, level)
	default:
		b.WriteString(t.Encode())
	}
}

func (p *Printer) compound(b *strings.Builder, c *Compound, level int) {
	b.WriteString(c.name)
	b.WriteByte('(')
	if SimpleCompound(c) {
		writeJoined(b, c.args)
	} else {
		p.children(b, c.args, level)
	}
	b.WriteByte(')')
}

func (p *Printer) list(b *strings.Builder, l *List, level int) {
	b.WriteByte('[')
	if SimpleList(l) {
		writeJoined(b, l.elems)
	} else {
		p.children(b, l.elems, level)
	}
	b.WriteByte(']')
}

func (p *Printer) children(b *strings.Builder, terms []Term, level int) {
	b.WriteByte('\n')
	for i, t := range terms {
		p.pad(b, level+1)
		p.term(b, t, level+1)
		if i < len(terms)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	p.pad(b, level)
}

func (p *Printer) pad(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString(p.indent)
	}
}

// SimpleCompound reports whether c prints on a single line.
func SimpleCompound(c *Compound) bool {
	for _, a := range c.args {
		switch v := a.(type) {
		case *Compound:
			return false
		case *List:
			if v.Len() > 0 {
				return false
			}
		}
	}
	return true
}

// SimpleList reports whether l prints on a single line.
func SimpleList(l *List) bool {
	for _, e := range l.elems {
		if !isAtomic(e) {
			return false
		}
	}
	return true
}

func isAtomic(t Term) bool {
	switch t.(type) {
	case Atom, NullAtom:
		return true
	}
	return false
}
