package term

import (
	"strings"

	"github.com/teranos/logifact/errors"
)

// Parse reads back a single term as written by Encode, Fact or Printer.Print.
// Whitespace between tokens and one trailing period are accepted.
//
// It is a reader for logifact's own output, not a general Prolog parser:
// operators, variables and comments are not recognised.
func Parse(text string) (Term, error) {
	p := &parser{src: text}
	p.skipSpace()
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '.' {
		p.pos++
		p.skipSpace()
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.rest())
	}
	return t, nil
}

// ParseFact reads a fact and requires it to be a compound.
func ParseFact(text string) (*Compound, error) {
	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Compound)
	if !ok {
		return nil, errors.Newf("fact is not a compound: %s", t.Encode())
	}
	return c, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) rest() string {
	r := p.src[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Newf(format, args...), "parse error at offset %d", p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) term() (Term, error) {
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '[':
		return p.list()
	case c == '\'':
		name, err := p.quoted()
		if err != nil {
			return nil, err
		}
		if p.peek() == '(' {
			return p.compound(name)
		}
		return Atom(name), nil
	case isDelimiter(c):
		return nil, p.errorf("unexpected %q", c)
	default:
		tok := p.bare()
		if tok == "" {
			return nil, p.errorf("unexpected %q", c)
		}
		if p.peek() == '(' {
			return p.compound(tok)
		}
		if tok == "null" {
			return Null(), nil
		}
		return Atom(tok), nil
	}
}

func (p *parser) compound(name string) (Term, error) {
	p.pos++ // (
	args, err := p.sequence(')')
	if err != nil {
		return nil, err
	}
	return NewCompound(name, args...), nil
}

func (p *parser) list() (Term, error) {
	p.pos++ // [
	elems, err := p.sequence(']')
	if err != nil {
		return nil, err
	}
	return NewList(elems...), nil
}

// sequence reads comma-separated terms up to and including the closing byte.
func (p *parser) sequence(closing byte) ([]Term, error) {
	var out []Term
	p.skipSpace()
	if p.peek() == closing {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			return out, nil
		case 0:
			return nil, p.errorf("missing %q", closing)
		default:
			return nil, p.errorf("expected ',' or %q, found %q", closing, p.peek())
		}
	}
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	p.pos = start
	return "", p.errorf("unterminated quoted atom")
}

// bare reads an unquoted token. A period belongs to the token only when
// another token character follows it, so "a.b" and "1.5" stay whole while
// a fact-terminating period is left for the caller.
func (p *parser) bare() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isDelimiter(c) {
			break
		}
		if c == '.' {
			next := byte(0)
			if p.pos+1 < len(p.src) {
				next = p.src[p.pos+1]
			}
			if next == 0 || isDelimiter(next) || next == '.' {
				break
			}
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '[', ']', ',', '\'', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// SplitArgs returns the top-level argument texts of an encoded compound,
// trimmed of surrounding whitespace. Commas inside quotes, lists or nested
// compounds never split. Text that is not a compound yields nil.
func SplitArgs(encoded string) []string {
	s := strings.TrimSpace(encoded)
	s = strings.TrimSuffix(s, ".")
	open := -1
	quoted := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			quoted = !quoted
		}
		if !quoted && s[i] == '(' {
			open = i
			break
		}
	}
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil
	}
	body := s[open+1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return []string{}
	}

	var segments []string
	depth, last := 0, 0
	quoted = false
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\'' {
			// doubled quotes toggle twice and cancel out
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				segments = append(segments, strings.TrimSpace(body[last:i]))
				last = i + 1
			}
		}
	}
	return append(segments, strings.TrimSpace(body[last:]))
}
