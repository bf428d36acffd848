package document

import (
	"strings"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/model"
)

var primitives = map[string]bool{
	"boolean": true, "byte": true, "short": true, "int": true,
	"long": true, "char": true, "float": true, "double": true,
}

// ParseType reads a type written in source notation. inScope reports
// whether a simple name is a type parameter visible at this point. The
// empty string is the absent type (nil).
func ParseType(s string, inScope func(string) bool) (model.TypeExpr, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	if inScope == nil {
		inScope = func(string) bool { return false }
	}
	p := &typeParser{src: s, inScope: inScope}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	inScope func(string) bool
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return errors.Mark(
		errors.Wrapf(errors.Newf(format, args...), "type %q at offset %d", p.src, p.pos),
		errors.ErrInvalidModel)
}

func (p *typeParser) space() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) eat(c byte) bool {
	p.space()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) keyword(word string) bool {
	p.space()
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) && isIdent(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *typeParser) typ() (model.TypeExpr, error) {
	if p.eat('?') {
		switch {
		case p.keyword("extends"):
			bound, err := p.typ()
			if err != nil {
				return nil, err
			}
			return &model.Wildcard{Bound: model.ExtendsBound, BoundType: bound}, nil
		case p.keyword("super"):
			bound, err := p.typ()
			if err != nil {
				return nil, err
			}
			return &model.Wildcard{Bound: model.SuperBound, BoundType: bound}, nil
		}
		return &model.Wildcard{Bound: model.Unbounded}, nil
	}

	p.space()
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	varargs := strings.HasSuffix(name, "...")
	name = strings.TrimSuffix(name, "...")
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return nil, p.errorf("expected a type name")
	}

	var t model.TypeExpr
	if !varargs && p.eat('<') {
		var args []model.TypeExpr
		for {
			arg, err := p.typ()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.eat(',') {
				continue
			}
			if !p.eat('>') {
				return nil, p.errorf("expected ',' or '>'")
			}
			break
		}
		t = &model.Declared{Name: name, Args: args}
	} else {
		switch {
		case name == "void":
			t = model.Void()
		case primitives[name]:
			t = &model.Primitive{Kind: name}
		case !strings.Contains(name, ".") && p.inScope(name):
			t = &model.TypeVar{Name: name}
		default:
			t = &model.Declared{Name: name}
		}
	}

	for {
		p.space()
		if !strings.HasPrefix(p.src[p.pos:], "[]") {
			break
		}
		p.pos += 2
		t = &model.Array{Elem: t}
	}
	if !varargs && strings.HasPrefix(p.src[p.pos:], "...") {
		p.pos += 3
		varargs = true
	}
	if varargs {
		t = &model.Array{Elem: t}
	}
	return t, nil
}
