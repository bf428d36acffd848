// Package encode maps type expressions, literal values and annotations from
// the program model onto terms.
//
// Every dispatch is over a closed variant set. Variants with no fact shape
// produce a placeholder atom and a Diagnostic; encoding never fails.
package encode

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/model"
	"github.com/teranos/logifact/term"
)

const (
	// UnknownType replaces a type expression that cannot be encoded.
	UnknownType = term.Atom("unknown_type")
	// UnknownValue replaces an annotation value that cannot be encoded.
	UnknownValue = term.Atom("unknown_annotation_value")
)

// Diagnostic is a non-fatal report about input the encoder or traversal
// could not express. Err always wraps errors.ErrUnsupportedVariant.
type Diagnostic struct {
	// Scope is the qualified name of the declaration being encoded, if known.
	Scope string
	// Kind is the host's tag for the offending variant.
	Kind string
	Err  error
}

func (d Diagnostic) Error() string {
	if d.Scope == "" {
		return d.Err.Error()
	}
	return d.Scope + ": " + d.Err.Error()
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Reporter receives diagnostics as they happen.
type Reporter func(Diagnostic)

// Encoder turns model values into terms. It holds no per-walk state beyond
// the reporter it was built with.
type Encoder struct {
	logger *zap.SugaredLogger
	report Reporter
	scope  string
}

// New returns an encoder. A nil logger falls back to the global one; a nil
// reporter discards diagnostics after logging them.
func New(log *zap.SugaredLogger, report Reporter) *Encoder {
	if log == nil {
		log = logger.Logger
	}
	if report == nil {
		report = func(Diagnostic) {}
	}
	return &Encoder{logger: log, report: report}
}

// In returns an encoder that attributes diagnostics to scope.
func (e *Encoder) In(scope string) *Encoder {
	c := *e
	c.scope = scope
	return &c
}

// Scope returns the qualified name diagnostics are attributed to.
func (e *Encoder) Scope() string { return e.scope }

// Unsupported logs and reports a diagnostic for a variant in the current scope.
func (e *Encoder) Unsupported(kind, format string, args ...interface{}) {
	d := Diagnostic{
		Scope: e.scope,
		Kind:  kind,
		Err:   errors.NewUnsupportedError(format, args...),
	}
	e.logger.Warnw("Unsupported variant skipped",
		logger.FieldSymbol, e.scope,
		logger.FieldKind, kind,
		logger.FieldError, d.Err.Error())
	e.report(d)
}

// Type encodes one type expression.
func (e *Encoder) Type(t model.TypeExpr) term.Term {
	switch v := t.(type) {
	case nil:
		return term.NewCompound("type", term.Atom("no_type"), term.Atom("none"))
	case *model.Declared:
		args := make([]term.Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = e.Type(a)
		}
		return term.NewCompound("declared_type", term.Atom(v.Name), term.NewList(args...))
	case *model.Primitive:
		return term.NewCompound("type", term.Atom("primitive"), term.Atom(strings.ToLower(v.Kind)))
	case *model.Array:
		return term.NewCompound("type", term.Atom("array"), e.Type(v.Elem))
	case *model.TypeVar:
		return term.NewCompound("type", term.Atom("type_variable"), term.Atom(v.Name))
	case *model.Wildcard:
		switch v.Bound {
		case model.ExtendsBound:
			return term.NewCompound("type", term.Atom("wildcard_extends"), e.Type(v.BoundType))
		case model.SuperBound:
			return term.NewCompound("type", term.Atom("wildcard_super"), e.Type(v.BoundType))
		default:
			return term.NewCompound("type", term.Atom("wildcard_unbounded"), term.Null())
		}
	case *model.NoType:
		return term.NewCompound("type", term.Atom("no_type"), term.Atom(strings.ToLower(v.Kind)))
	case *model.UnknownType:
		e.Unsupported("type", "type expression %s", v.Description)
		return UnknownType
	default:
		e.Unsupported("type", "type expression %T", t)
		return UnknownType
	}
}

// Types encodes a list of type expressions.
func (e *Encoder) Types(ts []model.TypeExpr) *term.List {
	elems := make([]term.Term, len(ts))
	for i, t := range ts {
		elems[i] = e.Type(t)
	}
	return term.NewList(elems...)
}

// Value encodes a literal annotation element value.
func (e *Encoder) Value(v model.Value) term.Term {
	switch x := v.(type) {
	case model.BoolValue:
		return term.Atom(strconv.FormatBool(bool(x)))
	case model.IntValue:
		return term.Atom(strconv.FormatInt(int64(x), 10))
	case model.FloatValue:
		return term.Atom(FormatFloat(float64(x)))
	case model.CharValue:
		return term.Atom("'" + string(rune(x)) + "'")
	case model.StringValue:
		return term.Atom("'" + string(x) + "'")
	case model.TypeValue:
		return e.Type(x.Type)
	case model.EnumValue:
		return term.Atom(x.Enclosing + "." + x.Constant)
	case model.AnnotationValue:
		return e.Annotation(x.Annotation)
	case model.ArrayValue:
		elems := make([]term.Term, len(x))
		for i, el := range x {
			elems[i] = e.Value(el)
		}
		return term.NewList(elems...)
	case model.UnknownValue:
		e.Unsupported("annotation_value", "annotation value %s", x.Description)
		return UnknownValue
	default:
		e.Unsupported("annotation_value", "annotation value %T", v)
		return UnknownValue
	}
}

// FormatFloat renders a float as Java's Double.toString does: plain
// decimal with at least one fractional digit for magnitudes in [1e-3, 1e7),
// otherwise a mantissa with a fractional digit and an unpadded exponent
// (1.0E7, 1.5E-5).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a == 0 || (a >= 1e-3 && a < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

// Annotation encodes annotation(name, [annotation_argument(param, value)]).
func (e *Encoder) Annotation(a model.Annotation) *term.Compound {
	args := make([]term.Term, len(a.Args))
	for i, arg := range a.Args {
		args[i] = term.NewCompound("annotation_argument", term.Atom(arg.Name), e.Value(arg.Value))
	}
	return term.NewCompound("annotation", term.Atom(a.Name), term.NewList(args...))
}

// Annotations encodes a list of annotation usages.
func (e *Encoder) Annotations(as []model.Annotation) *term.List {
	elems := make([]term.Term, len(as))
	for i, a := range as {
		elems[i] = e.Annotation(a)
	}
	return term.NewList(elems...)
}

// Modifiers encodes [modifier(m)...] with lower-case names.
func Modifiers(mods []string) *term.List {
	elems := make([]term.Term, len(mods))
	for i, m := range mods {
		elems[i] = term.NewCompound("modifier", term.Atom(strings.ToLower(m)))
	}
	return term.NewList(elems...)
}

// TypeParams encodes [type_parameter(name, [bounds], annotations)...].
func (e *Encoder) TypeParams(ps []model.TypeParam) *term.List {
	elems := make([]term.Term, len(ps))
	for i, p := range ps {
		elems[i] = term.NewCompound("type_parameter",
			term.Atom(p.Name),
			e.Types(p.Bounds),
			e.Annotations(p.Annotations),
		)
	}
	return term.NewList(elems...)
}

// Extends encodes the superclass slot: extends(kind, T), or null when there
// is no superclass or it is the implicit root type.
func (e *Encoder) Extends(super model.TypeExpr, implicitRoot string) term.Term {
	switch v := super.(type) {
	case nil, *model.NoType:
		return term.Null()
	case *model.Declared:
		if v.Name == implicitRoot && len(v.Args) == 0 {
			return term.Null()
		}
	}
	return term.NewCompound("extends", term.Atom(super.KindName()), e.Type(super))
}

// Implements encodes [implements(kind, T)...].
func (e *Encoder) Implements(ifaces []model.TypeExpr) *term.List {
	elems := make([]term.Term, 0, len(ifaces))
	for _, t := range ifaces {
		kind := "declared"
		if t != nil {
			kind = t.KindName()
		}
		elems = append(elems, term.NewCompound("implements", term.Atom(kind), e.Type(t)))
	}
	return term.NewList(elems...)
}

// Params encodes [parameter(name, T, mods, annotations)...].
func (e *Encoder) Params(ps []model.Parameter) *term.List {
	elems := make([]term.Term, len(ps))
	for i, p := range ps {
		elems[i] = term.NewCompound("parameter",
			term.Atom(p.Name),
			e.Type(p.Type),
			Modifiers(p.Modifiers),
			e.Annotations(p.Annotations),
		)
	}
	return term.NewList(elems...)
}

// Throws encodes [throws(T)...].
func (e *Encoder) Throws(ts []model.TypeExpr) *term.List {
	elems := make([]term.Term, len(ts))
	for i, t := range ts {
		elems[i] = term.NewCompound("throws", e.Type(t))
	}
	return term.NewList(elems...)
}

// Doc returns the documentation atom. Newlines become the two characters
// \n and carriage returns are dropped; with include false it is always ''.
func Doc(text string, include bool) term.Atom {
	if !include || text == "" {
		return term.Atom("")
	}
	text = strings.ReplaceAll(text, "\r", "")
	return term.Atom(strings.ReplaceAll(text, "\n", `\n`))
}
