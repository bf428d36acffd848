package model

import "strings"

// TypeExpr is a reference to a type in a signature. Implemented only by
// the types in this file.
type TypeExpr interface {
	// KindName is the lower-case variant tag used in extends/implements facts.
	KindName() string
	typeExpr()
}

// Declared references a named type, possibly with type arguments.
type Declared struct {
	Name string
	Args []TypeExpr
}

// Primitive is a built-in scalar type such as int or boolean.
type Primitive struct {
	Kind string
}

// Array is an array (or slice) of Elem.
type Array struct {
	Elem TypeExpr
}

// TypeVar references a type parameter in scope.
type TypeVar struct {
	Name string
}

// WildcardBound tells which side a wildcard is bounded on.
type WildcardBound int

const (
	Unbounded WildcardBound = iota
	ExtendsBound
	SuperBound
)

// Wildcard is `?`, `? extends Bound` or `? super Bound`.
type Wildcard struct {
	Bound     WildcardBound
	BoundType TypeExpr
}

// NoType is the absent type: void returns and the missing superclass.
type NoType struct {
	Kind string
}

// UnknownType is a type the host could not express in this model.
type UnknownType struct {
	Description string
}

func (*Declared) KindName() string    { return "declared" }
func (*Primitive) KindName() string   { return "primitive" }
func (*Array) KindName() string       { return "array" }
func (*TypeVar) KindName() string     { return "typevar" }
func (*Wildcard) KindName() string    { return "wildcard" }
func (*NoType) KindName() string      { return "none" }
func (*UnknownType) KindName() string { return "error" }

func (*Declared) typeExpr()    {}
func (*Primitive) typeExpr()   {}
func (*Array) typeExpr()       {}
func (*TypeVar) typeExpr()     {}
func (*Wildcard) typeExpr()    {}
func (*NoType) typeExpr()      {}
func (*UnknownType) typeExpr() {}

// Void is the return type of a method that returns nothing.
func Void() *NoType { return &NoType{Kind: "void"} }

// Ref builds a declared reference.
func Ref(name string, args ...TypeExpr) *Declared {
	return &Declared{Name: name, Args: args}
}

// TypeString renders a TypeExpr in source-like notation, for logs and
// diagnostics.
func TypeString(t TypeExpr) string {
	switch v := t.(type) {
	case nil:
		return "<nil>"
	case *Declared:
		if len(v.Args) == 0 {
			return v.Name
		}
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = TypeString(a)
		}
		return v.Name + "<" + strings.Join(args, ", ") + ">"
	case *Primitive:
		return v.Kind
	case *Array:
		return TypeString(v.Elem) + "[]"
	case *TypeVar:
		return v.Name
	case *Wildcard:
		switch v.Bound {
		case ExtendsBound:
			return "? extends " + TypeString(v.BoundType)
		case SuperBound:
			return "? super " + TypeString(v.BoundType)
		}
		return "?"
	case *NoType:
		return v.Kind
	case *UnknownType:
		return "<unknown " + v.Description + ">"
	}
	return "<unsupported>"
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
