// Package model is the read-only program model fact generation walks.
//
// Hosts (a document loader, the Go source loader, test fixtures) build a
// tree of Symbols and expose it through a Provider. Every kind dimension is
// a closed set: Symbol, TypeExpr and Value are sealed interfaces, and the
// Kind enums carry an explicit unsupported arm so consumers match
// exhaustively instead of relying on a default handler.
package model

// Symbol is one declaration. Implemented only by the types in this package.
type Symbol interface {
	SymbolName() string
	symbol()
}

// Module is a named unit of packages with dependency and visibility directives.
type Module struct {
	Name        string
	Modifiers   []string
	Requires    []Requires
	Exports     []Exports
	Uses        []TypeExpr
	Provides    []Provides
	Packages    []*Package
	Annotations []Annotation
	Doc         string
}

// Requires declares a module dependency. Modifiers are "transitive" and "static".
type Requires struct {
	Module      string
	Modifiers   []string
	Annotations []Annotation
}

// Exports makes a package visible. A non-empty To restricts the export to
// the named modules.
type Exports struct {
	Package     string
	To          []string
	Annotations []Annotation
}

// Restricted reports whether the export is qualified to specific modules.
func (e Exports) Restricted() bool { return len(e.To) > 0 }

// Provides registers service implementations.
type Provides struct {
	Service         TypeExpr
	Implementations []TypeExpr
	Annotations     []Annotation
}

// Package groups declarations under a dotted name. The unnamed package has
// an empty Name.
type Package struct {
	Name    string
	Members []Symbol
	Doc     string
}

// TypeKind identifies a type declaration.
type TypeKind int

const (
	TypeKindUnsupported TypeKind = iota
	TypeKindClass
	TypeKindInterface
	TypeKindEnum
	TypeKindRecord
	TypeKindAnnotation
)

var typeKindNames = map[TypeKind]string{
	TypeKindClass:      "CLASS",
	TypeKindInterface:  "INTERFACE",
	TypeKindEnum:       "ENUM",
	TypeKindRecord:     "RECORD",
	TypeKindAnnotation: "ANNOTATION_TYPE",
}

// String returns the upper-case kind tag used in type_declaration markers.
func (k TypeKind) String() string {
	if n, ok := typeKindNames[k]; ok {
		return n
	}
	return "UNSUPPORTED"
}

// ParseTypeKind maps a kind tag (case-insensitive) to a TypeKind.
// Unknown tags yield TypeKindUnsupported.
func ParseTypeKind(s string) TypeKind {
	switch upper(s) {
	case "CLASS", "STRUCT":
		return TypeKindClass
	case "INTERFACE":
		return TypeKindInterface
	case "ENUM":
		return TypeKindEnum
	case "RECORD":
		return TypeKindRecord
	case "ANNOTATION_TYPE", "ANNOTATION":
		return TypeKindAnnotation
	}
	return TypeKindUnsupported
}

// Type is a class, interface, enum, record or annotation type declaration.
type Type struct {
	Kind TypeKind
	// RawKind preserves the host's own tag for diagnostics on unsupported kinds.
	RawKind    string
	Name       string
	Package    string
	Modifiers  []string
	TypeParams []TypeParam
	// Superclass is nil when the type has no explicit superclass.
	Superclass TypeExpr
	Interfaces []TypeExpr
	// Permits lists the qualified names of permitted subtypes.
	Permits     []string
	Components  []RecordComponent
	Members     []Symbol
	Annotations []Annotation
	Doc         string
}

// QualifiedName joins package and simple name.
func (t *Type) QualifiedName() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// TypeParam is a generic type parameter with its bounds.
type TypeParam struct {
	Name        string
	Bounds      []TypeExpr
	Annotations []Annotation
}

// RecordComponent is one header component of a record.
type RecordComponent struct {
	Name        string
	Type        TypeExpr
	Annotations []Annotation
}

// ExecutableKind identifies a method-like member.
type ExecutableKind int

const (
	ExecutableUnsupported ExecutableKind = iota
	ExecutableMethod
	ExecutableConstructor
	ExecutableStaticInit
	ExecutableInstanceInit
)

func (k ExecutableKind) String() string {
	switch k {
	case ExecutableMethod:
		return "METHOD"
	case ExecutableConstructor:
		return "CONSTRUCTOR"
	case ExecutableStaticInit:
		return "STATIC_INIT"
	case ExecutableInstanceInit:
		return "INSTANCE_INIT"
	}
	return "UNSUPPORTED"
}

// ParseExecutableKind maps a kind tag (case-insensitive) to an ExecutableKind.
func ParseExecutableKind(s string) ExecutableKind {
	switch upper(s) {
	case "METHOD", "FUNC":
		return ExecutableMethod
	case "CONSTRUCTOR":
		return ExecutableConstructor
	case "STATIC_INIT":
		return ExecutableStaticInit
	case "INSTANCE_INIT":
		return ExecutableInstanceInit
	}
	return ExecutableUnsupported
}

// Executable is a method, constructor or initializer.
type Executable struct {
	Kind        ExecutableKind
	RawKind     string
	Name        string
	Modifiers   []string
	TypeParams  []TypeParam
	Return      TypeExpr
	Params      []Parameter
	Throws      []TypeExpr
	Annotations []Annotation
	Doc         string
}

// Parameter is one formal parameter of an executable.
type Parameter struct {
	Name        string
	Type        TypeExpr
	Modifiers   []string
	Annotations []Annotation
}

// VariableKind identifies a variable-like symbol.
type VariableKind int

const (
	VariableUnsupported VariableKind = iota
	VariableField
	VariableEnumConstant
	VariableParameter
	VariableLocal
	VariableResource
	VariableExceptionParam
)

func (k VariableKind) String() string {
	switch k {
	case VariableField:
		return "FIELD"
	case VariableEnumConstant:
		return "ENUM_CONSTANT"
	case VariableParameter:
		return "PARAMETER"
	case VariableLocal:
		return "LOCAL_VARIABLE"
	case VariableResource:
		return "RESOURCE_VARIABLE"
	case VariableExceptionParam:
		return "EXCEPTION_PARAMETER"
	}
	return "UNSUPPORTED"
}

// ParseVariableKind maps a kind tag (case-insensitive) to a VariableKind.
func ParseVariableKind(s string) VariableKind {
	switch upper(s) {
	case "FIELD":
		return VariableField
	case "ENUM_CONSTANT", "CONST":
		return VariableEnumConstant
	case "PARAMETER":
		return VariableParameter
	case "LOCAL_VARIABLE", "LOCAL":
		return VariableLocal
	case "RESOURCE_VARIABLE", "RESOURCE":
		return VariableResource
	case "EXCEPTION_PARAMETER":
		return VariableExceptionParam
	}
	return VariableUnsupported
}

// Variable is a field or another variable-like declaration.
type Variable struct {
	Kind        VariableKind
	RawKind     string
	Name        string
	Modifiers   []string
	Type        TypeExpr
	Annotations []Annotation
	Doc         string
}

// Unsupported stands in for a declaration the host could not classify.
type Unsupported struct {
	Kind string
	Name string
}

func (m *Module) SymbolName() string      { return m.Name }
func (p *Package) SymbolName() string     { return p.Name }
func (t *Type) SymbolName() string        { return t.Name }
func (e *Executable) SymbolName() string  { return e.Name }
func (v *Variable) SymbolName() string    { return v.Name }
func (u *Unsupported) SymbolName() string { return u.Name }

func (*Module) symbol()      {}
func (*Package) symbol()     {}
func (*Type) symbol()        {}
func (*Executable) symbol()  {}
func (*Variable) symbol()    {}
func (*Unsupported) symbol() {}

// Annotation is a usage of an annotation (or a Go struct tag) on a declaration.
type Annotation struct {
	Name string
	Args []AnnotationArg
}

// AnnotationArg is one explicitly supplied element value.
type AnnotationArg struct {
	Name  string
	Value Value
}
