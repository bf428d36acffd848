package model

// Value is a literal annotation element value. Implemented only by the
// types in this file.
type Value interface {
	value()
}

type (
	BoolValue   bool
	IntValue    int64
	FloatValue  float64
	CharValue   rune
	StringValue string
)

// TypeValue is a class literal such as String.class.
type TypeValue struct {
	Type TypeExpr
}

// EnumValue is an enum constant, rendered Enclosing.Constant.
type EnumValue struct {
	Enclosing string
	Constant  string
}

// AnnotationValue is a nested annotation.
type AnnotationValue struct {
	Annotation Annotation
}

// ArrayValue is an ordered list of element values.
type ArrayValue []Value

// UnknownValue is an element value the host could not classify.
type UnknownValue struct {
	Description string
}

func (BoolValue) value()       {}
func (IntValue) value()        {}
func (FloatValue) value()      {}
func (CharValue) value()       {}
func (StringValue) value()     {}
func (TypeValue) value()       {}
func (EnumValue) value()       {}
func (AnnotationValue) value() {}
func (ArrayValue) value()      {}
func (UnknownValue) value()    {}
