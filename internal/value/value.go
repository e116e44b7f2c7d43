// Package value implements the runtime value model shared by the
// tree-walking evaluator and the bytecode VM: a tagged sum of
// Nil/Bool/Number/String/Callable/Class/Instance, with the conversions,
// truthiness, equality, and display rules spec'd for the language.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	Nil Kind = iota
	Bool
	Number
	String
	Obj // Callable, Class, or Instance — see Object field
)

// Object is the common interface for heap-allocated, reference-shared
// values: Callable, *Class, *Instance. It exists so Value can hold any
// of them behind one interface (the concrete types are Function,
// Native, Class, and Instance in callable.go).
type Object interface {
	// ObjectString returns the value's display form.
	ObjectString() string
}

// Value is the tagged union every expression evaluates to.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	obj  Object
}

func NilValue() Value             { return Value{kind: Nil} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }
func StringValue(s string) Value  { return Value{kind: String, s: s} }
func ObjectValue(o Object) Value  { return Value{kind: Obj, obj: o} }

func (v Value) Kind() Kind         { return v.kind }
func (v Value) IsNil() bool       { return v.kind == Nil }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsString() string  { return v.s }
func (v Value) AsObject() Object  { return v.obj }

// Truthy implements the spec's truthiness rule: Nil and Bool(false) are
// the only falsy values.
func (v Value) Truthy() bool {
	switch v.kind {
	case Nil:
		return false
	case Bool:
		return v.b
	default:
		return true
	}
}

// Equal implements the spec's equality rule: same-variant structural
// equality; Callable/Class/Instance compare by identity (the underlying
// Object is a pointer); cross-variant equality is always false.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Nil:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	case Obj:
		return v.obj == o.obj
	default:
		return false
	}
}

// String renders v's display form: numbers print via shortest
// round-trip decimal (which never adds a trailing ".0", so integral
// values read as integers); Bool -> true/false; Nil -> nil; String verbatim;
// Callable/Class/Instance delegate to ObjectString.
func (v Value) String() string {
	switch v.kind {
	case Nil:
		return "nil"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.n)
	case String:
		return v.s
	case Obj:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.ObjectString()
	default:
		return fmt.Sprintf("<invalid kind %d>", v.kind)
	}
}

func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'g', -1, 64)
	// Go's 'g' format already produces the shortest round-trip decimal,
	// so integer-valued numbers naturally show without a ".0" suffix.
	return s
}
