package value

import (
	"fmt"

	"github.com/arfeld/wisp/internal/ast"
)

// Callable is any value invocable with arguments: a user Function, a
// Native, or a Class (invoked as a constructor).
type Callable interface {
	Object
	Arity() int
	Call(args []Value) (Value, error)
}

// Function is a user-defined function or method. It does not know how
// to execute its own body: Invoke is injected by package interpreter at
// construction time, so this package stays free of any dependency on
// the evaluator. This is the Go-idiomatic stand-in for the closures the
// evaluator builds: the *Environment pointer is what makes the closure
// share (not copy) its defining frame.
type Function struct {
	Name          string
	Params        []string
	Body          []ast.Stmt
	IsInitializer bool
	Closure       *Environment

	Invoke func(fn *Function, args []Value) (Value, error)
}

func (f *Function) Arity() int { return len(f.Params) }

func (f *Function) Call(args []Value) (Value, error) { return f.Invoke(f, args) }

func (f *Function) ObjectString() string {
	if f.Name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// Bind returns a copy of f whose closure is a fresh frame defining
// `this` = instance, one frame inward of f's own closure. Used both for
// ordinary method binding and for super-method binding.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", ObjectValue(instance))
	return &Function{
		Name:          f.Name,
		Params:        f.Params,
		Body:          f.Body,
		IsInitializer: f.IsInitializer,
		Closure:       env,
		Invoke:        f.Invoke,
	}
}

// Native is a host-implemented callable (clock, readLines, parseInt).
type Native struct {
	Name   string
	ArityN int
	Fn     func(args []Value) (Value, error)
}

func (n *Native) Arity() int                      { return n.ArityN }
func (n *Native) Call(args []Value) (Value, error) { return n.Fn(args) }
func (n *Native) ObjectString() string             { return fmt.Sprintf("<native fn %s>", n.Name) }

// Class is a class descriptor: its own methods plus an optional
// superclass reference. Construct is injected by package interpreter,
// mirroring Function.Invoke, so Class.Call can run the init-and-return
// protocol without this package depending on the evaluator.
type Class struct {
	Name       string
	Methods    map[string]*Function
	Superclass *Class

	Construct func(class *Class, args []Value) (Value, error)
}

// FindMethod searches c's own method table, then walks the superclass
// chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if m, ok := class.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(args []Value) (Value, error) { return c.Construct(c, args) }

func (c *Class) ObjectString() string {
	if c.Name == "" {
		return "<class>"
	}
	return c.Name
}

// Instance is a live object produced by invoking a Class. Always stored
// in a Value via a pointer, so every binding to an Instance observes
// the same mutable field map.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: map[string]Value{}}
}

// Get implements property access: instance fields shadow methods, which
// are looked up by walking the superclass chain and bound to this
// instance on return.
func (i *Instance) Get(name string) (Value, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if m, ok := i.Class.FindMethod(name); ok {
		return ObjectValue(m.Bind(i)), nil
	}
	return Value{}, fmt.Errorf("undefined property '%s'", name)
}

// Set always creates or updates the field; it never conflicts with a
// method of the same name.
func (i *Instance) Set(name string, v Value) {
	i.Fields[name] = v
}

func (i *Instance) ObjectString() string {
	return fmt.Sprintf("%s instance", i.Class.Name)
}
