package interpreter

import (
	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/errs"
	"github.com/arfeld/wisp/internal/value"
)

// evalCall evaluates the callee, evaluates args left-to-right, checks
// it's callable, checks arity, then dispatches. Function body execution
// and class construction live in invokeFunction/construct, injected as
// the Callable's own Call.
func (i *Interpreter) evalCall(n *ast.Call) (value.Value, error) {
	callee, err := i.eval(n.Callee)
	if err != nil {
		return value.Value{}, err
	}

	args := make([]value.Value, len(n.Args))
	for idx, a := range n.Args {
		v, err := i.eval(a)
		if err != nil {
			return value.Value{}, err
		}
		args[idx] = v
	}

	if callee.Kind() != value.Obj {
		return value.Value{}, errs.Runtimef(n.Paren.Line, "can only call functions and classes")
	}
	fn, ok := callee.AsObject().(value.Callable)
	if !ok {
		return value.Value{}, errs.Runtimef(n.Paren.Line, "can only call functions and classes")
	}

	if len(args) != fn.Arity() {
		return value.Value{}, errs.Runtimef(n.Paren.Line, "expected %d arguments but got %d", fn.Arity(), len(args))
	}

	return fn.Call(args)
}

// evalGet implements property access: only Instance values have
// properties.
func (i *Interpreter) evalGet(n *ast.Get) (value.Value, error) {
	obj, err := i.eval(n.Object)
	if err != nil {
		return value.Value{}, err
	}
	inst, ok := obj.AsObject().(*value.Instance)
	if obj.Kind() != value.Obj || !ok {
		return value.Value{}, errs.Runtimef(n.Name.Line, "only instances have properties")
	}
	v, err := inst.Get(n.Name.Lexeme)
	if err != nil {
		return value.Value{}, errs.Runtimef(n.Name.Line, "%s", err)
	}
	return v, nil
}

// evalSet implements property assignment: always creates or updates the
// field on an Instance.
func (i *Interpreter) evalSet(n *ast.Set) (value.Value, error) {
	obj, err := i.eval(n.Object)
	if err != nil {
		return value.Value{}, err
	}
	inst, ok := obj.AsObject().(*value.Instance)
	if obj.Kind() != value.Obj || !ok {
		return value.Value{}, errs.Runtimef(n.Name.Line, "only instances have fields")
	}
	v, err := i.eval(n.Value)
	if err != nil {
		return value.Value{}, err
	}
	inst.Set(n.Name.Lexeme, v)
	return v, nil
}

// evalSuper implements `super.method`: the method is looked up on the
// superclass's own table (not walking further up), then bound to
// `this`, found one frame inward of where `super` was found.
func (i *Interpreter) evalSuper(n *ast.Super) (value.Value, error) {
	if n.Depth == nil {
		return value.Value{}, errs.Runtimef(n.Keyword.Line, "super used outside of a class")
	}
	superVal, err := i.env.GetAt(*n.Depth, "super")
	if err != nil {
		return value.Value{}, errs.Runtimef(n.Keyword.Line, "%s", err)
	}
	super, ok := superVal.AsObject().(*value.Class)
	if !ok {
		return value.Value{}, errs.Runtimef(n.Keyword.Line, "super did not resolve to a class")
	}

	thisVal, err := i.env.GetAt(*n.Depth-1, "this")
	if err != nil {
		return value.Value{}, errs.Runtimef(n.Keyword.Line, "%s", err)
	}
	inst, ok := thisVal.AsObject().(*value.Instance)
	if !ok {
		return value.Value{}, errs.Runtimef(n.Keyword.Line, "this did not resolve to an instance")
	}

	method, found := super.Methods[n.Method.Lexeme]
	if !found {
		return value.Value{}, errs.Runtimef(n.Method.Line, "undefined property '%s'", n.Method.Lexeme)
	}
	return value.ObjectValue(method.Bind(inst)), nil
}
