// Package interpreter implements the tree-walking evaluator: it walks
// the resolved AST, producing values for expressions and side effects
// for statements, using value.Environment for lexical scope and a
// typed control-flow signal for return/error propagation.
package interpreter

import (
	"fmt"
	"io"

	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/errs"
	"github.com/arfeld/wisp/internal/value"
)

// returnSignal is how `return` unwinds the Go call stack back to the
// function-call machinery: a typed error-channel value carrying the
// return's value. It implements error only so it can travel through the
// same plumbing as thrown runtime errors; call sites type-assert for it
// explicitly and never let it leak past Call.
type returnSignal struct{ value value.Value }

func (returnSignal) Error() string { return "return outside of function (internal)" }

// Interpreter holds the global environment and I/O streams a running
// program observes. It is not safe for concurrent use — the core is
// single-threaded and synchronous.
type Interpreter struct {
	Globals *value.Environment
	env     *value.Environment

	Stdout io.Writer
	Stdin  io.Reader
}

// New returns an Interpreter with natives registered in Globals.
func New(stdout io.Writer, stdin io.Reader) *Interpreter {
	i := &Interpreter{
		Globals: value.NewEnvironment(nil),
		Stdout:  stdout,
		Stdin:   stdin,
	}
	i.env = i.Globals
	RegisterNatives(i)
	return i
}

// Interpret executes a sequence of top-level declarations. It returns
// the first runtime error encountered, if any; execution stops there —
// a runtime error is fatal to the top-level statement it occurred in.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := i.exec(s); err != nil {
			return err
		}
	}
	return nil
}

// --- statements ---

func (i *Interpreter) exec(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := i.eval(n.Expr)
		return err
	case *ast.PrintStmt:
		v, err := i.eval(n.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.Stdout, v.String())
		return nil
	case *ast.VarStmt:
		var v value.Value
		if n.Init != nil {
			var err error
			v, err = i.eval(n.Init)
			if err != nil {
				return err
			}
		} else {
			v = value.NilValue()
		}
		i.env.Define(n.Name.Lexeme, v)
		return nil
	case *ast.Block:
		return i.execBlock(n.Stmts, value.NewEnvironment(i.env))
	case *ast.IfStmt:
		cond, err := i.eval(n.Cond)
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return i.exec(n.Then)
		} else if n.Else != nil {
			return i.exec(n.Else)
		}
		return nil
	case *ast.WhileStmt:
		for {
			cond, err := i.eval(n.Cond)
			if err != nil {
				return err
			}
			if !cond.Truthy() {
				return nil
			}
			if err := i.exec(n.Body); err != nil {
				return err
			}
		}
	case *ast.FunctionStmt:
		fn := i.makeFunction(n, i.env, false)
		i.env.Define(n.Name.Lexeme, value.ObjectValue(fn))
		return nil
	case *ast.ReturnStmt:
		var v value.Value = value.NilValue()
		if n.Value != nil {
			var err error
			v, err = i.eval(n.Value)
			if err != nil {
				return err
			}
		}
		return returnSignal{value: v}
	case *ast.ClassStmt:
		return i.execClass(n)
	default:
		return fmt.Errorf("interpreter: unhandled statement %T", s)
	}
}

// execBlock pushes env as the active scope, evaluates stmts in order,
// and restores the previous scope on every exit path including error.
func (i *Interpreter) execBlock(stmts []ast.Stmt, env *value.Environment) error {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, s := range stmts {
		if err := i.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execClass(n *ast.ClassStmt) error {
	var super *value.Class
	if n.Superclass != nil {
		v, err := i.eval(n.Superclass)
		if err != nil {
			return err
		}
		obj, ok := v.AsObject().(*value.Class)
		if v.Kind() != value.Obj || !ok {
			return errs.Runtimef(n.Superclass.Name.Line, "superclass must be a class")
		}
		super = obj
	}

	i.env.Define(n.Name.Lexeme, value.NilValue())

	classEnv := i.env
	if super != nil {
		classEnv = value.NewEnvironment(i.env)
		classEnv.Define("super", value.ObjectValue(super))
	}

	methods := map[string]*value.Function{}
	for _, m := range n.Methods {
		methods[m.Name.Lexeme] = i.makeFunction(m, classEnv, m.Name.Lexeme == "init")
	}

	class := &value.Class{
		Name:       n.Name.Lexeme,
		Methods:    methods,
		Superclass: super,
		Construct:  i.construct,
	}
	return i.env.Assign(n.Name.Lexeme, value.ObjectValue(class))
}

// construct allocates an Instance, runs init (if present) bound to it,
// and always returns the Instance regardless of what init returns.
func (i *Interpreter) construct(class *value.Class, args []value.Value) (value.Value, error) {
	inst := value.NewInstance(class)
	if init, ok := class.FindMethod("init"); ok {
		if _, err := init.Bind(inst).Call(args); err != nil {
			return value.Value{}, err
		}
	}
	return value.ObjectValue(inst), nil
}

// makeFunction builds a *value.Function whose Invoke closure captures
// this Interpreter, implementing the dependency-injection pattern
// described in value.Function's doc comment.
func (i *Interpreter) makeFunction(decl *ast.FunctionStmt, closure *value.Environment, isInit bool) *value.Function {
	params := make([]string, len(decl.Params))
	for idx, p := range decl.Params {
		params[idx] = p.Lexeme
	}
	return &value.Function{
		Name:          decl.Name.Lexeme,
		Params:        params,
		Body:          decl.Body,
		IsInitializer: isInit,
		Closure:       closure,
		Invoke:        i.invokeFunction,
	}
}

// invokeFunction binds params in order, executes the body, and unwraps
// a returnSignal into its carried value. For initializers the call
// result is always the bound `this`, regardless of whether (or what)
// the body returns.
func (i *Interpreter) invokeFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	env := value.NewEnvironment(fn.Closure)
	for idx, name := range fn.Params {
		env.Define(name, args[idx])
	}

	err := i.execBlock(fn.Body, env)
	if rs, ok := err.(returnSignal); ok {
		if fn.IsInitializer {
			return fn.Closure.GetAt(0, "this")
		}
		return rs.value, nil
	}
	if err != nil {
		return value.Value{}, err
	}
	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this")
	}
	return value.NilValue(), nil
}
