// Package resolver implements the static scope analyzer: it walks the
// AST before evaluation, annotating each Variable/Assign/
// This/Super node with the number of enclosing scopes to skip to reach
// its binding (nil means "global").
package resolver

import (
	"github.com/hashicorp/go-multierror"

	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/errs"
)

type binding struct {
	declared bool
	defined  bool
}

type functionKind int

const (
	fkNone functionKind = iota
	fkFunction
	fkInitializer
	fkMethod
)

type classKind int

const (
	ckNone classKind = iota
	ckClass
	ckSubclass
)

// Resolver holds the scope stack used during a single resolve pass.
// Resolution aborts on the first error.
type Resolver struct {
	scopes []map[string]*binding

	currentFunction functionKind
	currentClass    classKind

	errs *multierror.Error
}

// New returns a fresh Resolver.
func New() *Resolver { return &Resolver{} }

// Resolve runs static analysis over the top-level declarations,
// mutating their Depth fields in place.
func Resolve(stmts []ast.Stmt) error {
	return New().Resolve(stmts)
}

func (r *Resolver) Resolve(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if r.errs != nil {
			break
		}
		r.stmt(s)
	}
	return r.errs.ErrorOrNil()
}

func (r *Resolver) fail(line int, lexeme, message string) {
	if r.errs != nil {
		return // already failed; only the first error is reported
	}
	r.errs = multierror.Append(r.errs, errs.New(errs.Resolve, line, lexeme, message))
}

// --- scope stack ---

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]*binding{}) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) peek() map[string]*binding {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name string, line int) {
	sc := r.peek()
	if sc == nil {
		return
	}
	if _, ok := sc[name]; ok {
		r.fail(line, name, "already a variable with this name in this scope")
		return
	}
	sc[name] = &binding{declared: true}
}

func (r *Resolver) define(name string) {
	sc := r.peek()
	if sc == nil {
		return
	}
	if b, ok := sc[name]; ok {
		b.defined = true
	}
}

// resolveLocal walks scopes inner-to-outer looking for name, recording
// the hop distance against dst if found. Absence leaves dst untouched
// (nil), meaning "global".
func (r *Resolver) resolveLocal(dst **int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			d := len(r.scopes) - 1 - i
			*dst = &d
			return
		}
	}
}

// --- statements ---

func (r *Resolver) stmt(s ast.Stmt) {
	if r.errs != nil {
		return
	}
	switch n := s.(type) {
	case *ast.Block:
		r.beginScope()
		for _, st := range n.Stmts {
			r.stmt(st)
		}
		r.endScope()
	case *ast.VarStmt:
		r.declare(n.Name.Lexeme, n.Name.Line)
		if n.Init != nil {
			r.expr(n.Init)
		}
		r.define(n.Name.Lexeme)
	case *ast.FunctionStmt:
		r.declare(n.Name.Lexeme, n.Name.Line)
		r.define(n.Name.Lexeme)
		r.resolveFunction(n, fkFunction)
	case *ast.ExprStmt:
		r.expr(n.Expr)
	case *ast.IfStmt:
		r.expr(n.Cond)
		r.stmt(n.Then)
		if n.Else != nil {
			r.stmt(n.Else)
		}
	case *ast.PrintStmt:
		r.expr(n.Expr)
	case *ast.ReturnStmt:
		if r.currentFunction == fkNone {
			r.fail(n.Keyword.Line, n.Keyword.Lexeme, "can't return from top-level code")
			return
		}
		if n.Value != nil {
			if r.currentFunction == fkInitializer {
				r.fail(n.Keyword.Line, n.Keyword.Lexeme, "can't return a value from an initializer")
				return
			}
			r.expr(n.Value)
		}
	case *ast.WhileStmt:
		r.expr(n.Cond)
		r.stmt(n.Body)
	case *ast.ClassStmt:
		r.classStmt(n)
	default:
		panic("resolver: unhandled statement node")
	}
}

func (r *Resolver) classStmt(n *ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = ckClass

	r.declare(n.Name.Lexeme, n.Name.Line)
	r.define(n.Name.Lexeme)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.fail(n.Superclass.Name.Line, n.Superclass.Name.Lexeme, "a class can't inherit from itself")
		}
		r.currentClass = ckSubclass
		r.expr(n.Superclass)

		r.beginScope()
		r.peek()["super"] = &binding{declared: true, defined: true}
	}

	r.beginScope()
	r.peek()["this"] = &binding{declared: true, defined: true}

	for _, m := range n.Methods {
		kind := fkMethod
		if m.Name.Lexeme == "init" {
			kind = fkInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope() // the "this" scope

	if n.Superclass != nil {
		r.endScope() // the "super" scope
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p.Lexeme, p.Line)
		r.define(p.Lexeme)
	}
	for _, st := range fn.Body {
		r.stmt(st)
	}
	r.endScope()

	r.currentFunction = enclosingFunction
}

// --- expressions ---

func (r *Resolver) expr(e ast.Expr) {
	if r.errs != nil {
		return
	}
	switch n := e.(type) {
	case *ast.Variable:
		if sc := r.peek(); sc != nil {
			if b, ok := sc[n.Name.Lexeme]; ok && b.declared && !b.defined {
				r.fail(n.Name.Line, n.Name.Lexeme, "can't read local variable in its own initializer")
				return
			}
		}
		r.resolveLocal(&n.Depth, n.Name.Lexeme)
	case *ast.Assign:
		r.expr(n.Value)
		r.resolveLocal(&n.Depth, n.Name.Lexeme)
	case *ast.Binary:
		r.expr(n.Left)
		r.expr(n.Right)
	case *ast.Logical:
		r.expr(n.Left)
		r.expr(n.Right)
	case *ast.Unary:
		r.expr(n.Right)
	case *ast.Grouping:
		r.expr(n.Expr)
	case *ast.Literal:
		// nothing to resolve
	case *ast.Call:
		r.expr(n.Callee)
		for _, a := range n.Args {
			r.expr(a)
		}
	case *ast.Get:
		r.expr(n.Object)
	case *ast.Set:
		r.expr(n.Value)
		r.expr(n.Object)
	case *ast.This:
		if r.currentClass == ckNone {
			r.fail(n.Keyword.Line, n.Keyword.Lexeme, "can't use 'this' outside of a class")
			return
		}
		r.resolveLocal(&n.Depth, "this")
	case *ast.Super:
		switch r.currentClass {
		case ckNone:
			r.fail(n.Keyword.Line, n.Keyword.Lexeme, "can't use 'super' outside of a class")
			return
		case ckClass:
			r.fail(n.Keyword.Line, n.Keyword.Lexeme, "can't use 'super' in a class with no superclass")
			return
		}
		r.resolveLocal(&n.Depth, "super")
	default:
		panic("resolver: unhandled expression node")
	}
}
