package ast

import (
	"fmt"
	"strings"
)

// Print renders an expression as a fully-parenthesized Lisp-like form,
// e.g. `(+ 1 (* 2 3))`. It exists only as a parser sanity-check used
// behind the CLI's --trace flag; nothing in the evaluator depends on it.
func Print(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		return literalString(n.Value)
	case *Grouping:
		return paren("group", n.Expr)
	case *Unary:
		return paren(n.Op.Lexeme, n.Right)
	case *Binary:
		return paren(n.Op.Lexeme, n.Left, n.Right)
	case *Logical:
		return paren(n.Op.Lexeme, n.Left, n.Right)
	case *Variable:
		return n.Name.Lexeme
	case *Assign:
		return paren("= "+n.Name.Lexeme, n.Value)
	case *Call:
		args := make([]Expr, 0, len(n.Args)+1)
		args = append(args, n.Callee)
		args = append(args, n.Args...)
		return paren("call", args...)
	case *Get:
		return paren("get "+n.Name.Lexeme, n.Object)
	case *Set:
		return paren("set "+n.Name.Lexeme, n.Object, n.Value)
	case *This:
		return "this"
	case *Super:
		return "super." + n.Method.Lexeme
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func paren(name string, exprs ...Expr) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteByte(' ')
		b.WriteString(Print(e))
	}
	b.WriteByte(')')
	return b.String()
}

func literalString(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", v)
}

// PrintPolish renders e in Polish (prefix) notation, which for this
// grammar is identical in shape to Print but without the outer parens
// around each operator application collapsing nested groupings.
func PrintPolish(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		return literalString(n.Value)
	case *Grouping:
		return PrintPolish(n.Expr)
	case *Unary:
		return n.Op.Lexeme + " " + PrintPolish(n.Right)
	case *Binary:
		return n.Op.Lexeme + " " + PrintPolish(n.Left) + " " + PrintPolish(n.Right)
	case *Logical:
		return n.Op.Lexeme + " " + PrintPolish(n.Left) + " " + PrintPolish(n.Right)
	default:
		return Print(e)
	}
}

// PrintReversePolish renders e in reverse Polish (postfix) notation.
func PrintReversePolish(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		return literalString(n.Value)
	case *Grouping:
		return PrintReversePolish(n.Expr)
	case *Unary:
		return PrintReversePolish(n.Right) + " " + n.Op.Lexeme
	case *Binary:
		return PrintReversePolish(n.Left) + " " + PrintReversePolish(n.Right) + " " + n.Op.Lexeme
	case *Logical:
		return PrintReversePolish(n.Left) + " " + PrintReversePolish(n.Right) + " " + n.Op.Lexeme
	default:
		return Print(e)
	}
}
