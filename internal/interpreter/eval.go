package interpreter

import (
	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/errs"
	"github.com/arfeld/wisp/internal/token"
	"github.com/arfeld/wisp/internal/value"
)

func (i *Interpreter) eval(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalValue(n.Value), nil
	case *ast.Grouping:
		return i.eval(n.Expr)
	case *ast.Variable:
		return i.lookupVariable(n.Name, n.Depth)
	case *ast.Assign:
		return i.evalAssign(n)
	case *ast.Unary:
		return i.evalUnary(n)
	case *ast.Binary:
		return i.evalBinary(n)
	case *ast.Logical:
		return i.evalLogical(n)
	case *ast.Call:
		return i.evalCall(n)
	case *ast.Get:
		return i.evalGet(n)
	case *ast.Set:
		return i.evalSet(n)
	case *ast.This:
		return i.lookupVariable(n.Keyword, n.Depth)
	case *ast.Super:
		return i.evalSuper(n)
	default:
		return value.Value{}, errs.Runtimef(0, "interpreter: unhandled expression %T", e)
	}
}

func literalValue(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.NilValue()
	case bool:
		return value.BoolValue(x)
	case float64:
		return value.NumberValue(x)
	case string:
		return value.StringValue(x)
	default:
		return value.NilValue()
	}
}

func (i *Interpreter) lookupVariable(name token.Token, depth *int) (value.Value, error) {
	if depth != nil {
		v, err := i.env.GetAt(*depth, name.Lexeme)
		if err != nil {
			return value.Value{}, errs.Runtimef(name.Line, "%s", err)
		}
		return v, nil
	}
	v, err := i.Globals.Get(name.Lexeme)
	if err != nil {
		return value.Value{}, errs.Runtimef(name.Line, "%s", err)
	}
	return v, nil
}

func (i *Interpreter) evalAssign(n *ast.Assign) (value.Value, error) {
	v, err := i.eval(n.Value)
	if err != nil {
		return value.Value{}, err
	}
	if n.Depth != nil {
		if err := i.env.AssignAt(*n.Depth, n.Name.Lexeme, v); err != nil {
			return value.Value{}, errs.Runtimef(n.Name.Line, "%s", err)
		}
		return v, nil
	}
	if err := i.Globals.Assign(n.Name.Lexeme, v); err != nil {
		return value.Value{}, errs.Runtimef(n.Name.Line, "%s", err)
	}
	return v, nil
}

func (i *Interpreter) evalUnary(n *ast.Unary) (value.Value, error) {
	right, err := i.eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}
	switch n.Op.Kind {
	case token.Bang:
		return value.BoolValue(!right.Truthy()), nil
	case token.Minus:
		if right.Kind() != value.Number {
			return value.Value{}, errs.Runtimef(n.Op.Line, "operand must be a number")
		}
		return value.NumberValue(-right.AsNumber()), nil
	default:
		return value.Value{}, errs.Runtimef(n.Op.Line, "unreachable unary operator %s", n.Op.Kind)
	}
}

func (i *Interpreter) evalLogical(n *ast.Logical) (value.Value, error) {
	left, err := i.eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	if n.Op.Kind == token.Or {
		if left.Truthy() {
			return left, nil
		}
	} else { // and
		if !left.Truthy() {
			return left, nil
		}
	}
	return i.eval(n.Right)
}

func (i *Interpreter) evalBinary(n *ast.Binary) (value.Value, error) {
	left, err := i.eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := i.eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op.Kind {
	case token.Plus:
		return evalAdd(left, right, n.Op.Line)
	case token.Minus:
		return numericBinary(left, right, n.Op.Line, func(a, b float64) float64 { return a - b })
	case token.Star:
		return numericBinary(left, right, n.Op.Line, func(a, b float64) float64 { return a * b })
	case token.Slash:
		return numericBinary(left, right, n.Op.Line, func(a, b float64) float64 { return a / b })
	case token.Greater:
		return numericCompare(left, right, n.Op.Line, func(a, b float64) bool { return a > b })
	case token.GreaterEqual:
		return numericCompare(left, right, n.Op.Line, func(a, b float64) bool { return a >= b })
	case token.Less:
		return numericCompare(left, right, n.Op.Line, func(a, b float64) bool { return a < b })
	case token.LessEqual:
		return numericCompare(left, right, n.Op.Line, func(a, b float64) bool { return a <= b })
	case token.EqualEqual:
		return value.BoolValue(left.Equal(right)), nil
	case token.BangEqual:
		return value.BoolValue(!left.Equal(right)), nil
	default:
		return value.Value{}, errs.Runtimef(n.Op.Line, "unreachable binary operator %s", n.Op.Kind)
	}
}

// evalAdd implements the overloaded `+`: numeric addition when both
// operands are numbers; string concatenation (coercing either operand
// to its display form) when either operand is a string; an error
// otherwise.
func evalAdd(left, right value.Value, line int) (value.Value, error) {
	if left.Kind() == value.Number && right.Kind() == value.Number {
		return value.NumberValue(left.AsNumber() + right.AsNumber()), nil
	}
	if left.Kind() == value.String || right.Kind() == value.String {
		return value.StringValue(left.String() + right.String()), nil
	}
	return value.Value{}, errs.Runtimef(line, "operands must be two numbers, or at least one must be a string")
}

func numericBinary(left, right value.Value, line int, op func(a, b float64) float64) (value.Value, error) {
	if left.Kind() != value.Number || right.Kind() != value.Number {
		return value.Value{}, errs.Runtimef(line, "operands must be numbers")
	}
	return value.NumberValue(op(left.AsNumber(), right.AsNumber())), nil
}

func numericCompare(left, right value.Value, line int, op func(a, b float64) bool) (value.Value, error) {
	if left.Kind() != value.Number || right.Kind() != value.Number {
		return value.Value{}, errs.Runtimef(line, "operands must be numbers")
	}
	return value.BoolValue(op(left.AsNumber(), right.AsNumber())), nil
}
