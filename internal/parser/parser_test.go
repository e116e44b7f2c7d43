package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/scanner"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, err := scanner.Scan(src)
	require.NoError(t, err)
	stmts, err := Parse(toks)
	require.NoError(t, err)
	return stmts
}

func TestParsePrintExpression(t *testing.T) {
	stmts := parse(t, "print 1 + 2 * 3;")
	require.Len(t, stmts, 1)
	pr, ok := stmts[0].(*ast.PrintStmt)
	require.True(t, ok)
	assert.Equal(t, "(+ 1 (* 2 3))", ast.Print(pr.Expr))
}

func TestParseVarDeclAndAssignment(t *testing.T) {
	stmts := parse(t, "var a = 1; a = 2;")
	require.Len(t, stmts, 2)
	_, ok := stmts[0].(*ast.VarStmt)
	require.True(t, ok)
	es, ok := stmts[1].(*ast.ExprStmt)
	require.True(t, ok)
	_, ok = es.Expr.(*ast.Assign)
	assert.True(t, ok)
}

func TestParseClassWithSuperclass(t *testing.T) {
	stmts := parse(t, `
class A { f() { return "A"; } }
class B < A { f() { return super.f() + "B"; } }
`)
	require.Len(t, stmts, 2)
	b, ok := stmts[1].(*ast.ClassStmt)
	require.True(t, ok)
	require.NotNil(t, b.Superclass)
	assert.Equal(t, "A", b.Superclass.Name.Lexeme)
	require.Len(t, b.Methods, 1)
}

func TestForDesugarsToWhile(t *testing.T) {
	stmts := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Len(t, stmts, 1)
	outer, ok := stmts[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, outer.Stmts, 2)
	_, ok = outer.Stmts[0].(*ast.VarStmt)
	assert.True(t, ok)
	while, ok := outer.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	body, ok := while.Body.(*ast.Block)
	require.True(t, ok)
	require.Len(t, body.Stmts, 2)
}

func TestForWithMissingConditionDefaultsTrue(t *testing.T) {
	stmts := parse(t, "for (;;) print 1;")
	while := stmts[0].(*ast.WhileStmt)
	lit, ok := while.Cond.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, true, lit.Value)
}

func TestInvalidAssignmentTargetIsAnError(t *testing.T) {
	toks, err := scanner.Scan("1 = 2;")
	require.NoError(t, err)
	_, err = Parse(toks)
	assert.Error(t, err)
}

func TestArgumentLimitIsEnforced(t *testing.T) {
	src := "f(" + repeatArgs(256) + ");"
	toks, err := scanner.Scan(src)
	require.NoError(t, err)
	_, err = Parse(toks)
	assert.Error(t, err)
}

func TestMissingClosingParenRecoversAtNextStatement(t *testing.T) {
	toks, serr := scanner.Scan("print (1 + 2; print 3;")
	require.NoError(t, serr)
	stmts, err := Parse(toks)
	assert.Error(t, err)
	// synchronization should still let us recover the second print
	require.Len(t, stmts, 1)
	pr, ok := stmts[0].(*ast.PrintStmt)
	require.True(t, ok)
	lit, ok := pr.Expr.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, 3.0, lit.Value)
}

func repeatArgs(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += "1"
	}
	return s
}
