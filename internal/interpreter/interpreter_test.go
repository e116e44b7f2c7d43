package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arfeld/wisp/internal/parser"
	"github.com/arfeld/wisp/internal/resolver"
	"github.com/arfeld/wisp/internal/scanner"
)

// run compiles and interprets src, returning everything printed to
// stdout and the first error encountered in any pipeline stage.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	toks, err := scanner.Scan(src)
	if err != nil {
		return "", err
	}
	stmts, err := parser.Parse(toks)
	if err != nil {
		return "", err
	}
	if err := resolver.Resolve(stmts); err != nil {
		return "", err
	}
	var out bytes.Buffer
	in := New(&out, strings.NewReader(""))
	err = in.Interpret(stmts)
	return out.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, "print 1 + 2 * 3;")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `var a = "hi"; print a + " " + "there";`)
	require.NoError(t, err)
	assert.Equal(t, "hi there\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, err := run(t, `
fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); }
print fib(10);
`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestClassInitAndMethod(t *testing.T) {
	out, err := run(t, `
class Greeter {
  init(n) { this.n = n; }
  hi() { return "hello " + this.n; }
}
print Greeter("world").hi();
`)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestSubclassInheritsInitializerArity(t *testing.T) {
	out, err := run(t, `
class A {
  init(n) { this.n = n; }
}
class B < A {}
print B(5).n;
`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestSuperCallsParentMethod(t *testing.T) {
	out, err := run(t, `
class A { f() { return "A"; } }
class B < A { f() { return super.f() + "B"; } }
print B().f();
`)
	require.NoError(t, err)
	assert.Equal(t, "AB\n", out)
}

func TestShadowingAcrossNestedBlocks(t *testing.T) {
	out, err := run(t, `
var a = 1;
{
  var a = 2;
  {
    var a = 3;
    print a;
  }
  print a;
}
print a;
`)
	require.NoError(t, err)
	assert.Equal(t, "3\n2\n1\n", out)
}

func TestClosureObservesLaterAssignment(t *testing.T) {
	out, err := run(t, `
var a = 1;
fun f() { return a; }
a = 2;
print f();
`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestBoundMethodPreservesReceiverIdentity(t *testing.T) {
	out, err := run(t, `
class C { tag() { return this.t; } }
var x = C();
x.t = "x";
var m = x.tag;
print m();
`)
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)
}

func TestStringAdditionRequiresStringOrBothNumbers(t *testing.T) {
	_, err := run(t, `print 1 + nil;`)
	assert.Error(t, err)
}

func TestDivisionByZeroYieldsInfinity(t *testing.T) {
	out, err := run(t, `print 1 / 0;`)
	require.NoError(t, err)
	assert.Equal(t, "+Inf\n", out)
}

func TestCallingUndefinedFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, `foo();`)
	assert.Error(t, err)
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	assert.Error(t, err)
}

func TestArityMatchNeverErrors(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } print f(1, 2);`)
	assert.NoError(t, err)
}

func TestAndOrShortCircuitAndReturnOperand(t *testing.T) {
	out, err := run(t, `
print nil or "fallback";
print "first" and "second";
`)
	require.NoError(t, err)
	assert.Equal(t, "fallback\nsecond\n", out)
}

func TestNatives(t *testing.T) {
	out, err := run(t, `
print parseInt("42") + 1;
print clock() > 0;
`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "43", lines[0])
	assert.Equal(t, "true", lines[1])
}
