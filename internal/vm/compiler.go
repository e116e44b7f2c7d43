package vm

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/arfeld/wisp/internal/scanner"
	"github.com/arfeld/wisp/internal/token"
	"github.com/arfeld/wisp/internal/value"
)

// Precedence is the Pratt-parser precedence ladder, lowest first. The
// VM's baseline grammar only reaches PrecFactor/PrecUnary today, but the
// full ladder is kept so adding comparison and logical operators later
// means adding table entries, not new parsing functions.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// Compiler is a single-pass Pratt parser: it never builds an AST, it
// emits straight into a Chunk as each expression is recognized. The
// parseRules table is the single source of truth for both what the
// grammar accepts and how tightly each operator binds.
type Compiler struct {
	tokens  []token.Token
	current int
	prev    token.Token

	chunk *Chunk
	errs  *multierror.Error
	trace bool
}

// Compile compiles a single expression statement into a Chunk, followed
// by a trailing OpReturn that pops and prints the result.
func Compile(src string) (*Chunk, error) {
	return NewCompiler(false).Compile(src)
}

// NewCompiler returns a Compiler; trace logs each emitted opcode at debug
// level, mirroring the tree-walking interpreter's --trace behavior.
func NewCompiler(trace bool) *Compiler {
	return &Compiler{trace: trace}
}

func (c *Compiler) Compile(src string) (*Chunk, error) {
	toks, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	c.tokens = toks
	c.chunk = &Chunk{}

	c.parsePrecedence(PrecAssignment)
	if c.check(token.Semicolon) {
		c.advance()
	}
	if !c.check(token.EOF) {
		c.errorAtCurrent("expect end of expression")
	}
	c.emitOp(OpReturn)

	return c.chunk, c.errs.ErrorOrNil()
}

var parseRules map[token.Kind]parseRule

func init() {
	parseRules = map[token.Kind]parseRule{
		token.LeftParen: {prefix: grouping},
		token.Minus:     {prefix: unary, infix: binary, precedence: PrecTerm},
		token.Plus:      {infix: binary, precedence: PrecTerm},
		token.Slash:     {infix: binary, precedence: PrecFactor},
		token.Star:      {infix: binary, precedence: PrecFactor},
		token.Number:    {prefix: number},
	}
}

func (c *Compiler) getRule(k token.Kind) parseRule { return parseRules[k] }

// parsePrecedence: advance, dispatch the previous token's prefix rule,
// then keep folding in infix operators whose precedence is at or above
// p. This one loop is the entire expression grammar.
func (c *Compiler) parsePrecedence(p Precedence) {
	c.advance()
	rule := c.getRule(c.prev.Kind)
	if rule.prefix == nil {
		c.errorAtPrev("expect expression")
		return
	}
	rule.prefix(c)

	for p <= c.getRule(c.peek().Kind).precedence {
		c.advance()
		infix := c.getRule(c.prev.Kind).infix
		infix(c)
	}
}

func number(c *Compiler) {
	c.emitConstant(value.NumberValue(c.prev.Literal))
}

func grouping(c *Compiler) {
	c.parsePrecedence(PrecAssignment)
	c.consume(token.RightParen, "expect ')' after expression")
}

func unary(c *Compiler) {
	op := c.prev.Kind
	line := c.prev.Line
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Minus:
		c.emitOpAt(OpNegate, line)
	}
}

func binary(c *Compiler) {
	op := c.prev.Kind
	line := c.prev.Line
	rule := c.getRule(op)
	c.parsePrecedence(rule.precedence + 1)
	switch op {
	case token.Plus:
		c.emitOpAt(OpAdd, line)
	case token.Minus:
		c.emitOpAt(OpSubtract, line)
	case token.Star:
		c.emitOpAt(OpMultiply, line)
	case token.Slash:
		c.emitOpAt(OpDivide, line)
	}
}

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		logrus.WithField("line", c.prev.Line).Panic(err)
	}
	c.emitOp(OpConstant)
	c.chunk.Write(idx, c.prev.Line)
}

func (c *Compiler) emitOp(op OpCode) { c.emitOpAt(op, c.prev.Line) }

func (c *Compiler) emitOpAt(op OpCode, line int) {
	c.chunk.WriteOp(op, line)
	if c.trace {
		logrus.WithFields(logrus.Fields{"op": op.String(), "line": line}).Debug("compiled opcode")
	}
}

func (c *Compiler) advance() {
	c.prev = c.peek()
	c.current++
}

func (c *Compiler) peek() token.Token {
	if c.current >= len(c.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return c.tokens[c.current]
}

func (c *Compiler) check(k token.Kind) bool { return c.peek().Kind == k }

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.check(k) {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.peek(), msg) }
func (c *Compiler) errorAtPrev(msg string)    { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(t token.Token, msg string) {
	lexeme := t.Lexeme
	if t.Kind == token.EOF {
		lexeme = "end"
	}
	c.errs = multierror.Append(c.errs, fmt.Errorf("[line %d] Error at '%s': %s", t.Line, lexeme, msg))
}
