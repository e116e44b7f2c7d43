// Package scanner turns wisp source text into a token stream.
//
// It is error-collecting: scanning never stops at the first bad
// character, string, or number. All diagnostics are gathered into a
// single *multierror.Error so the caller can report everything found in
// one pass, matching the same pattern the parser uses downstream.
package scanner

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/josharian/intern"

	"github.com/arfeld/wisp/internal/token"
)

// Scanner converts UTF-8 source into tokens.
type Scanner struct {
	src     []rune
	start   int
	current int
	line    int

	tokens []token.Token
	errs   *multierror.Error
}

// New returns a Scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: []rune(src), line: 1}
}

// Scan runs the scanner to completion, returning every token (including
// a trailing EOF) in source order, or a non-nil error aggregating every
// scan error encountered.
func Scan(src string) ([]token.Token, error) {
	return New(src).ScanTokens()
}

// ScanTokens runs the scanner to completion.
func (s *Scanner) ScanTokens() ([]token.Token, error) {
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", s.line))
	return s.tokens, s.errs.ErrorOrNil()
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.emit(token.LeftParen)
	case ')':
		s.emit(token.RightParen)
	case '{':
		s.emit(token.LeftBrace)
	case '}':
		s.emit(token.RightBrace)
	case ',':
		s.emit(token.Comma)
	case '.':
		s.emit(token.Dot)
	case '-':
		s.emit(token.Minus)
	case '+':
		s.emit(token.Plus)
	case ';':
		s.emit(token.Semicolon)
	case '*':
		s.emit(token.Star)
	case '!':
		s.emitTwo('=', token.BangEqual, token.Bang)
	case '=':
		s.emitTwo('=', token.EqualEqual, token.Equal)
	case '<':
		s.emitTwo('=', token.LessEqual, token.Less)
	case '>':
		s.emitTwo('=', token.GreaterEqual, token.Greater)
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		} else {
			s.emit(token.Slash)
		}
	case ' ', '\t', '\r':
		// whitespace: skip
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			s.errorf("unexpected character '%c'", c)
		}
	}
}

func (s *Scanner) scanString() {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.errorf("unterminated string")
		return
	}
	s.advance() // closing quote
	lit := string(s.src[s.start+1 : s.current-1])
	s.emitLexeme(token.String, lit)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	lexeme := string(s.src[s.start:s.current])
	val, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		s.errorf("malformed number %q", lexeme)
		return
	}
	s.tokens = append(s.tokens, token.NewNumber(lexeme, val, s.line))
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	lexeme := intern.String(string(s.src[s.start:s.current]))
	if kind, ok := token.Keywords[lexeme]; ok {
		s.emit(kind)
		return
	}
	s.emitLexeme(token.Identifier, lexeme)
}

// --- low level cursor helpers ---

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() rune {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expect rune) bool {
	if s.atEnd() || s.src[s.current] != expect {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) emit(kind token.Kind) {
	s.emitLexeme(kind, string(s.src[s.start:s.current]))
}

func (s *Scanner) emitLexeme(kind token.Kind, lexeme string) {
	s.tokens = append(s.tokens, token.New(kind, lexeme, s.line))
}

func (s *Scanner) emitTwo(next rune, ifMatch, otherwise token.Kind) {
	if s.match(next) {
		s.emit(ifMatch)
	} else {
		s.emit(otherwise)
	}
}

func (s *Scanner) errorf(format string, args ...any) {
	s.errs = multierror.Append(s.errs, fmt.Errorf("[line %d] Error: %s", s.line, fmt.Sprintf(format, args...)))
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isAlpha(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c rune) bool { return isAlpha(c) || isDigit(c) }
