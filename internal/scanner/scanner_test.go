package scanner

import (
	"testing"

	"github.com/arfeld/wisp/internal/token"
)

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, err := Scan("(){},.-+;*! != = == < <= > >= /")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon, token.Star,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Slash, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScanLineComment(t *testing.T) {
	toks, err := Scan("1 // a comment\n2")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	if toks[0].Literal != 1 || toks[1].Literal != 2 {
		t.Errorf("got %v", toks)
	}
	if toks[1].Line != 2 {
		t.Errorf("second number should be on line 2, got %d", toks[1].Line)
	}
}

func TestScanString(t *testing.T) {
	toks, err := Scan(`"hello world"`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != token.String || toks[0].Lexeme != "hello world" {
		t.Errorf("got %#v", toks[0])
	}
}

func TestScanMultilineString(t *testing.T) {
	toks, err := Scan("\"a\nb\"\n1")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Lexeme != "a\nb" {
		t.Errorf("got %q", toks[0].Lexeme)
	}
	if toks[1].Line != 3 {
		t.Errorf("want line 3, got %d", toks[1].Line)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := Scan(`"never closed`)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestScanNumber(t *testing.T) {
	toks, err := Scan("123 3.14")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Literal != 123 {
		t.Errorf("got %v", toks[0].Literal)
	}
	if toks[1].Literal != 3.14 {
		t.Errorf("got %v", toks[1].Literal)
	}
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks, err := Scan("var x = foo and bar")
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Kind{token.Var, token.Identifier, token.Equal, token.Identifier, token.And, token.Identifier, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScanUnknownCharacterContinues(t *testing.T) {
	toks, err := Scan("1 @ 2")
	if err == nil {
		t.Fatal("expected a scan error")
	}
	// error-collecting: scanning continues past the bad character
	if len(toks) != 3 {
		t.Fatalf("expected both numbers plus EOF to be scanned, got %v", toks)
	}
}

func TestScanTrailingEOFLine(t *testing.T) {
	toks, err := Scan("1\n2\n")
	if err != nil {
		t.Fatal(err)
	}
	eof := toks[len(toks)-1]
	if eof.Kind != token.EOF || eof.Line != 3 {
		t.Errorf("got %#v", eof)
	}
}
