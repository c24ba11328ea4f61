package lexer

import (
	"strconv"
	"strings"
	"testing"

	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/grammar"
	spec "github.com/tern-lang/tern/spec/grammar"
)

func compileScannerTestGrammar(t *testing.T) *spec.CompiledGrammar {
	t.Helper()

	b := grammar.NewBuilder("scan")
	b.Production("list", "list", "item")
	b.Production("list", "item")
	b.Production("item", "int")
	b.Production("item", "id")
	b.Production("item", "semicolon")
	b.Literal("semicolon", ";")
	b.Pattern("int", "[0-9]+")
	b.Pattern("id", "[a-z]+")
	b.Skip("ws", "[\\u{0009}\\u{000A}\\u{0020}]+")
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, _, err := grammar.Compile(gram)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

func evalInt(lexeme string) (interface{}, error) {
	return strconv.ParseInt(lexeme, 10, 64)
}

type expectedToken struct {
	kind  string
	text  string
	value interface{}
	row   int
	col   int
	eof   bool
}

func TestScanner_NextToken(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		tokens  []expectedToken
		diags   []string
	}{
		{
			caption: "the scanner skips white spaces and evaluates literals",
			src:     "foo 12\n  bar;",
			tokens: []expectedToken{
				{kind: "id", text: "foo", row: 1, col: 1},
				{kind: "int", text: "12", value: int64(12), row: 1, col: 5},
				{kind: "id", text: "bar", row: 2, col: 3},
				{kind: "semicolon", text: ";", row: 2, col: 6},
				{eof: true, row: 2, col: 7},
			},
		},
		{
			caption: "an empty input yields only the end-of-input token",
			src:     "",
			tokens: []expectedToken{
				{eof: true, row: 1, col: 1},
			},
		},
		{
			caption: "an illegal character is reported and skipped",
			src:     "a @ b",
			tokens: []expectedToken{
				{kind: "id", text: "a", row: 1, col: 1},
				{kind: "id", text: "b", row: 1, col: 5},
				{eof: true, row: 1, col: 6},
			},
			diags: []string{
				"lexical: illegal character '@' at 1:3",
			},
		},
		{
			caption: "each character of a run of illegal characters is reported",
			src:     "a\n@#b",
			tokens: []expectedToken{
				{kind: "id", text: "a", row: 1, col: 1},
				{kind: "id", text: "b", row: 2, col: 3},
				{eof: true, row: 2, col: 4},
			},
			diags: []string{
				"lexical: illegal character '@' at 2:1",
				"lexical: illegal character '#' at 2:2",
			},
		},
		{
			caption: "columns are counted in code points",
			src:     "é a",
			tokens: []expectedToken{
				{kind: "id", text: "a", row: 1, col: 3},
				{eof: true, row: 1, col: 4},
			},
			diags: []string{
				"lexical: illegal character 'é' at 1:1",
			},
		},
		{
			caption: "a malformed literal is reported and the token is still returned",
			src:     "99999999999999999999 x",
			tokens: []expectedToken{
				{kind: "int", text: "99999999999999999999", row: 1, col: 1},
				{kind: "id", text: "x", row: 1, col: 22},
				{eof: true, row: 1, col: 23},
			},
			diags: []string{
				"lexical warning: malformed int literal '99999999999999999999' at 1:1",
			},
		},
	}

	cg := compileScannerTestGrammar(t)
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			h := diag.NewHandler()
			s, err := NewScanner(cg, strings.NewReader(tt.src), h, Evaluator("int", evalInt))
			if err != nil {
				t.Fatal(err)
			}

			for i, eTok := range tt.tokens {
				tok, err := s.NextToken()
				if err != nil {
					t.Fatal(err)
				}
				testToken(t, i, eTok, tok)
			}

			ds := h.Diagnostics()
			if len(ds) != len(tt.diags) {
				t.Fatalf("unexpected diagnostic count; want: %v, got: %v (%v)", len(tt.diags), len(ds), ds)
			}
			for i, d := range ds {
				if d.String() != tt.diags[i] {
					t.Fatalf("unexpected diagnostic; want: %v, got: %v", tt.diags[i], d)
				}
			}
		})
	}
}

func testToken(t *testing.T, i int, expected expectedToken, actual *Token) {
	t.Helper()

	if actual.EOF != expected.eof {
		t.Fatalf("#%v: unexpected EOF flag; want: %v, got: %v (%+v)", i, expected.eof, actual.EOF, actual)
	}
	if actual.Row != expected.row || actual.Col != expected.col {
		t.Fatalf("#%v: unexpected position; want: %v:%v, got: %v:%v", i, expected.row, expected.col, actual.Row, actual.Col)
	}
	if expected.eof {
		return
	}
	if actual.KindName != expected.kind || actual.Text() != expected.text {
		t.Fatalf("#%v: unexpected token; want: %v %q, got: %v %q", i, expected.kind, expected.text, actual.KindName, actual.Text())
	}
	if actual.Value != expected.value {
		t.Fatalf("#%v: unexpected value; want: %v, got: %v", i, expected.value, actual.Value)
	}
}

func TestScanner_KeepsReturningEOF(t *testing.T) {
	cg := compileScannerTestGrammar(t)
	s, err := NewScanner(cg, strings.NewReader("x"), diag.NewHandler())
	if err != nil {
		t.Fatal(err)
	}
	tok, err := s.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok.EOF {
		t.Fatalf("the first token must not be the end-of-input token")
	}
	for i := 0; i < 3; i++ {
		tok, err := s.NextToken()
		if err != nil {
			t.Fatal(err)
		}
		if !tok.EOF || tok.TerminalID != cg.Syntactic.EOFSymbol {
			t.Fatalf("unexpected token after the end of input: %+v", tok)
		}
	}
}

func TestNewScanner(t *testing.T) {
	cg := compileScannerTestGrammar(t)

	_, err := NewScanner(cg, strings.NewReader(""), diag.NewHandler(), Evaluator("float", evalInt))
	if err == nil {
		t.Fatalf("an evaluator of an undefined kind must be rejected")
	}

	_, err = NewScanner(cg, strings.NewReader(""), nil)
	if err == nil {
		t.Fatalf("a scanner without a handler must be rejected")
	}
}

func TestFormatToken(t *testing.T) {
	tests := []struct {
		tok      *Token
		expected string
	}{
		{
			tok:      &Token{KindName: "id", Lexeme: []byte("foo")},
			expected: "id, foo",
		},
		{
			tok:      &Token{KindName: "int", Lexeme: []byte("012"), Value: int64(12)},
			expected: "int, 12",
		},
		{
			tok:      &Token{EOF: true},
			expected: "<eof>",
		},
	}
	for _, tt := range tests {
		if got := FormatToken(tt.tok); got != tt.expected {
			t.Fatalf("unexpected token log; want: %v, got: %v", tt.expected, got)
		}
	}
}
