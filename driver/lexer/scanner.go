// Package lexer turns source text into the token stream the parser consumes.
//
// The matching itself is done by maleeni's lexer driver over the lexical specification compiled with a
// grammar. Scanner adds what a compiler front end needs on top of it: 1-based positions, literal
// evaluation, and reporting illegal characters to a diag.Handler instead of stopping.
package lexer

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	mldriver "github.com/nihei9/maleeni/driver"
	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/grammar/symbol"
	spec "github.com/tern-lang/tern/spec/grammar"
)

// ValueFunc converts the lexeme of a literal into its value.
type ValueFunc func(lexeme string) (interface{}, error)

// Token is a token the scanner returns. Row and Col are 1-based; Col counts code points.
type Token struct {
	TerminalID int
	KindName   string
	Lexeme     []byte
	Value      interface{}
	Row        int
	Col        int
	EOF        bool
}

func (t *Token) Text() string {
	return string(t.Lexeme)
}

func (t *Token) Position() diag.Position {
	return diag.Position{
		Row: t.Row,
		Col: t.Col,
	}
}

// FormatToken returns a line of the token log: the kind followed by the value of the token, or by the
// lexeme when the token has no value.
func FormatToken(tok *Token) string {
	if tok.EOF {
		return symbol.NameEOF
	}
	if tok.Value != nil {
		return fmt.Sprintf("%v, %v", tok.KindName, tok.Value)
	}
	return fmt.Sprintf("%v, %v", tok.KindName, tok.Text())
}

type ScannerOption func(s *Scanner) error

// Evaluator registers a function computing the value of tokens of kind `kind`.
func Evaluator(kind string, f ValueFunc) ScannerOption {
	return func(s *Scanner) error {
		for term, name := range s.gram.Syntactic.Terminals {
			if name != kind {
				continue
			}
			if term == s.gram.Syntactic.EOFSymbol || term == s.gram.Syntactic.ErrorSymbol {
				break
			}
			s.evals[term] = f
			return nil
		}
		return fmt.Errorf("an evaluator was registered for an undefined kind: %v", kind)
	}
}

type cursor struct {
	off int
	row int
	col int
}

// advance moves the cursor over `lexeme`. LF ends a line, and columns are counted in code points.
func (c *cursor) advance(lexeme []byte) {
	for len(lexeme) > 0 {
		r, size := utf8.DecodeRune(lexeme)
		if r == '\n' {
			c.row++
			c.col = 1
		} else {
			c.col++
		}
		c.off += size
		lexeme = lexeme[size:]
	}
}

type Scanner struct {
	gram    *spec.CompiledGrammar
	lexSpec mldriver.LexSpec
	lex     *mldriver.Lexer
	src     []byte
	cur     cursor
	evals   map[int]ValueFunc
	handler *diag.Handler
	eof     *Token
}

func NewScanner(gram *spec.CompiledGrammar, src io.Reader, h *diag.Handler, opts ...ScannerOption) (*Scanner, error) {
	if gram == nil || gram.Lexical == nil || gram.Syntactic == nil {
		return nil, fmt.Errorf("a scanner needs a compiled grammar")
	}
	if h == nil {
		return nil, fmt.Errorf("a scanner needs a diagnostic handler")
	}

	b, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read the source: %w", err)
	}

	s := &Scanner{
		gram:    gram,
		lexSpec: mldriver.NewLexSpec(gram.Lexical.Maleeni),
		src:     b,
		cur: cursor{
			row: 1,
			col: 1,
		},
		evals:   map[int]ValueFunc{},
		handler: h,
	}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}

	err = s.restart()
	if err != nil {
		return nil, err
	}

	return s, nil
}

// restart makes a new maleeni lexer reading the rest of the source. The lexer starts in the initial
// lex mode.
func (s *Scanner) restart() error {
	lex, err := mldriver.NewLexer(s.lexSpec, bytes.NewReader(s.src[s.cur.off:]))
	if err != nil {
		return fmt.Errorf("failed to start a lexer: %w", err)
	}
	s.lex = lex
	return nil
}

// NextToken returns the next significant token. Tokens of skip kinds are never returned. Once the
// input is exhausted, every call returns the end-of-input token.
//
// A lexical error never appears as an error value. It is recorded in the handler and scanning goes on.
func (s *Scanner) NextToken() (*Token, error) {
	if s.eof != nil {
		return s.eof, nil
	}

	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read a token at %v:%v: %w", s.cur.row, s.cur.col, err)
		}

		if tok.EOF {
			s.eof = &Token{
				TerminalID: s.gram.Syntactic.EOFSymbol,
				KindName:   symbol.NameEOF,
				Row:        s.cur.row,
				Col:        s.cur.col,
				EOF:        true,
			}
			return s.eof, nil
		}

		if tok.Invalid {
			err := s.skipIllegalCharacter()
			if err != nil {
				return nil, err
			}
			continue
		}

		row, col := s.cur.row, s.cur.col
		s.cur.advance(tok.Lexeme)

		kindID := int(tok.KindID)
		if s.gram.Lexical.Skip[kindID] > 0 {
			continue
		}

		term := s.gram.Lexical.KindToTerminal[kindID]
		t := &Token{
			TerminalID: term,
			KindName:   s.gram.Syntactic.Terminals[term],
			Lexeme:     tok.Lexeme,
			Row:        row,
			Col:        col,
		}
		if eval, ok := s.evals[term]; ok {
			v, err := eval(t.Text())
			if err != nil {
				s.handler.LexicalWarning(t.Position(), t.Text(), "malformed %v literal '%v'", t.KindName, t.Text())
			} else {
				t.Value = v
			}
		}

		return t, nil
	}
}

// skipIllegalCharacter reports the character at the cursor and resumes scanning right after it. Only
// one code point is skipped even when the lexer rejected a longer run of bytes.
func (s *Scanner) skipIllegalCharacter() error {
	pos := diag.Position{
		Row: s.cur.row,
		Col: s.cur.col,
	}
	rest := s.src[s.cur.off:]
	r, size := utf8.DecodeRune(rest)
	var c string
	if r == utf8.RuneError && size <= 1 {
		c = fmt.Sprintf("\\x%02x", rest[0])
	} else {
		c = string(r)
	}
	s.handler.Lexical(pos, string(rest[:size]), "illegal character '%v'", c)

	s.cur.advance(rest[:size])
	return s.restart()
}
