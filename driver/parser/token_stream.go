package parser

import (
	"github.com/tern-lang/tern/driver/lexer"
)

type VToken interface {
	// TerminalID returns the terminal number of the token.
	TerminalID() int

	Lexeme() []byte
	EOF() bool

	// Position returns the 1-based row and column of the token.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	tok *lexer.Token
}

func (t *vToken) TerminalID() int {
	return t.tok.TerminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type TokenStreamOption func(s *tokenStream)

// ObserveTokens makes the stream pass every token it pulls from the scanner to `f`. The end-of-input
// token is passed only once.
func ObserveTokens(f func(tok *lexer.Token)) TokenStreamOption {
	return func(s *tokenStream) {
		s.observe = f
	}
}

type tokenStream struct {
	scanner *lexer.Scanner
	observe func(tok *lexer.Token)
	sawEOF  bool
}

// NewTokenStream returns a stream pulling tokens from the scanner one at a time.
func NewTokenStream(s *lexer.Scanner, opts ...TokenStreamOption) TokenStream {
	ts := &tokenStream{
		scanner: s,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

func (s *tokenStream) Next() (VToken, error) {
	tok, err := s.scanner.NextToken()
	if err != nil {
		return nil, err
	}
	if s.observe != nil && !s.sawEOF {
		s.observe(tok)
	}
	if tok.EOF {
		s.sawEOF = true
	}
	return &vToken{
		tok: tok,
	}, nil
}
