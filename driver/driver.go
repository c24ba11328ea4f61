// Package driver runs the whole front end over one source: a Scanner and a Parser sharing one
// diag.Handler.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver/lexer"
	"github.com/tern-lang/tern/driver/parser"
	spec "github.com/tern-lang/tern/spec/grammar"
)

type TreeKind string

const (
	TreeNone = TreeKind("none")
	TreeCST  = TreeKind("cst")
	TreeAST  = TreeKind("ast")
)

func ParseTreeKind(s string) (TreeKind, error) {
	switch k := TreeKind(s); k {
	case TreeNone, TreeCST, TreeAST:
		return k, nil
	case "":
		return TreeNone, nil
	}
	return "", fmt.Errorf("invalid tree kind: %v (one of none, cst or ast)", s)
}

type runConfig struct {
	evals      map[string]lexer.ValueFunc
	tree       TreeKind
	disableLAC bool
	logger     *slog.Logger
}

type Option func(c *runConfig)

// WithEvaluators registers literal evaluators keyed by terminal kind.
func WithEvaluators(evals map[string]lexer.ValueFunc) Option {
	return func(c *runConfig) {
		for k, f := range evals {
			c.evals[k] = f
		}
	}
}

func WithTree(kind TreeKind) Option {
	return func(c *runConfig) {
		c.tree = kind
	}
}

func WithoutLAC() Option {
	return func(c *runConfig) {
		c.disableLAC = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Result struct {
	Status       parser.Status
	Tokens       []*lexer.Token
	Tree         *parser.Node
	SyntaxErrors []*parser.SyntaxError
	Summary      *diag.Summary
}

func newRunConfig(opts []Option) *runConfig {
	c := &runConfig{
		evals:  map[string]lexer.ValueFunc{},
		tree:   TreeNone,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *runConfig) scannerOptions() []lexer.ScannerOption {
	kinds := make([]string, 0, len(c.evals))
	for k := range c.evals {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	opts := make([]lexer.ScannerOption, 0, len(kinds))
	for _, k := range kinds {
		opts = append(opts, lexer.Evaluator(k, c.evals[k]))
	}
	return opts
}

// Run scans and parses `src`. Lexical and syntax errors end up in `h` and in Result.Summary; the error
// return is kept for failures that stop the run itself.
func Run(ctx context.Context, g *spec.CompiledGrammar, src io.Reader, h *diag.Handler, opts ...Option) (*Result, error) {
	c := newRunConfig(opts)

	// NewScanner rejects a missing grammar or handler, so both are usable from here on.
	s, err := lexer.NewScanner(g, src, h, c.scannerOptions()...)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With(slog.String("run", h.RunID()), slog.String("grammar", g.Name))

	res := &Result{}
	toks := parser.NewTokenStream(s, parser.ObserveTokens(func(tok *lexer.Token) {
		res.Tokens = append(res.Tokens, tok)
	}))

	gram := parser.NewGrammar(g)
	pOpts := []parser.ParserOption{
		parser.Logger(logger),
	}
	if c.disableLAC {
		pOpts = append(pOpts, parser.DisableLAC())
	}
	var treeBuilder *parser.DefaultSyntaxTreeBuilder
	switch c.tree {
	case TreeCST:
		treeBuilder = parser.NewDefaultSyntaxTreeBuilder()
		pOpts = append(pOpts, parser.SemanticAction(parser.NewCSTActionSet(gram, treeBuilder)))
	case TreeAST:
		treeBuilder = parser.NewDefaultSyntaxTreeBuilder()
		pOpts = append(pOpts, parser.SemanticAction(parser.NewASTActionSet(gram, treeBuilder)))
	}

	p, err := parser.NewParser(toks, gram, h, pOpts...)
	if err != nil {
		return nil, err
	}

	logger.Info("analysis started", slog.Bool("continue_on_error", h.ContinueOnError()))

	status, err := p.ParseContext(ctx)
	if err != nil {
		return nil, err
	}

	res.Status = status
	res.SyntaxErrors = p.SyntaxErrors()
	if treeBuilder != nil {
		res.Tree = treeBuilder.Tree()
	}
	res.Summary = h.Summary()

	logger.Info("analysis finished",
		slog.String("status", status.String()),
		slog.Int("tokens", len(res.Tokens)),
		slog.Int("lexical_errors", res.Summary.Lexical),
		slog.Int("syntax_errors", res.Summary.Syntactic))

	return res, nil
}

// Tokenize runs only the scanner and returns every token including the end-of-input token.
func Tokenize(g *spec.CompiledGrammar, src io.Reader, h *diag.Handler, opts ...Option) ([]*lexer.Token, error) {
	c := newRunConfig(opts)

	s, err := lexer.NewScanner(g, src, h, c.scannerOptions()...)
	if err != nil {
		return nil, err
	}
	h.Begin()

	var toks []*lexer.Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.EOF {
			return toks, nil
		}
	}
}

// WriteTokenLog writes one line per token, leaving out the end-of-input token.
func WriteTokenLog(w io.Writer, toks []*lexer.Token) error {
	for _, tok := range toks {
		if tok.EOF {
			continue
		}
		_, err := fmt.Fprintln(w, lexer.FormatToken(tok))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteResult writes the outcome of a run: its status and the number of diagnostics per stage.
func WriteResult(w io.Writer, res *Result) error {
	_, err := fmt.Fprintf(w, "run: %v\nstatus: %v\nlexical errors: %v\nsyntax errors: %v\n",
		res.Summary.RunID, res.Status, res.Summary.Lexical, res.Summary.Syntactic)
	return err
}
