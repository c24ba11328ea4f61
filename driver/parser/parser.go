// Package parser runs an LR automaton over a token stream.
//
// A syntax error is recorded in a diag.Handler. When the handler allows the run to go on, the parser
// recovers either through error productions (`stmt → error ';'`) or, when no state on the stack can
// trap an error, by discarding tokens until a synchronizing terminal appears.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tern-lang/tern/diag"
)

type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusAccepted
	StatusAcceptedWithErrors
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusAccepted:
		return "accepted"
	case StatusAcceptedWithErrors:
		return "accepted with errors"
	case StatusAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrAlreadyRan is returned when Parse is called on a parser that has already run.
var ErrAlreadyRan = errors.New("the parser has already run")

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

type ParserOption func(p *Parser) error

// DisableLAC disables LAC (lookahead correction). LAC is enabled by default.
func DisableLAC() ParserOption {
	return func(p *Parser) error {
		p.disableLAC = true
		return nil
	}
}

func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

func Logger(logger *slog.Logger) ParserOption {
	return func(p *Parser) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		p.logger = logger
		return nil
	}
}

type Parser struct {
	toks       TokenStream
	gram       Grammar
	handler    *diag.Handler
	stateStack *stateStack
	semAct     SemanticActionSet
	disableLAC bool
	onError    bool
	shiftCount int
	synErrs    []*SyntaxError
	status     Status
	logger     *slog.Logger
}

func NewParser(toks TokenStream, gram Grammar, h *diag.Handler, opts ...ParserOption) (*Parser, error) {
	if h == nil {
		return nil, fmt.Errorf("a parser needs a diagnostic handler")
	}

	p := &Parser{
		toks:       toks,
		gram:       gram,
		handler:    h,
		stateStack: &stateStack{},
		status:     StatusReady,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Parser) Parse() (Status, error) {
	return p.ParseContext(context.Background())
}

// ParseContext runs the parser until it accepts or abandons the input. The context is checked once per
// step. A non-nil error means the run could not be carried out (I/O, broken tables, cancellation); the
// syntax errors in the input are reported through the handler and the returned status instead.
func (p *Parser) ParseContext(ctx context.Context) (Status, error) {
	if p.status != StatusReady {
		return p.status, ErrAlreadyRan
	}
	p.status = StatusRunning
	p.handler.Begin()

	status, err := p.run(ctx)
	if err != nil {
		p.status = StatusAbandoned
		return p.status, err
	}
	p.status = status

	p.logger.Debug("parse finished", slog.String("status", status.String()), slog.Int("syntax_errors", len(p.synErrs)))

	return p.status, nil
}

func (p *Parser) run(ctx context.Context) (Status, error) {
	p.stateStack.push(p.gram.InitialState())
	tok, err := p.nextToken()
	if err != nil {
		return 0, err
	}

ACTION_LOOP:
	for {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("parsing was interrupted: %w", err)
		}

		act := p.lookupAction(tok)

		switch {
		case act < 0: // Shift
			nextState := act * -1

			recovered := false
			if p.onError {
				p.shiftCount++

				// Three shifts after trapping an error end the error state.
				if p.shiftCount >= 3 {
					p.onError = false
					p.shiftCount = 0
					recovered = true
				}
			}

			p.shift(nextState)

			if p.semAct != nil {
				p.semAct.Shift(tok, recovered)
			}

			tok, err = p.nextToken()
			if err != nil {
				return 0, err
			}
		case act > 0: // Reduce
			prodNum := act

			recovered := false
			if p.onError && p.gram.RecoverProduction(prodNum) {
				p.onError = false
				p.shiftCount = 0
				recovered = true
			}

			accepted, err := p.reduce(prodNum)
			if err != nil {
				return 0, err
			}
			if accepted {
				if p.semAct != nil {
					p.semAct.Accept()
				}

				if p.handler.Count() > 0 {
					return StatusAcceptedWithErrors, nil
				}
				return StatusAccepted, nil
			}

			if p.semAct != nil {
				p.semAct.Reduce(prodNum, recovered)
			}
		default: // Error
			if p.onError {
				// A synchronizing terminal or the end of input ends the error state when some state on
				// the stack can act on it.
				term := p.tokenToTerminal(tok)
				if tok.EOF() || p.gram.SyncTerminal(term) {
					if popped, ok := p.syncPoint(term); ok {
						p.popToSyncPoint(tok, popped, 0)
						p.onError = false
						p.shiftCount = 0
						continue ACTION_LOOP
					}
				}
				if tok.EOF() {
					return p.abandon(tok), nil
				}

				p.logger.Debug("token discarded in the error state", slog.String("token", string(tok.Lexeme())))

				tok, err = p.nextToken()
				if err != nil {
					return 0, err
				}

				continue ACTION_LOOP
			}

			p.reportSyntaxError(tok)

			if !p.handler.ContinueOnError() {
				return p.abandon(tok), nil
			}

			trapped, err := p.trapError(tok)
			if err != nil {
				return 0, err
			}
			if trapped {
				continue ACTION_LOOP
			}

			tok, err = p.synchronize(tok)
			if err != nil {
				return 0, err
			}
			if tok == nil {
				return StatusAbandoned, nil
			}
		}
	}
}

func (p *Parser) nextToken() (VToken, error) {
	tok, err := p.toks.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to read a token: %w", err)
	}
	return tok, nil
}

func (p *Parser) reportSyntaxError(tok VToken) {
	row, col := tok.Position()
	expected := p.searchLookahead()

	var msg string
	if tok.EOF() {
		msg = "unexpected end of input"
	} else {
		msg = fmt.Sprintf("unexpected token '%v'", string(tok.Lexeme()))
	}
	if len(expected) > 0 {
		msg = fmt.Sprintf("%v; expected: %v", msg, diag.FormatExpected(expected))
	}

	p.synErrs = append(p.synErrs, &SyntaxError{
		Row:               row,
		Col:               col,
		Message:           msg,
		Token:             tok,
		ExpectedTerminals: expected,
	})
	p.handler.Record(diag.Diagnostic{
		Stage:    diag.StageSyntactic,
		Severity: diag.SeverityError,
		Message:  msg,
		Position: diag.Position{
			Row: row,
			Col: col,
		},
		Lexeme:   string(tok.Lexeme()),
		Expected: expected,
	})
}

func (p *Parser) abandon(tok VToken) Status {
	if p.semAct != nil {
		p.semAct.MissError(tok)
	}

	row, col := tok.Position()
	p.logger.Debug("input abandoned", slog.Int("row", row), slog.Int("col", col))

	return StatusAbandoned
}

// trapError pops the state stack down to the topmost error-trapper state and shifts the error symbol.
// When no state on the stack traps errors, the stack is left untouched and trapError returns false.
func (p *Parser) trapError(cause VToken) (bool, error) {
	popped := -1
	for i := len(p.stateStack.items) - 1; i >= 0; i-- {
		if p.gram.ErrorTrapperState(p.stateStack.items[i]) {
			popped = len(p.stateStack.items) - 1 - i
			break
		}
	}
	if popped < 0 {
		return false, nil
	}

	p.stateStack.pop(popped)

	act := p.gram.Action(p.stateStack.top(), p.gram.Error())
	if act >= 0 {
		return false, fmt.Errorf("an entry must be a shift action by the error symbol; entry: %v, state: %v, symbol: %v", act, p.stateStack.top(), p.gram.Terminal(p.gram.Error()))
	}
	p.shift(act * -1)

	p.onError = true
	p.shiftCount = 0

	if p.semAct != nil {
		p.semAct.TrapAndShiftError(cause, popped)
	}

	p.logger.Debug("error trapped", slog.Int("popped", popped), slog.Int("state", p.stateStack.top()))

	return true, nil
}

// synchronize discards tokens until a synchronizing terminal appears that some state on the stack
// accepts, then pops the stack down to that state. It returns nil when the input ends first.
func (p *Parser) synchronize(tok VToken) (VToken, error) {
	discarded := 0
	for {
		if tok.EOF() {
			p.abandon(tok)
			return nil, nil
		}

		term := p.tokenToTerminal(tok)
		if p.gram.SyncTerminal(term) {
			if popped, ok := p.syncPoint(term); ok {
				p.popToSyncPoint(tok, popped, discarded)
				return tok, nil
			}
		}

		var err error
		tok, err = p.nextToken()
		if err != nil {
			return nil, err
		}
		discarded++
	}
}

// syncPoint returns the number of states to pop so that the topmost remaining state can act on `term`.
func (p *Parser) syncPoint(term int) (int, bool) {
	for size := len(p.stateStack.items); size > 0; size-- {
		if p.validateLookahead(size, term) {
			return len(p.stateStack.items) - size, true
		}
	}
	return 0, false
}

func (p *Parser) popToSyncPoint(tok VToken, popped int, discarded int) {
	p.stateStack.pop(popped)

	if p.semAct != nil {
		p.semAct.Synchronize(tok, popped)
	}

	p.logger.Debug("synchronized",
		slog.String("token", string(tok.Lexeme())),
		slog.Int("discarded", discarded),
		slog.Int("popped", popped))
}

// validateLookahead reports whether `term` would eventually be shifted (or accepted) by the automaton
// whose stack is the bottom `size` states of the current stack. The stack itself is not modified.
func (p *Parser) validateLookahead(size int, term int) bool {
	p.stateStack.enableExploratoryMode(size)
	defer p.stateStack.disableExploratoryMode()

	for {
		act := p.gram.Action(p.stateStack.topExploratorily(), term)

		switch {
		case act < 0: // Shift
			return true
		case act > 0: // Reduce
			prodNum := act

			lhs := p.gram.LHS(prodNum)
			if lhs == p.gram.LHS(p.gram.StartProduction()) {
				return true
			}
			n := p.gram.AlternativeSymbolCount(prodNum)
			if n >= len(p.stateStack.itemsExp) {
				return false
			}
			p.stateStack.popExploratorily(n)
			state := p.gram.GoTo(p.stateStack.topExploratorily(), lhs)
			p.stateStack.pushExploratorily(state)
		default: // Error
			return false
		}
	}
}

func (p *Parser) tokenToTerminal(tok VToken) int {
	if tok.EOF() {
		return p.gram.EOF()
	}

	return tok.TerminalID()
}

func (p *Parser) lookupAction(tok VToken) int {
	term := p.tokenToTerminal(tok)

	if !p.disableLAC {
		if !p.validateLookahead(len(p.stateStack.items), term) {
			return 0
		}
	}

	return p.gram.Action(p.stateStack.top(), term)
}

func (p *Parser) shift(nextState int) {
	p.stateStack.push(nextState)
}

func (p *Parser) reduce(prodNum int) (bool, error) {
	lhs := p.gram.LHS(prodNum)
	if lhs == p.gram.LHS(p.gram.StartProduction()) {
		return true, nil
	}
	n := p.gram.AlternativeSymbolCount(prodNum)
	if n >= len(p.stateStack.items) {
		return false, fmt.Errorf("the state stack is too short to reduce production %v", prodNum)
	}
	p.stateStack.pop(n)
	nextState := p.gram.GoTo(p.stateStack.top(), lhs)
	p.stateStack.push(nextState)
	return false, nil
}

func (p *Parser) Status() Status {
	return p.status
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// searchLookahead returns the terminals the parser can accept in the current state. Terminals with an
// alias are spelled by it.
func (p *Parser) searchLookahead() []string {
	kinds := []string{}
	termCount := p.gram.TerminalCount()
	for term := 0; term < termCount; term++ {
		// Users cannot write the error symbol, so it never appears as an expected terminal.
		if term == p.gram.Error() {
			continue
		}

		if p.disableLAC {
			if p.gram.Action(p.stateStack.top(), term) == 0 {
				continue
			}
		} else {
			if !p.validateLookahead(len(p.stateStack.items), term) {
				continue
			}
		}

		switch {
		case term == p.gram.EOF():
			kinds = append(kinds, p.gram.Terminal(term))
		case p.gram.TerminalAlias(term) != "":
			kinds = append(kinds, fmt.Sprintf("'%v'", p.gram.TerminalAlias(term)))
		default:
			kinds = append(kinds, p.gram.Terminal(term))
		}
	}

	return kinds
}

type stateStack struct {
	items    []int
	itemsExp []int
}

func (s *stateStack) enableExploratoryMode(size int) {
	s.itemsExp = make([]int, size)
	copy(s.itemsExp, s.items[:size])
}

func (s *stateStack) disableExploratoryMode() {
	s.itemsExp = nil
}

func (s *stateStack) top() int {
	return s.items[len(s.items)-1]
}

func (s *stateStack) topExploratorily() int {
	return s.itemsExp[len(s.itemsExp)-1]
}

func (s *stateStack) push(state int) {
	s.items = append(s.items, state)
}

func (s *stateStack) pushExploratorily(state int) {
	s.itemsExp = append(s.itemsExp, state)
}

func (s *stateStack) pop(n int) {
	s.items = s.items[:len(s.items)-n]
}

func (s *stateStack) popExploratorily(n int) {
	s.itemsExp = s.itemsExp[:len(s.itemsExp)-n]
}
