package parser

import spec "github.com/tern-lang/tern/spec/grammar"

// Grammar is the read-only view of the compiled tables the parser consults.
type Grammar interface {
	InitialState() int
	StartProduction() int
	Action(state int, terminal int) int
	GoTo(state int, lhs int) int
	LHS(prod int) int
	AlternativeSymbolCount(prod int) int
	RecoverProduction(prod int) bool
	ErrorTrapperState(state int) bool

	// SyncTerminal reports whether the terminal belongs to the synchronizing set of panic-mode recovery.
	SyncTerminal(terminal int) bool

	TerminalCount() int
	EOF() int
	Error() int
	Terminal(terminal int) string

	// TerminalAlias returns a readable spelling of the terminal, or an empty string.
	TerminalAlias(terminal int) string

	NonTerminal(nonTerminal int) string
	ASTAction(prod int) []int
}

var _ Grammar = &grammarImpl{}

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.Syntactic.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.Syntactic.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	if t := g.g.Syntactic.CompressedAction; t != nil {
		return t.Lookup(state, terminal)
	}
	return g.g.Syntactic.Action[state*g.g.Syntactic.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	if t := g.g.Syntactic.CompressedGoTo; t != nil {
		return t.Lookup(state, lhs)
	}
	return g.g.Syntactic.GoTo[state*g.g.Syntactic.NonTerminalCount+lhs]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.Syntactic.LHSSymbols[prod]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.Syntactic.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) RecoverProduction(prod int) bool {
	return g.g.Syntactic.RecoverProductions[prod] != 0
}

func (g *grammarImpl) ErrorTrapperState(state int) bool {
	return g.g.Syntactic.ErrorTrapperStates[state] != 0
}

func (g *grammarImpl) SyncTerminal(terminal int) bool {
	return g.g.Syntactic.SyncTerminals[terminal] != 0
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.Syntactic.TerminalCount
}

func (g *grammarImpl) EOF() int {
	return g.g.Syntactic.EOFSymbol
}

func (g *grammarImpl) Error() int {
	return g.g.Syntactic.ErrorSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.Syntactic.Terminals[terminal]
}

func (g *grammarImpl) TerminalAlias(terminal int) string {
	return g.g.Lexical.KindAliases[terminal]
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.Syntactic.NonTerminals[nonTerminal]
}

func (g *grammarImpl) ASTAction(prod int) []int {
	return g.g.ASTAction.Entries[prod]
}
