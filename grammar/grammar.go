package grammar

import (
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/tern-lang/tern/compressor"
	"github.com/tern-lang/tern/grammar/symbol"
	spec "github.com/tern-lang/tern/spec/grammar"
)

type assocType string

const (
	assocTypeNil   = assocType("")
	assocTypeLeft  = assocType("left")
	assocTypeRight = assocType("right")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols and productions.
// We use the priority of the production to resolve shift/reduce conflicts.
type precAndAssoc struct {
	// termPrec and termAssoc represent the precedence of the terminal symbols.
	termPrec  map[symbol.Num]int
	termAssoc map[symbol.Num]assocType

	// prodPrec and prodAssoc represent the precedence and the associativities of the production.
	// These values are inherited from the right-most terminal symbols in the RHS of the productions
	// unless the production names its own precedence terminal.
	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.Num) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.Num) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

// Grammar is a checked grammar definition. Use Builder to make one and Compile to turn it into tables.
type Grammar struct {
	name                 string
	lexSpec              *mlspec.LexSpec
	skipTerminals        map[symbol.Symbol]struct{}
	kindAliases          map[symbol.Symbol]string
	termPatterns         map[symbol.Symbol]string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	symbolTable          *symbol.Table
	precAndAssoc         *precAndAssoc

	// syncTerminals is the synchronizing set panic-mode recovery waits for.
	syncTerminals map[symbol.Symbol]struct{}
}

func (g *Grammar) Name() string {
	return g.name
}

type Class string

const (
	ClassLALR = Class("lalr")
	ClassSLR  = Class("slr")
)

type compileConfig struct {
	class              Class
	isReportingEnabled bool
	compressTables     bool
}

type CompileOption func(config *compileConfig)

// SpecifyClass selects the way look-ahead symbols are computed. The default is ClassLALR.
func SpecifyClass(class Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// CompressTables stores the action and goto tables in compressed form.
func CompressTables() CompileOption {
	return func(config *compileConfig) {
		config.compressTables = true
	}
}

// Compile turns the grammar into the lexer tables of maleeni and the LR tables of the given class. The report
// is returned only when EnableReporting is passed.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class: ClassLALR,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.class != ClassLALR && config.class != ClassSLR {
		return nil, nil, fmt.Errorf("invalid grammar class: %v", config.class)
	}

	lexical, err := compileLexicalSpec(gram)
	if err != nil {
		return nil, nil, err
	}

	automaton, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		return nil, nil, err
	}
	first := genFirstSet(gram.productionSet)
	if config.class == ClassSLR {
		automaton.setSLR1LookAheads(genFollowSet(gram.productionSet, first))
	} else {
		automaton.setLALR1LookAheads(gram.productionSet, first)
	}
	tab := genParsingTable(automaton, gram.symbolTable, gram.precAndAssoc)

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = genReport(gram, automaton, tab, config.class)
		if err != nil {
			return nil, nil, err
		}
	}

	syntactic, err := genSyntacticSpec(gram, tab, config)
	if err != nil {
		return nil, nil, err
	}

	return &spec.CompiledGrammar{
		Name:      gram.name,
		Lexical:   lexical,
		Syntactic: syntactic,
		ASTAction: genASTAction(gram),
	}, report, nil
}

func compileLexicalSpec(gram *Grammar) (*spec.LexicalSpec, error) {
	lexSpec, err, cErrs := mlcompiler.Compile(gram.lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf("failed to compile the lexical specification of '%v':\n%v", gram.name, b.String())
		}
		return nil, fmt.Errorf("failed to compile the lexical specification of '%v': %w", gram.name, err)
	}

	symTab := gram.symbolTable
	kind2Term := make([]int, len(lexSpec.KindNames))
	term2Kind := make([]int, symTab.TerminalCount())
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Term[mlspec.LexKindIDNil] = symbol.Nil.Num().Int()
			term2Kind[symbol.Nil.Num()] = mlspec.LexKindIDNil.Int()
			continue
		}

		sym, ok := symTab.ToSymbol(k.String())
		if !ok {
			return nil, fmt.Errorf("terminal symbol '%v' was not found in a symbol table", k)
		}
		kind2Term[i] = sym.Num().Int()
		term2Kind[sym.Num()] = i

		if _, ok := gram.skipTerminals[sym]; ok {
			skip[i] = 1
		}
	}

	kindAliases := make([]string, symTab.TerminalCount())
	for _, sym := range symTab.TerminalSymbols() {
		kindAliases[sym.Num().Int()] = gram.kindAliases[sym]
	}

	return &spec.LexicalSpec{
		Maleeni:        lexSpec,
		KindToTerminal: kind2Term,
		TerminalToKind: term2Kind,
		Skip:           skip,
		KindAliases:    kindAliases,
	}, nil
}

func genSyntacticSpec(gram *Grammar, tab *parsingTable, config *compileConfig) (*spec.SyntacticSpec, error) {
	symTab := gram.symbolTable
	syncTerms := make([]int, symTab.TerminalCount())
	for sym := range gram.syncTerminals {
		syncTerms[sym.Num()] = 1
	}

	prodCount := gram.productionSet.count() + 1
	lhsSyms := make([]int, prodCount)
	altSymCounts := make([]int, prodCount)
	recoverProds := make([]int, prodCount)
	for _, p := range gram.productionSet.all() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = len(p.rhs)
		if p.recover {
			recoverProds[p.num] = 1
		}
	}

	syn := &spec.SyntacticSpec{
		Class:                   string(config.class),
		Action:                  tab.action,
		GoTo:                    tab.goTo,
		StateCount:              tab.stateCount,
		InitialState:            stateNumInitial.Int(),
		StartProduction:         productionNumStart.Int(),
		LHSSymbols:              lhsSyms,
		AlternativeSymbolCounts: altSymCounts,
		Terminals:               symTab.TerminalTexts(),
		TerminalCount:           tab.termCount,
		NonTerminals:            symTab.NonTerminalTexts(),
		NonTerminalCount:        tab.nonTermCount,
		EOFSymbol:               symbol.EOF.Num().Int(),
		ErrorSymbol:             symbol.Error.Num().Int(),
		ErrorTrapperStates:      tab.errorTrapperStates,
		RecoverProductions:      recoverProds,
		SyncTerminals:           syncTerms,
	}

	if config.compressTables {
		var err error
		syn.CompressedAction, err = compressor.Compress(tab.action, tab.termCount, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to compress the action table: %w", err)
		}
		syn.CompressedGoTo, err = compressor.Compress(tab.goTo, tab.nonTermCount, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to compress the goto table: %w", err)
		}
		syn.Action = nil
		syn.GoTo = nil
	}

	return syn, nil
}

// genASTAction encodes the AST actions: a positive entry keeps the child at that 1-based position and a
// negative one expands the children of that child in place. A production without an entry keeps all of its
// children.
func genASTAction(gram *Grammar) *spec.ASTAction {
	entries := make([][]int, gram.productionSet.count()+1)
	for _, p := range gram.productionSet.all() {
		if p.ast == nil {
			continue
		}
		entry := make([]int, len(p.ast))
		for i, e := range p.ast {
			if e.expansion {
				entry[i] = -e.position
			} else {
				entry[i] = e.position
			}
		}
		entries[p.num] = entry
	}
	return &spec.ASTAction{
		Entries: entries,
	}
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
