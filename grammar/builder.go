package grammar

import (
	"fmt"
	"regexp"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/tern-lang/tern/error"
	"github.com/tern-lang/tern/grammar/symbol"
)

// The lexer compiler accepts only snake-case names for a grammar, its kinds and its fragments.
var identifierRE = regexp.MustCompile(`^[a-z](_?[0-9a-z]+)*$`)

func isIdentifier(s string) bool {
	return identifierRE.MatchString(s)
}

type terminalDef struct {
	kind    string
	pattern string
	alias   string
	skip    bool
}

type precLevel struct {
	assoc assocType
	terms []string
}

// Builder collects a grammar definition. Terminals are matched by the lexer in the order they are defined,
// so keywords must be defined before a pattern that also matches them. Errors are collected and reported
// together by Build.
type Builder struct {
	name      string
	terms     []*terminalDef
	fragments []*terminalDef
	prods     []*ProductionBuilder
	levels    []*precLevel
	sync      []string
	start     string
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
	}
}

// Literal defines a terminal matching `text` literally. The text is also used as the terminal's alias
// in diagnostics.
func (b *Builder) Literal(kind, text string) *Builder {
	b.terms = append(b.terms, &terminalDef{
		kind:    kind,
		pattern: mlspec.EscapePattern(text),
		alias:   text,
	})
	return b
}

// Pattern defines a terminal by a regular expression.
func (b *Builder) Pattern(kind, pattern string) *Builder {
	b.terms = append(b.terms, &terminalDef{
		kind:    kind,
		pattern: pattern,
	})
	return b
}

// Skip defines a terminal the scanner consumes without returning it, such as white spaces and comments.
func (b *Builder) Skip(kind, pattern string) *Builder {
	b.terms = append(b.terms, &terminalDef{
		kind:    kind,
		pattern: pattern,
		skip:    true,
	})
	return b
}

// Fragment defines a named sub-pattern other patterns can refer to as `\f{name}`.
func (b *Builder) Fragment(name, pattern string) *Builder {
	b.fragments = append(b.fragments, &terminalDef{
		kind:    name,
		pattern: pattern,
	})
	return b
}

// Production adds an alternative `lhs → rhs`. An empty rhs means an ε-production. The first production
// added decides the start symbol unless Start is called.
func (b *Builder) Production(lhs string, rhs ...string) *ProductionBuilder {
	p := &ProductionBuilder{
		lhs: lhs,
		rhs: rhs,
	}
	b.prods = append(b.prods, p)
	return p
}

// Left and Right add a precedence level. Each call binds tighter than the previous ones.
func (b *Builder) Left(terms ...string) *Builder {
	b.levels = append(b.levels, &precLevel{
		assoc: assocTypeLeft,
		terms: terms,
	})
	return b
}

func (b *Builder) Right(terms ...string) *Builder {
	b.levels = append(b.levels, &precLevel{
		assoc: assocTypeRight,
		terms: terms,
	})
	return b
}

// Sync adds terminals to the synchronizing set panic-mode recovery waits for.
func (b *Builder) Sync(terms ...string) *Builder {
	b.sync = append(b.sync, terms...)
	return b
}

func (b *Builder) Start(nonTerm string) *Builder {
	b.start = nonTerm
	return b
}

type ProductionBuilder struct {
	lhs     string
	rhs     []string
	ast     []int
	hasAST  bool
	recover bool
	prec    string
}

// AST chooses the children of the AST node made by the production. Positions are 1-based, and a negative
// position expands the children of that non-terminal in place.
func (p *ProductionBuilder) AST(positions ...int) *ProductionBuilder {
	p.ast = positions
	p.hasAST = true
	return p
}

// Recover marks the production so that reducing it ends the error state.
func (p *ProductionBuilder) Recover() *ProductionBuilder {
	p.recover = true
	return p
}

// Prec gives the production the precedence of `term` instead of the right-most terminal's one.
func (p *ProductionBuilder) Prec(term string) *ProductionBuilder {
	p.prec = term
	return p
}

func (p *ProductionBuilder) String() string {
	if len(p.rhs) == 0 {
		return fmt.Sprintf("%v → ε", p.lhs)
	}
	return fmt.Sprintf("%v → %v", p.lhs, strings.Join(p.rhs, " "))
}

type buildContext struct {
	b      *Builder
	symTab *symbol.Table
	errs   verr.SpecErrors
}

func (c *buildContext) fail(cause error, detail string, prod *ProductionBuilder) {
	err := &verr.SpecError{
		Cause:       cause,
		Detail:      detail,
		GrammarName: c.b.name,
	}
	if prod != nil {
		err.Production = prod.String()
	}
	c.errs = append(c.errs, err)
}

// Build checks the definition and returns every error found as verr.SpecErrors.
func (b *Builder) Build() (*Grammar, error) {
	c := &buildContext{
		b:      b,
		symTab: symbol.NewTable(),
	}

	if b.name == "" {
		c.fail(semErrNoGrammarName, "", nil)
	} else if !isIdentifier(b.name) {
		c.fail(semErrInvalidName, b.name, nil)
	}
	if len(b.prods) == 0 {
		c.fail(semErrNoProduction, "", nil)
		return nil, c.errs
	}

	lexSpec, kindAliases, termPatterns, skipTerms := c.genSymbolTableAndLexSpec()
	if len(c.errs) > 0 {
		return nil, c.errs
	}

	prods, augStartSym := c.genProductions(skipTerms)
	if len(c.errs) > 0 {
		return nil, c.errs
	}

	c.checkUnusedSymbols(prods, skipTerms)

	pa := c.genPrecAndAssoc(prods)
	syncTerms := c.genSyncTerminals(prods, skipTerms)
	if len(c.errs) > 0 {
		return nil, c.errs
	}

	return &Grammar{
		name:                 b.name,
		lexSpec:              lexSpec,
		skipTerminals:        skipTerms,
		kindAliases:          kindAliases,
		termPatterns:         termPatterns,
		productionSet:        prods,
		augmentedStartSymbol: augStartSym,
		symbolTable:          c.symTab,
		precAndAssoc:         pa,
		syncTerminals:        syncTerms,
	}, nil
}

func (c *buildContext) genSymbolTableAndLexSpec() (*mlspec.LexSpec, map[symbol.Symbol]string, map[symbol.Symbol]string, map[symbol.Symbol]struct{}) {
	entries := []*mlspec.LexEntry{}
	kindAliases := map[symbol.Symbol]string{}
	termPatterns := map[symbol.Symbol]string{}
	skipTerms := map[symbol.Symbol]struct{}{}
	for _, t := range c.b.terms {
		if t.kind == symbol.NameError {
			c.fail(semErrErrSymIsReserved, t.kind, nil)
			continue
		}
		if !isIdentifier(t.kind) {
			c.fail(semErrInvalidName, t.kind, nil)
			continue
		}
		if _, exist := c.symTab.ToSymbol(t.kind); exist {
			c.fail(semErrDuplicateTerminal, t.kind, nil)
			continue
		}
		if t.pattern == "" {
			c.fail(semErrEmptyPattern, t.kind, nil)
			continue
		}

		sym, err := c.symTab.RegisterTerminal(t.kind)
		if err != nil {
			c.fail(err, t.kind, nil)
			continue
		}
		if t.alias != "" {
			kindAliases[sym] = t.alias
		}
		termPatterns[sym] = t.pattern
		if t.skip {
			skipTerms[sym] = struct{}{}
		}

		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(t.kind),
			Pattern: mlspec.LexPattern(t.pattern),
		})
	}

	knownFragments := map[string]struct{}{}
	for _, f := range c.b.fragments {
		if !isIdentifier(f.kind) {
			c.fail(semErrInvalidName, f.kind, nil)
			continue
		}
		if _, exist := knownFragments[f.kind]; exist {
			c.fail(semErrDuplicateFragment, f.kind, nil)
			continue
		}
		knownFragments[f.kind] = struct{}{}

		entries = append(entries, &mlspec.LexEntry{
			Fragment: true,
			Kind:     mlspec.LexKindName(f.kind),
			Pattern:  mlspec.LexPattern(f.pattern),
		})
	}

	return &mlspec.LexSpec{
		Name:    c.b.name,
		Entries: entries,
	}, kindAliases, termPatterns, skipTerms
}

// genProductions registers the non-terminals and numbers the productions in definition order after the
// augmented start production.
func (c *buildContext) genProductions(skipTerms map[symbol.Symbol]struct{}) (*productionSet, symbol.Symbol) {
	startText := c.b.start
	if startText == "" {
		startText = c.b.prods[0].lhs
	}

	for _, p := range c.b.prods {
		if p.lhs == symbol.NameError {
			c.fail(semErrErrSymIsReserved, p.lhs, p)
			continue
		}
		sym, exist := c.symTab.ToSymbol(p.lhs)
		if exist && sym.IsTerminal() {
			c.fail(semErrDuplicateName, p.lhs, p)
			continue
		}
		if _, err := c.symTab.RegisterNonTerminal(p.lhs); err != nil {
			c.fail(err, p.lhs, p)
		}
	}
	if len(c.errs) > 0 {
		return nil, symbol.Nil
	}

	startSym, ok := c.symTab.ToSymbol(startText)
	if !ok || !startSym.IsNonTerminal() {
		c.fail(semErrNoStartSymbol, startText, nil)
		return nil, symbol.Nil
	}
	augStartSym, err := c.symTab.RegisterStart(fmt.Sprintf("%s'", startText))
	if err != nil {
		c.fail(err, startText, nil)
		return nil, symbol.Nil
	}

	prods := newProductionSet()
	prods.add(&production{
		lhs: augStartSym,
		rhs: []symbol.Symbol{startSym},
	})

	for _, p := range c.b.prods {
		lhsSym, _ := c.symTab.ToSymbol(p.lhs)

		rhsSyms := make([]symbol.Symbol, 0, len(p.rhs))
		undefined := false
		for _, e := range p.rhs {
			sym, ok := c.symTab.ToSymbol(e)
			if !ok || sym.IsStart() || sym.IsEOF() {
				c.fail(semErrUndefinedSym, e, p)
				undefined = true
				continue
			}
			if _, skip := skipTerms[sym]; skip {
				c.fail(semErrTermCannotBeSkipped, e, p)
				undefined = true
				continue
			}
			rhsSyms = append(rhsSyms, sym)
		}
		if undefined {
			continue
		}

		prod := &production{
			lhs:     lhsSym,
			rhs:     rhsSyms,
			recover: p.recover,
			def:     p,
		}
		if p.hasAST {
			entries := []*astActionEntry{}
			for _, pos := range p.ast {
				n := pos
				if n < 0 {
					n *= -1
				}
				if n == 0 || n > len(rhsSyms) {
					c.fail(semErrInvalidASTPosition, fmt.Sprintf("%v", pos), p)
					break
				}
				if pos < 0 && !rhsSyms[n-1].IsNonTerminal() {
					c.fail(semErrExpansionOfTerminal, p.rhs[n-1], p)
					break
				}
				entries = append(entries, &astActionEntry{
					position:  n,
					expansion: pos < 0,
				})
			}
			prod.ast = entries
		}
		if !prods.add(prod) {
			c.fail(semErrDuplicateProduction, "", p)
		}
	}

	return prods, augStartSym
}

// checkUnusedSymbols reports non-terminals unreachable from the start symbol and terminals no production
// refers to. Skip terminals are used by definition.
func (c *buildContext) checkUnusedSymbols(prods *productionSet, skipTerms map[symbol.Symbol]struct{}) {
	reached := map[symbol.Symbol]struct{}{
		symbol.Start: {},
	}
	unchecked := []symbol.Symbol{symbol.Start}
	for len(unchecked) > 0 {
		var next []symbol.Symbol
		for _, sym := range unchecked {
			for _, p := range prods.alternatives(sym) {
				for _, s := range p.rhs {
					if _, ok := reached[s]; ok {
						continue
					}
					reached[s] = struct{}{}
					if s.IsNonTerminal() {
						next = append(next, s)
					}
				}
			}
		}
		unchecked = next
	}

	for _, sym := range c.symTab.NonTerminalSymbols() {
		if _, ok := reached[sym]; ok {
			continue
		}
		text, _ := c.symTab.ToText(sym)
		c.fail(semErrUnusedProduction, text, nil)
	}
	for _, sym := range c.symTab.TerminalSymbols() {
		if sym.IsEOF() || sym == symbol.Error {
			continue
		}
		if _, ok := skipTerms[sym]; ok {
			continue
		}
		if _, ok := reached[sym]; ok {
			continue
		}
		text, _ := c.symTab.ToText(sym)
		c.fail(semErrUnusedTerminal, text, nil)
	}
}

func (c *buildContext) genPrecAndAssoc(prods *productionSet) *precAndAssoc {
	termPrec := map[symbol.Num]int{}
	termAssoc := map[symbol.Num]assocType{}
	precN := precMin
	for _, level := range c.b.levels {
		for _, t := range level.terms {
			sym, ok := c.symTab.ToSymbol(t)
			if !ok {
				c.fail(semErrUndefinedSym, t, nil)
				continue
			}
			if !sym.IsTerminal() || sym == symbol.Error || sym.IsEOF() {
				c.fail(semErrInvalidAssoc, t, nil)
				continue
			}
			if _, alreadySet := termPrec[sym.Num()]; alreadySet {
				c.fail(semErrDuplicateAssoc, t, nil)
				continue
			}
			termPrec[sym.Num()] = precN
			termAssoc[sym.Num()] = level.assoc
		}
		precN++
	}

	prodPrec := map[productionNum]int{}
	prodAssoc := map[productionNum]assocType{}
	for _, p := range prods.all() {
		term := symbol.Nil
		if pb := p.def; pb != nil && pb.prec != "" {
			sym, ok := c.symTab.ToSymbol(pb.prec)
			if !ok || !sym.IsTerminal() {
				c.fail(semErrUndefinedPrec, pb.prec, pb)
				continue
			}
			if _, ok := termPrec[sym.Num()]; !ok {
				c.fail(semErrUndefinedPrec, pb.prec, pb)
				continue
			}
			term = sym
		}
		if term.IsNil() {
			for _, sym := range p.rhs {
				if sym.IsTerminal() {
					term = sym
				}
			}
		}
		if term.IsNil() {
			continue
		}
		if prec, ok := termPrec[term.Num()]; ok {
			prodPrec[p.num] = prec
			prodAssoc[p.num] = termAssoc[term.Num()]
		}
	}

	return &precAndAssoc{
		termPrec:  termPrec,
		termAssoc: termAssoc,
		prodPrec:  prodPrec,
		prodAssoc: prodAssoc,
	}
}

func (c *buildContext) genSyncTerminals(prods *productionSet, skipTerms map[symbol.Symbol]struct{}) map[symbol.Symbol]struct{} {
	used := map[symbol.Symbol]struct{}{}
	for _, p := range prods.all() {
		for _, sym := range p.rhs {
			used[sym] = struct{}{}
		}
	}

	syncTerms := map[symbol.Symbol]struct{}{}
	for _, t := range c.b.sync {
		sym, ok := c.symTab.ToSymbol(t)
		if !ok || !sym.IsTerminal() || sym == symbol.Error || sym.IsEOF() {
			c.fail(semErrInvalidSync, t, nil)
			continue
		}
		if _, skip := skipTerms[sym]; skip {
			c.fail(semErrInvalidSync, t, nil)
			continue
		}
		if _, ok := used[sym]; !ok {
			c.fail(semErrInvalidSync, t, nil)
			continue
		}
		syncTerms[sym] = struct{}{}
	}
	return syncTerms
}
