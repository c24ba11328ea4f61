package grammar

import (
	"fmt"
	"sort"

	"github.com/tern-lang/tern/grammar/symbol"
	spec "github.com/tern-lang/tern/spec/grammar"
)

func assocText(assoc assocType) string {
	switch assoc {
	case assocTypeLeft:
		return "l"
	case assocTypeRight:
		return "r"
	}
	return ""
}

// rhsNums spells a RHS with terminal numbers and negated non-terminal numbers.
func rhsNums(rhs []symbol.Symbol) []int {
	nums := make([]int, len(rhs))
	for i, sym := range rhs {
		if sym.IsTerminal() {
			nums[i] = sym.Num().Int()
		} else {
			nums[i] = -sym.Num().Int()
		}
	}
	return nums
}

func genReport(gram *Grammar, a *lrAutomaton, tab *parsingTable, class Class) (*spec.Report, error) {
	terms, err := reportTerminals(gram)
	if err != nil {
		return nil, err
	}
	nonTerms, err := reportNonTerminals(gram)
	if err != nil {
		return nil, err
	}

	return &spec.Report{
		Name:         gram.name,
		Class:        string(class),
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  reportProductions(gram),
		States:       reportStates(gram, a, tab),
	}, nil
}

func reportTerminals(gram *Grammar) ([]*spec.Terminal, error) {
	symTab := gram.symbolTable
	terms := make([]*spec.Terminal, symTab.TerminalCount())
	for _, sym := range symTab.TerminalSymbols() {
		name, ok := symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("a terminal has no name: %v", sym)
		}
		_, skip := gram.skipTerminals[sym]
		_, sync := gram.syncTerminals[sym]
		terms[sym.Num()] = &spec.Terminal{
			Number:        sym.Num().Int(),
			Name:          name,
			Alias:         gram.kindAliases[sym],
			Pattern:       gram.termPatterns[sym],
			Skip:          skip,
			Sync:          sync,
			Precedence:    gram.precAndAssoc.terminalPrecedence(sym.Num()),
			Associativity: assocText(gram.precAndAssoc.terminalAssociativity(sym.Num())),
		}
	}
	return terms, nil
}

func reportNonTerminals(gram *Grammar) ([]*spec.NonTerminal, error) {
	symTab := gram.symbolTable
	nonTerms := make([]*spec.NonTerminal, symTab.NonTerminalCount())
	for _, sym := range symTab.NonTerminalSymbols() {
		name, ok := symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("a non-terminal has no name: %v", sym)
		}
		nonTerms[sym.Num()] = &spec.NonTerminal{
			Number: sym.Num().Int(),
			Name:   name,
		}
	}
	return nonTerms, nil
}

func reportProductions(gram *Grammar) []*spec.Production {
	prods := make([]*spec.Production, gram.productionSet.count()+1)
	for _, p := range gram.productionSet.all() {
		prods[p.num] = &spec.Production{
			Number:        p.num.Int(),
			LHS:           p.lhs.Num().Int(),
			RHS:           rhsNums(p.rhs),
			Recover:       p.recover,
			Precedence:    gram.precAndAssoc.productionPrecedence(p.num),
			Associativity: assocText(gram.precAndAssoc.productionAssociativity(p.num)),
		}
	}
	return prods
}

func reportStates(gram *Grammar, a *lrAutomaton, tab *parsingTable) []*spec.State {
	conflicts := map[stateNum][]*spec.Conflict{}
	for _, c := range tab.conflicts {
		rc := &spec.Conflict{
			Kind:       spec.ConflictReduceReduce,
			Symbol:     c.sym.Num().Int(),
			Adopted:    tab.actionOf(c.state, c.sym),
			ResolvedBy: c.resolvedBy.Int(),
		}
		if c.shiftReduce() {
			rc.Kind = spec.ConflictShiftReduce
			rc.ShiftState = c.shift.Int()
		}
		for _, p := range c.prods {
			rc.Productions = append(rc.Productions, p.Int())
		}
		conflicts[c.state] = append(conflicts[c.state], rc)
	}

	states := make([]*spec.State, len(a.states))
	for _, s := range a.states {
		rs := &spec.State{
			Number:       s.num.Int(),
			ErrorTrapper: s.trapsError,
			Recover:      s.recovers,
			Conflicts:    conflicts[s.num],
		}
		for _, it := range s.kernel {
			rs.Kernel = append(rs.Kernel, &spec.Item{
				Production: it.prod.num.Int(),
				Dot:        it.dot,
			})
		}

		for sym, next := range s.next {
			tran := &spec.Transition{
				Symbol: sym.Num().Int(),
				State:  next.num.Int(),
			}
			if !sym.IsTerminal() {
				rs.GoTo = append(rs.GoTo, tran)
				continue
			}
			// A conflict resolved in favor of a reduce leaves no shift in the table.
			if tab.actionOf(s.num, sym) != -next.num.Int() {
				continue
			}
			rs.Shift = append(rs.Shift, tran)
			if _, ok := gram.syncTerminals[sym]; ok {
				rs.Sync = append(rs.Sync, sym.Num().Int())
			}
		}
		sort.Slice(rs.Shift, func(i, j int) bool {
			return rs.Shift[i].State < rs.Shift[j].State
		})
		sort.Slice(rs.GoTo, func(i, j int) bool {
			return rs.GoTo[i].State < rs.GoTo[j].State
		})
		sort.Ints(rs.Sync)

		reduce := map[int]*spec.Reduce{}
		for _, t := range gram.symbolTable.TerminalSymbols() {
			act := tab.actionOf(s.num, t)
			if act <= 0 {
				continue
			}
			r, ok := reduce[act]
			if !ok {
				r = &spec.Reduce{
					Production: act,
				}
				reduce[act] = r
				rs.Reduce = append(rs.Reduce, r)
			}
			r.LookAhead = append(r.LookAhead, t.Num().Int())
		}
		sort.Slice(rs.Reduce, func(i, j int) bool {
			return rs.Reduce[i].Production < rs.Reduce[j].Production
		})

		states[s.num] = rs
	}
	return states
}
