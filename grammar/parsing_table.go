package grammar

import (
	"sort"

	"github.com/tern-lang/tern/grammar/symbol"
)

type conflictResolutionMethod int

func (m conflictResolutionMethod) Int() int {
	return int(m)
}

func (m conflictResolutionMethod) String() string {
	switch m {
	case ResolvedByPrec:
		return "precedence"
	case ResolvedByAssoc:
		return "associativity"
	case ResolvedByShift:
		return "shift"
	case ResolvedByProdOrder:
		return "production order"
	}
	return "unknown"
}

const (
	ResolvedByPrec      conflictResolutionMethod = 1
	ResolvedByAssoc     conflictResolutionMethod = 2
	ResolvedByShift     conflictResolutionMethod = 3
	ResolvedByProdOrder conflictResolutionMethod = 4
)

// conflict records a table entry two actions competed for. A shift/reduce conflict has the shift state and
// one production; a reduce/reduce conflict has two productions.
type conflict struct {
	state      stateNum
	sym        symbol.Symbol
	shift      stateNum
	prods      []productionNum
	resolvedBy conflictResolutionMethod
}

func (c *conflict) shiftReduce() bool {
	return len(c.prods) == 1
}

// parsingTable holds the action and goto tables in row-major order, one row per state.
//
// An action entry is a negative state number for a shift, a positive production number for a reduce, and
// 0 for an error. A goto entry is a state number, and 0 means no transition; the initial state is never
// the target of a transition.
type parsingTable struct {
	action       []int
	goTo         []int
	stateCount   int
	termCount    int
	nonTermCount int

	// errorTrapperStates[state] is 1 when the state has an item `A → α・error β`.
	errorTrapperStates []int

	conflicts []*conflict
}

func (t *parsingTable) actionOf(state stateNum, sym symbol.Symbol) int {
	return t.action[state.Int()*t.termCount+sym.Num().Int()]
}

func (t *parsingTable) goToOf(state stateNum, sym symbol.Symbol) int {
	return t.goTo[state.Int()*t.nonTermCount+sym.Num().Int()]
}

// genParsingTable writes the shift and goto transitions of every state and then its reduce actions, so
// conflicts only show up while writing reduce actions. A shift/reduce conflict is resolved by precedence and
// associativity when both sides have them and in favor of the shift otherwise. A reduce/reduce conflict is
// resolved in favor of the production defined earlier.
func genParsingTable(a *lrAutomaton, symTab *symbol.Table, pa *precAndAssoc) *parsingTable {
	tab := &parsingTable{
		stateCount:         len(a.states),
		termCount:          symTab.TerminalCount(),
		nonTermCount:       symTab.NonTerminalCount(),
		errorTrapperStates: make([]int, len(a.states)),
	}
	tab.action = make([]int, tab.stateCount*tab.termCount)
	tab.goTo = make([]int, tab.stateCount*tab.nonTermCount)

	for _, s := range a.states {
		if s.trapsError {
			tab.errorTrapperStates[s.num] = 1
		}

		for sym, next := range s.next {
			if sym.IsTerminal() {
				tab.action[s.num.Int()*tab.termCount+sym.Num().Int()] = -next.num.Int()
			} else {
				tab.goTo[s.num.Int()*tab.nonTermCount+sym.Num().Int()] = next.num.Int()
			}
		}

		for _, it := range s.reducible {
			for _, la := range s.lookAheadOf(it).sorted() {
				tab.writeReduce(s.num, la, it.prod.num, pa)
			}
		}
	}

	sort.SliceStable(tab.conflicts, func(i, j int) bool {
		if tab.conflicts[i].state != tab.conflicts[j].state {
			return tab.conflicts[i].state < tab.conflicts[j].state
		}
		return tab.conflicts[i].sym < tab.conflicts[j].sym
	})

	return tab
}

func (t *parsingTable) writeReduce(state stateNum, sym symbol.Symbol, prod productionNum, pa *precAndAssoc) {
	pos := state.Int()*t.termCount + sym.Num().Int()
	cur := t.action[pos]
	switch {
	case cur == 0:
		t.action[pos] = prod.Int()
	case cur < 0:
		shift, method := resolveSRConflict(pa, sym.Num(), prod)
		t.conflicts = append(t.conflicts, &conflict{
			state:      state,
			sym:        sym,
			shift:      stateNum(-cur),
			prods:      []productionNum{prod},
			resolvedBy: method,
		})
		if !shift {
			t.action[pos] = prod.Int()
		}
	case productionNum(cur) != prod:
		t.conflicts = append(t.conflicts, &conflict{
			state:      state,
			sym:        sym,
			prods:      []productionNum{productionNum(cur), prod},
			resolvedBy: ResolvedByProdOrder,
		})
		if prod < productionNum(cur) {
			t.action[pos] = prod.Int()
		}
	}
}

// resolveSRConflict reports whether the shift wins. A larger precedence level binds tighter.
func resolveSRConflict(pa *precAndAssoc, sym symbol.Num, prod productionNum) (bool, conflictResolutionMethod) {
	symPrec := pa.terminalPrecedence(sym)
	prodPrec := pa.productionPrecedence(prod)
	switch {
	case symPrec == precNil || prodPrec == precNil:
		return true, ResolvedByShift
	case symPrec == prodPrec:
		return pa.productionAssociativity(prod) != assocTypeLeft, ResolvedByAssoc
	default:
		return symPrec > prodPrec, ResolvedByPrec
	}
}
