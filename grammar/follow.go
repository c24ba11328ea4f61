package grammar

import (
	"github.com/tern-lang/tern/grammar/symbol"
)

// followSet holds FOLLOW of every non-terminal. The EOF symbol is an ordinary member of the sets.
type followSet map[symbol.Symbol]symbolSet

func genFollowSet(prods *productionSet, first *firstSet) followSet {
	flw := followSet{}
	for _, p := range prods.all() {
		if _, ok := flw[p.lhs]; !ok {
			flw[p.lhs] = symbolSet{}
		}
	}
	flw[symbol.Start].add(symbol.EOF)

	for changed := true; changed; {
		changed = false
		for _, p := range prods.all() {
			for i, sym := range p.rhs {
				if !sym.IsNonTerminal() {
					continue
				}
				rest, nullable := first.ofSequence(p.rhs[i+1:])
				if flw[sym].merge(rest) {
					changed = true
				}
				if nullable && flw[sym].merge(flw[p.lhs]) {
					changed = true
				}
			}
		}
	}

	return flw
}
