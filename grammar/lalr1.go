package grammar

import (
	"github.com/tern-lang/tern/grammar/symbol"
)

// propagated stands in the look-ahead sets of a closure for whatever the kernel item will receive.
const propagated = symbol.Nil

type itemRef struct {
	state *lrState
	item  lrItem
}

type propagation struct {
	from itemRef
	to   itemRef
}

// setLALR1LookAheads computes the look-ahead symbols by propagation. The closure of each kernel item tells
// which symbols are generated spontaneously for the items it leads to and which ones are passed on from
// the kernel item. Spontaneous symbols are written at once, and the links are followed until no item gains
// a symbol.
func (a *lrAutomaton) setLALR1LookAheads(prods *productionSet, first *firstSet) {
	initial := a.states[stateNumInitial]
	initial.lookAheadOf(initial.kernel[0]).add(symbol.EOF)

	var props []propagation
	for _, s := range a.states {
		for _, k := range s.kernel {
			from := itemRef{state: s, item: k}
			for it, las := range lr1Closure(k, prods, first) {
				var to itemRef
				if it.reducible() {
					if it == k {
						continue
					}
					to = itemRef{state: s, item: it}
				} else {
					to = itemRef{state: s.next[it.dotted()], item: it.advance()}
				}

				for la := range las {
					if la == propagated {
						props = append(props, propagation{from: from, to: to})
						continue
					}
					to.state.lookAheadOf(to.item).add(la)
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range props {
			if p.to.state.lookAheadOf(p.to.item).merge(p.from.state.lookAheadOf(p.from.item)) {
				changed = true
			}
		}
	}
}

// lr1Closure returns the LR(1) closure of `[k, #]` where # is the propagated marker.
func lr1Closure(k lrItem, prods *productionSet, first *firstSet) map[lrItem]symbolSet {
	closure := map[lrItem]symbolSet{
		k: {propagated: {}},
	}
	queue := []lrItem{k}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		sym := it.dotted()
		if !sym.IsNonTerminal() {
			continue
		}
		las, nullable := first.ofSequence(it.prod.rhs[it.dot+1:])
		if nullable {
			las.merge(closure[it])
		}

		for _, p := range prods.alternatives(sym) {
			n := lrItem{prod: p}
			cur, ok := closure[n]
			if !ok {
				cur = symbolSet{}
				closure[n] = cur
			}
			if cur.merge(las) || !ok {
				queue = append(queue, n)
			}
		}
	}
	return closure
}
