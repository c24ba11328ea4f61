package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tern-lang/tern/grammar/symbol"
)

// lrItem is a production with a dot in its right-hand side.
//
//	dot 0: E →・E + T
//	dot 2: E → E +・T
//	dot 3: E → E + T・
type lrItem struct {
	prod *production
	dot  int
}

func (it lrItem) dotted() symbol.Symbol {
	if it.dot < len(it.prod.rhs) {
		return it.prod.rhs[it.dot]
	}
	return symbol.Nil
}

func (it lrItem) reducible() bool {
	return it.dot == len(it.prod.rhs)
}

func (it lrItem) advance() lrItem {
	return lrItem{
		prod: it.prod,
		dot:  it.dot + 1,
	}
}

func (it lrItem) less(o lrItem) bool {
	if it.prod.num != o.prod.num {
		return it.prod.num < o.prod.num
	}
	return it.dot < o.dot
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

type lrState struct {
	num stateNum

	// kernel is sorted by production number and then by dot position.
	kernel []lrItem

	next map[symbol.Symbol]*lrState

	// reducible lists the reducible kernel items followed by the `A →・ε` items of the closure.
	reducible []lrItem

	// lookAhead holds the look-ahead terminals of kernel items and reducible items.
	lookAhead map[lrItem]symbolSet

	// trapsError is true when the state has an item `A → α・error β`. The parser pops the stack down to
	// such a state to shift the error symbol.
	trapsError bool

	// recovers is true when the state can reduce a production marked as recovering.
	recovers bool
}

func (s *lrState) lookAheadOf(it lrItem) symbolSet {
	la, ok := s.lookAhead[it]
	if !ok {
		la = symbolSet{}
		s.lookAhead[it] = la
	}
	return la
}

func kernelSignature(kernel []lrItem) string {
	var b strings.Builder
	for _, it := range kernel {
		fmt.Fprintf(&b, "%v.%v;", it.prod.num, it.dot)
	}
	return b.String()
}

// lrAutomaton is the LR(0) automaton. Look-ahead symbols are filled in afterwards, either by the LALR(1)
// propagation or from the FOLLOW sets for SLR(1).
type lrAutomaton struct {
	// states is indexed by state number. The initial state comes first.
	states []*lrState
}

// genLR0Automaton explores the states breadth-first from `S' →・S`. The transitions of each state are
// followed in symbol order, so the numbering of the states is stable.
func genLR0Automaton(prods *productionSet, startSym symbol.Symbol) (*lrAutomaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}
	startProds := prods.alternatives(startSym)
	if len(startProds) == 0 {
		return nil, fmt.Errorf("the start symbol has no production")
	}

	a := &lrAutomaton{}
	known := map[string]*lrState{}
	stateOf := func(kernel []lrItem) *lrState {
		sort.Slice(kernel, func(i, j int) bool {
			return kernel[i].less(kernel[j])
		})
		sig := kernelSignature(kernel)
		if s, ok := known[sig]; ok {
			return s
		}
		s := &lrState{
			num:       stateNum(len(a.states)),
			kernel:    kernel,
			next:      map[symbol.Symbol]*lrState{},
			lookAhead: map[lrItem]symbolSet{},
		}
		known[sig] = s
		a.states = append(a.states, s)
		return s
	}

	stateOf([]lrItem{{prod: startProds[0]}})
	for i := 0; i < len(a.states); i++ {
		s := a.states[i]

		goTo := map[symbol.Symbol][]lrItem{}
		var syms []symbol.Symbol
		for _, it := range lr0Closure(s.kernel, prods) {
			sym := it.dotted()
			if sym.IsNil() {
				s.reducible = append(s.reducible, it)
				if it.prod.recover {
					s.recovers = true
				}
				continue
			}
			if sym == symbol.Error {
				s.trapsError = true
			}
			if _, ok := goTo[sym]; !ok {
				syms = append(syms, sym)
			}
			goTo[sym] = append(goTo[sym], it.advance())
		}

		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})
		for _, sym := range syms {
			s.next[sym] = stateOf(goTo[sym])
		}
	}

	return a, nil
}

// lr0Closure returns the kernel followed by the `B →・γ` items it implies.
func lr0Closure(kernel []lrItem, prods *productionSet) []lrItem {
	items := make([]lrItem, len(kernel))
	copy(items, kernel)
	expanded := map[symbol.Symbol]struct{}{}
	for i := 0; i < len(items); i++ {
		sym := items[i].dotted()
		if !sym.IsNonTerminal() {
			continue
		}
		if _, ok := expanded[sym]; ok {
			continue
		}
		expanded[sym] = struct{}{}
		for _, p := range prods.alternatives(sym) {
			items = append(items, lrItem{prod: p})
		}
	}
	return items
}
