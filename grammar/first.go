package grammar

import (
	"sort"

	"github.com/tern-lang/tern/grammar/symbol"
)

type symbolSet map[symbol.Symbol]struct{}

func (s symbolSet) add(sym symbol.Symbol) bool {
	if _, ok := s[sym]; ok {
		return false
	}
	s[sym] = struct{}{}
	return true
}

func (s symbolSet) merge(o symbolSet) bool {
	changed := false
	for sym := range o {
		if s.add(sym) {
			changed = true
		}
	}
	return changed
}

func (s symbolSet) has(sym symbol.Symbol) bool {
	_, ok := s[sym]
	return ok
}

func (s symbolSet) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s))
	for sym := range s {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// firstSet holds FIRST of every non-terminal and whether the non-terminal derives ε.
type firstSet struct {
	terms    map[symbol.Symbol]symbolSet
	nullable map[symbol.Symbol]bool
}

func genFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		terms:    map[symbol.Symbol]symbolSet{},
		nullable: map[symbol.Symbol]bool{},
	}
	for _, p := range prods.all() {
		if _, ok := fst.terms[p.lhs]; !ok {
			fst.terms[p.lhs] = symbolSet{}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range prods.all() {
			terms, nullable := fst.ofSequence(p.rhs)
			if fst.terms[p.lhs].merge(terms) {
				changed = true
			}
			if nullable && !fst.nullable[p.lhs] {
				fst.nullable[p.lhs] = true
				changed = true
			}
		}
	}

	return fst
}

// ofSequence returns FIRST(α) of a symbol sequence α and whether α derives ε. The returned set is a new
// one the caller may modify.
func (fst *firstSet) ofSequence(syms []symbol.Symbol) (symbolSet, bool) {
	terms := symbolSet{}
	for _, sym := range syms {
		if sym.IsTerminal() {
			terms.add(sym)
			return terms, false
		}
		terms.merge(fst.terms[sym])
		if !fst.nullable[sym] {
			return terms, false
		}
	}
	return terms, true
}
