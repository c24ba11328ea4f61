package grammar

import (
	"strconv"
	"strings"

	"github.com/tern-lang/tern/grammar/symbol"
)

type productionNum uint16

const (
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

type astActionEntry struct {
	position  int
	expansion bool
}

// production is one alternative of a non-terminal together with everything the builder attached to it.
type production struct {
	num productionNum
	lhs symbol.Symbol
	rhs []symbol.Symbol

	// recover is true when reducing the production ends the error state.
	recover bool

	// ast is nil when the production keeps all of its children in the AST.
	ast []*astActionEntry

	// def is the definition the production was made from. The augmented start production has none.
	def *ProductionBuilder
}

// signature identifies the production by its symbols.
func (p *production) signature() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(p.lhs)))
	for _, sym := range p.rhs {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(sym)))
	}
	return b.String()
}

// productionSet numbers productions in the order they are added. The augmented start production always gets
// number 1, and the order of the rest decides reduce/reduce conflicts.
type productionSet struct {
	// prods is indexed by production number. Index 0 is unused.
	prods []*production
	byLHS map[symbol.Symbol][]*production
	known map[string]struct{}
}

func newProductionSet() *productionSet {
	return &productionSet{
		prods: make([]*production, productionNumMin),
		byLHS: map[symbol.Symbol][]*production{},
		known: map[string]struct{}{},
	}
}

// add numbers `p` and adds it. It returns false when the set already has a production with the same symbols.
func (ps *productionSet) add(p *production) bool {
	sig := p.signature()
	if _, ok := ps.known[sig]; ok {
		return false
	}
	ps.known[sig] = struct{}{}

	if p.lhs.IsStart() {
		p.num = productionNumStart
		ps.prods[productionNumStart] = p
	} else {
		p.num = productionNum(len(ps.prods))
		ps.prods = append(ps.prods, p)
	}
	ps.byLHS[p.lhs] = append(ps.byLHS[p.lhs], p)
	return true
}

func (ps *productionSet) alternatives(lhs symbol.Symbol) []*production {
	return ps.byLHS[lhs]
}

func (ps *productionSet) byNum(num productionNum) *production {
	if int(num) >= len(ps.prods) {
		return nil
	}
	return ps.prods[num]
}

// all returns the productions in number order, starting with the augmented start production.
func (ps *productionSet) all() []*production {
	return ps.prods[productionNumStart:]
}

// count returns the number of productions including the augmented start production.
func (ps *productionSet) count() int {
	return len(ps.prods) - 1
}
