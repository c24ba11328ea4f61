package grammar

import (
	"sort"
	"strings"
	"testing"

	"github.com/tern-lang/tern/grammar/symbol"
)

// newExprBuilder defines the classic expression grammar.
//
//	expr   → expr add term | term
//	term   → term mul factor | factor
//	factor → l_paren expr r_paren | id
func newExprBuilder() *Builder {
	b := NewBuilder("test")
	b.Production("expr", "expr", "add", "term")
	b.Production("expr", "term")
	b.Production("term", "term", "mul", "factor")
	b.Production("term", "factor")
	b.Production("factor", "l_paren", "expr", "r_paren")
	b.Production("factor", "id")
	b.Literal("add", "+")
	b.Literal("mul", "*")
	b.Literal("l_paren", "(")
	b.Literal("r_paren", ")")
	b.Pattern("id", "[A-Za-z_][0-9A-Za-z_]*")
	return b
}

func buildTestGrammar(t *testing.T, b *Builder) *Grammar {
	t.Helper()

	gram, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return gram
}

func genTestAutomaton(t *testing.T, gram *Grammar) *lrAutomaton {
	t.Helper()

	a, err := genLR0Automaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		t.Fatalf("failed to create a LR0 automaton: %v", err)
	}
	return a
}

func symbolText(t *testing.T, symTab *symbol.Table, sym symbol.Symbol) string {
	t.Helper()

	text, ok := symTab.ToText(sym)
	if !ok {
		t.Fatalf("symbol was not found: %v", sym)
	}
	return text
}

func symbolOf(t *testing.T, symTab *symbol.Table, text string) symbol.Symbol {
	t.Helper()

	sym, ok := symTab.ToSymbol(text)
	if !ok {
		t.Fatalf("symbol was not found: %v", text)
	}
	return sym
}

// productionText spells a production like `expr → expr add term`.
func productionText(t *testing.T, symTab *symbol.Table, p *production) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(symbolText(t, symTab, p.lhs))
	b.WriteString(" →")
	for _, sym := range p.rhs {
		b.WriteString(" ")
		b.WriteString(symbolText(t, symTab, sym))
	}
	return b.String()
}

// itemText spells an item like `expr → expr・add term`.
func itemText(t *testing.T, symTab *symbol.Table, it lrItem) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(symbolText(t, symTab, it.prod.lhs))
	b.WriteString(" →")
	for i, sym := range it.prod.rhs {
		if i == it.dot {
			b.WriteString("・")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(symbolText(t, symTab, sym))
	}
	if it.reducible() {
		b.WriteString("・")
	}
	return b.String()
}

func productionOf(t *testing.T, gram *Grammar, text string) *production {
	t.Helper()

	for _, p := range gram.productionSet.all() {
		if productionText(t, gram.symbolTable, p) == text {
			return p
		}
	}
	t.Fatalf("a production was not found: %v", text)
	return nil
}

func kernelTexts(t *testing.T, symTab *symbol.Table, s *lrState) []string {
	t.Helper()

	texts := make([]string, len(s.kernel))
	for i, it := range s.kernel {
		texts[i] = itemText(t, symTab, it)
	}
	sort.Strings(texts)
	return texts
}

// stateOf looks a state up by the texts of its kernel items.
func stateOf(t *testing.T, gram *Grammar, a *lrAutomaton, kernel ...string) *lrState {
	t.Helper()

	want := make([]string, len(kernel))
	copy(want, kernel)
	sort.Strings(want)
	for _, s := range a.states {
		if strings.Join(kernelTexts(t, gram.symbolTable, s), "\n") == strings.Join(want, "\n") {
			return s
		}
	}
	t.Fatalf("a state was not found; kernel: %v", kernel)
	return nil
}

func symbolTexts(t *testing.T, symTab *symbol.Table, syms symbolSet) []string {
	t.Helper()

	var texts []string
	for _, sym := range syms.sorted() {
		texts = append(texts, symbolText(t, symTab, sym))
	}
	sort.Strings(texts)
	return texts
}

func equalTexts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string{}, a...)
	y := append([]string{}, b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

type expectedState struct {
	kernel []string

	// next maps a symbol to the kernel of the state the transition leads to.
	next map[string][]string

	reducible []string

	// lookAhead maps a reducible item to its look-ahead terminals. It is checked only when it is set.
	lookAhead map[string][]string
}

func testAutomaton(t *testing.T, gram *Grammar, a *lrAutomaton, expected []*expectedState) {
	t.Helper()

	if len(a.states) != len(expected) {
		t.Errorf("unexpected state count; want: %v, got: %v", len(expected), len(a.states))
	}

	symTab := gram.symbolTable
	for _, eState := range expected {
		t.Run(strings.Join(eState.kernel, ", "), func(t *testing.T) {
			s := stateOf(t, gram, a, eState.kernel...)

			if len(s.next) != len(eState.next) {
				t.Errorf("unexpected transition count; want: %v, got: %v", len(eState.next), len(s.next))
			}
			for eSym, eKernel := range eState.next {
				next, ok := s.next[symbolOf(t, symTab, eSym)]
				if !ok {
					t.Fatalf("a transition was not found; symbol: %v", eSym)
				}
				if got := kernelTexts(t, symTab, next); !equalTexts(got, eKernel) {
					t.Fatalf("unexpected next state; symbol: %v, want: %v, got: %v", eSym, eKernel, got)
				}
			}

			var reducible []string
			for _, it := range s.reducible {
				reducible = append(reducible, itemText(t, symTab, it))
			}
			if !equalTexts(reducible, eState.reducible) {
				t.Errorf("unexpected reducible items; want: %v, got: %v", eState.reducible, reducible)
			}

			if eState.lookAhead == nil {
				return
			}
			for _, it := range s.reducible {
				text := itemText(t, symTab, it)
				got := symbolTexts(t, symTab, s.lookAheadOf(it))
				if !equalTexts(got, eState.lookAhead[text]) {
					t.Errorf("unexpected look-ahead symbols; item: %v, want: %v, got: %v", text, eState.lookAhead[text], got)
				}
			}
		})
	}
}
