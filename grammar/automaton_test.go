package grammar

import (
	"testing"
)

func TestGenLR0Automaton(t *testing.T) {
	gram := buildTestGrammar(t, newExprBuilder())
	a := genTestAutomaton(t, gram)

	if got := kernelTexts(t, gram.symbolTable, a.states[stateNumInitial]); !equalTexts(got, []string{"expr' →・expr"}) {
		t.Fatalf("unexpected initial state; got: %v", got)
	}

	var (
		s0  = []string{"expr' →・expr"}
		s1  = []string{"expr' → expr・", "expr → expr・add term"}
		s2  = []string{"expr → term・", "term → term・mul factor"}
		s3  = []string{"term → factor・"}
		s4  = []string{"factor → l_paren・expr r_paren"}
		s5  = []string{"factor → id・"}
		s6  = []string{"expr → expr add・term"}
		s7  = []string{"term → term mul・factor"}
		s8  = []string{"expr → expr・add term", "factor → l_paren expr・r_paren"}
		s9  = []string{"expr → expr add term・", "term → term・mul factor"}
		s10 = []string{"term → term mul factor・"}
		s11 = []string{"factor → l_paren expr r_paren・"}
	)
	testAutomaton(t, gram, a, []*expectedState{
		{
			kernel: s0,
			next: map[string][]string{
				"expr":    s1,
				"term":    s2,
				"factor":  s3,
				"l_paren": s4,
				"id":      s5,
			},
		},
		{
			kernel:    s1,
			next:      map[string][]string{"add": s6},
			reducible: []string{"expr' → expr・"},
		},
		{
			kernel:    s2,
			next:      map[string][]string{"mul": s7},
			reducible: []string{"expr → term・"},
		},
		{
			kernel:    s3,
			reducible: []string{"term → factor・"},
		},
		{
			kernel: s4,
			next: map[string][]string{
				"expr":    s8,
				"term":    s2,
				"factor":  s3,
				"l_paren": s4,
				"id":      s5,
			},
		},
		{
			kernel:    s5,
			reducible: []string{"factor → id・"},
		},
		{
			kernel: s6,
			next: map[string][]string{
				"term":    s9,
				"factor":  s3,
				"l_paren": s4,
				"id":      s5,
			},
		},
		{
			kernel: s7,
			next: map[string][]string{
				"factor":  s10,
				"l_paren": s4,
				"id":      s5,
			},
		},
		{
			kernel: s8,
			next: map[string][]string{
				"add":     s6,
				"r_paren": s11,
			},
		},
		{
			kernel:    s9,
			next:      map[string][]string{"mul": s7},
			reducible: []string{"expr → expr add term・"},
		},
		{
			kernel:    s10,
			reducible: []string{"term → term mul factor・"},
		},
		{
			kernel:    s11,
			reducible: []string{"factor → l_paren expr r_paren・"},
		},
	})
}

func TestGenLR0AutomatonNumbersStatesInDiscoveryOrder(t *testing.T) {
	gram := buildTestGrammar(t, newExprBuilder())
	a := genTestAutomaton(t, gram)
	for i, s := range a.states {
		if s.num.Int() != i {
			t.Fatalf("unexpected state number; want: %v, got: %v", i, s.num)
		}
	}

	b := genTestAutomaton(t, buildTestGrammar(t, newExprBuilder()))
	for i, s := range a.states {
		if kernelSignature(s.kernel) != kernelSignature(b.states[i].kernel) {
			t.Fatalf("state numbering is unstable; state: %v", i)
		}
	}
}

func TestLR0AutomatonContainingEmptyProduction(t *testing.T) {
	b := NewBuilder("test")
	b.Production("s", "foo", "bar")
	b.Production("foo")
	b.Production("bar", "b")
	b.Production("bar")
	b.Literal("b", "bar")
	gram := buildTestGrammar(t, b)
	a := genTestAutomaton(t, gram)

	var (
		s0 = []string{"s' →・s"}
		s1 = []string{"s' → s・"}
		s2 = []string{"s → foo・bar"}
		s3 = []string{"s → foo bar・"}
		s4 = []string{"bar → b・"}
	)
	testAutomaton(t, gram, a, []*expectedState{
		{
			kernel: s0,
			next: map[string][]string{
				"s":   s1,
				"foo": s2,
			},
			reducible: []string{"foo →・"},
		},
		{
			kernel:    s1,
			reducible: []string{"s' → s・"},
		},
		{
			kernel: s2,
			next: map[string][]string{
				"bar": s3,
				"b":   s4,
			},
			reducible: []string{"bar →・"},
		},
		{
			kernel:    s3,
			reducible: []string{"s → foo bar・"},
		},
		{
			kernel:    s4,
			reducible: []string{"bar → b・"},
		},
	})
}

func TestLR0AutomatonMarksErrorHandlingStates(t *testing.T) {
	b := NewBuilder("test")
	b.Production("stmts", "stmts", "stmt")
	b.Production("stmts", "stmt")
	b.Production("stmt", "id", "semi")
	b.Production("stmt", "error", "semi").Recover()
	b.Literal("semi", ";")
	b.Pattern("id", "[a-z]+")
	gram := buildTestGrammar(t, b)
	a := genTestAutomaton(t, gram)

	tests := []struct {
		kernel   []string
		trapper  bool
		recovers bool
	}{
		{
			// stmt →・error semi is in the closure of the initial state.
			kernel:  []string{"stmts' →・stmts"},
			trapper: true,
		},
		{
			kernel:  []string{"stmts' → stmts・", "stmts → stmts・stmt"},
			trapper: true,
		},
		{
			kernel: []string{"stmt → error・semi"},
		},
		{
			kernel:   []string{"stmt → error semi・"},
			recovers: true,
		},
		{
			kernel: []string{"stmt → id semi・"},
		},
	}
	for _, tt := range tests {
		s := stateOf(t, gram, a, tt.kernel...)
		if s.trapsError != tt.trapper {
			t.Errorf("unexpected error trapper flag; state: %v, want: %v, got: %v", s.num, tt.trapper, s.trapsError)
		}
		if s.recovers != tt.recovers {
			t.Errorf("unexpected recover flag; state: %v, want: %v, got: %v", s.num, tt.recovers, s.recovers)
		}
	}
}
