package grammar

import (
	"testing"
)

func TestSetSLR1LookAheads(t *testing.T) {
	gram := buildTestGrammar(t, newExprBuilder())
	a := genTestAutomaton(t, gram)
	a.setSLR1LookAheads(genFollowSet(gram.productionSet, genFirstSet(gram.productionSet)))

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
			lookAhead: map[string][]string{
				"expr' → expr・": {"<eof>"},
			},
		},
		{
			kernel:    s2,
			next:      map[string][]string{"mul": s7},
			reducible: []string{"expr → term・"},
			lookAhead: map[string][]string{
				"expr → term・": {"add", "r_paren", "<eof>"},
			},
		},
		{
			kernel:    s3,
			reducible: []string{"term → factor・"},
			lookAhead: map[string][]string{
				"term → factor・": {"add", "mul", "r_paren", "<eof>"},
			},
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
			lookAhead: map[string][]string{
				"factor → id・": {"add", "mul", "r_paren", "<eof>"},
			},
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
			lookAhead: map[string][]string{
				"expr → expr add term・": {"add", "r_paren", "<eof>"},
			},
		},
		{
			kernel:    s10,
			reducible: []string{"term → term mul factor・"},
			lookAhead: map[string][]string{
				"term → term mul factor・": {"add", "mul", "r_paren", "<eof>"},
			},
		},
		{
			kernel:    s11,
			reducible: []string{"factor → l_paren expr r_paren・"},
			lookAhead: map[string][]string{
				"factor → l_paren expr r_paren・": {"add", "mul", "r_paren", "<eof>"},
			},
		},
	})
}
