package grammar

// setSLR1LookAheads uses FOLLOW(A) as the look-ahead symbols of every reducible item `A → α・`.
func (a *lrAutomaton) setSLR1LookAheads(follow followSet) {
	for _, s := range a.states {
		for _, it := range s.reducible {
			s.lookAheadOf(it).merge(follow[it.prod.lhs])
		}
	}
}
