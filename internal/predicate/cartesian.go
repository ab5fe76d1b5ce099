package predicate

// multiply pairs every term of the disjunction e with every term in others
// and returns the disjunction of the resulting conjunctions:
//
//	(t1 OR ... OR tn) x {s1 ... sm} = (t1 AND s1) OR (t1 AND s2) OR ... OR (tn AND sm)
//
// Conjunctive operands are spliced into each clause rather than nested, so
// repeated distribution does not deepen the tree. When eFirst is false the
// terms of others lead each clause.
func multiply(e *Or, others []term, eFirst bool) *Or {
	ts := e.terms()
	out := &Or{}
	out.children = make([]Node, 0, len(ts)*len(others))
	for _, t := range ts {
		for _, s := range others {
			clause := &And{}
			if eFirst {
				clause.conjoin(t)
				clause.conjoin(s)
			} else {
				clause.conjoin(s)
				clause.conjoin(t)
			}
			out.children = append(out.children, clause)
		}
	}
	return out
}
