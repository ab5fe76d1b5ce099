package predicate

// The helpers in this file mutate nodes in place. They are only applied to
// nodes created during normalization, before those nodes are returned.

// term is one operand of an expression: a leaf parameter, a custom leaf
// parameter, or a sub-expression. Exactly one field is set.
type term struct {
	param  *Parameter
	custom CustomParameter
	node   Node
}

// terms lists the operands of g in parameter, custom, child order.
func (g *group) terms() []term {
	out := make([]term, 0, g.Len())
	for i := range g.params {
		out = append(out, term{param: &g.params[i]})
	}
	for _, c := range g.custom {
		out = append(out, term{custom: c})
	}
	for _, c := range g.children {
		out = append(out, term{node: c})
	}
	return out
}

// add appends t to a disjunction. A sub-expression holding one element is
// replaced by that element, and a nested disjunction is merged.
func (g *group) add(t term) {
	switch {
	case t.param != nil:
		g.params = append(g.params, *t.param)
	case t.custom != nil:
		g.custom = append(g.custom, t.custom)
	case t.node.Op() == OpOr:
		g.concat(t.node.base())
	case t.node.Len() == 1:
		for _, inner := range t.node.base().terms() {
			g.add(inner)
		}
	default:
		g.children = append(g.children, t.node)
	}
}

// conjoin appends t to a conjunction. A conjunctive sub-expression is spliced
// in part by part instead of nested.
func (g *group) conjoin(t term) {
	switch {
	case t.param != nil:
		g.params = append(g.params, *t.param)
	case t.custom != nil:
		g.custom = append(g.custom, t.custom)
	case t.node.Op() == OpAnd:
		g.concat(t.node.base())
	default:
		g.children = append(g.children, t.node)
	}
}

// stage copies n into fresh nodes that normalization may mutate.
func stage(n Node) Node {
	g := n.base().clone()
	for i, c := range g.children {
		g.children[i] = stage(c)
	}
	out := newNode(n.Op())
	*out.base() = g
	return out
}

// unstage rebuilds a normalized expression as predicate nodes, applying the
// builder's simplification rules at each level.
func unstage(n Node) (Node, error) {
	g := n.base()
	b := NewBuilder(n.Op())
	b.group.params = g.params
	b.group.custom = g.custom
	for _, c := range g.children {
		child, err := unstage(c)
		if err != nil {
			return nil, err
		}
		b.group.children = append(b.group.children, child)
	}
	return b.Build()
}
