package predicate

// Builder accumulates the contents of one predicate node. A builder created
// with Sub belongs to a parent builder and hands its result to the parent
// when built.
//
// Build simplifies as it goes, so repeated nesting (for example one either
// scope inside another) does not leave single-element or same-operator
// chains behind:
//
//  1. A top-level builder with no leaves of its own and exactly one child
//     takes over that child's operator and contents.
//  2. Children sharing the builder's operator are spliced into it.
//  3. The immutable node is created.
//  4. With a parent, a node of the parent's operator is merged into the
//     parent, a node holding a single element hands that element to the
//     parent, and any other node becomes an ordinary child of the parent.
type Builder struct {
	op     Op
	group  group
	parent *Builder
}

// NewBuilder returns a top-level builder for a node with operator op.
func NewBuilder(op Op) *Builder {
	return &Builder{op: op}
}

// Sub returns a builder whose built node is handed to b.
func (b *Builder) Sub(op Op) *Builder {
	return &Builder{op: op, parent: b}
}

// Op returns the operator of the node being built.
func (b *Builder) Op() Op { return b.op }

// Parent returns the builder b hands its node to, or nil at the top level.
func (b *Builder) Parent() *Builder { return b.parent }

// Empty reports whether nothing has been added to b.
func (b *Builder) Empty() bool { return b.group.empty() }

// Add appends leaf parameters.
func (b *Builder) Add(params ...Parameter) error {
	for _, p := range params {
		if p.column == nil {
			return ErrNilColumn
		}
	}
	b.group.params = append(b.group.params, params...)
	return nil
}

// AddCustom appends custom leaf parameters.
func (b *Builder) AddCustom(params ...CustomParameter) error {
	for _, p := range params {
		if isNil(p) {
			return ErrNilParameter
		}
	}
	b.group.custom = append(b.group.custom, params...)
	return nil
}

// AddChild appends a child node.
func (b *Builder) AddChild(n Node) error {
	if isNil(n) {
		return ErrNilChild
	}
	b.group.children = append(b.group.children, n)
	return nil
}

// Build creates the node. Building a node with no contents is an error.
// When b has a parent the returned node may have been absorbed into the
// parent entirely; it is then only of interest as a record of what b held.
func (b *Builder) Build() (Node, error) {
	op := b.op
	g := b.group.clone()

	if b.parent == nil && len(g.params) == 0 && len(g.custom) == 0 && len(g.children) == 1 {
		only := g.children[0]
		op = only.Op()
		g = only.base().clone()
	}

	g = spliceSameOp(op, g)
	if g.empty() {
		return nil, ErrEmptyPredicate
	}

	n := newNode(op)
	*n.base() = g

	if b.parent != nil {
		b.parent.absorb(n)
	}
	return n, nil
}

// spliceSameOp merges every child whose operator is op into g, so that no
// child shares its parent's operator.
func spliceSameOp(op Op, g group) group {
	if len(g.children) == 0 {
		return g
	}
	children := g.children
	g.clearChildren()
	for _, c := range children {
		if c.Op() == op {
			g.concat(c.base())
			continue
		}
		g.children = append(g.children, c)
	}
	return g
}

// absorb takes n into b, skipping the wrapper node where it adds nothing.
func (b *Builder) absorb(n Node) {
	g := n.base()
	switch {
	case n.Op() == b.op:
		b.group.concat(g)
	case n.Len() == 1 && len(g.params) == 1:
		b.group.params = append(b.group.params, g.params[0])
	case n.Len() == 1 && len(g.custom) == 1:
		b.group.custom = append(b.group.custom, g.custom[0])
	case n.Len() == 1:
		b.group.children = append(b.group.children, g.children[0])
	default:
		b.group.children = append(b.group.children, n)
	}
}
