package flow

import (
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// Affordance ids. Each kind has its own prefix, and the root group's
// boundaries carry no node id, so no two affordances can share an id.
const (
	affordanceEmptyStartID   = "affordance:empty-start"
	affordanceRootStartID    = "affordance:root-start"
	affordanceRootEndID      = "affordance:root-end"
	affordanceLeafPrefix     = "affordance:leaf:"
	affordanceChildEndPrefix = "affordance:child-end:"
)

// Compile lays out a forest and synthesizes its insertion affordances.
//
// Every sibling group is sorted chronologically and positioned; each node
// gets a sibling edge from its predecessor, the first node of a child group
// gets a parent-child edge from its owner, and nodes without a compiled
// child group get a leaf affordance. Root groups are bounded by a start and
// an end affordance, child groups by an end affordance that adds another
// child of the owner. Expanded nodes recurse into their children.
//
// Compile is pure: identical inputs yield an identical graph. An empty
// forest yields a single emptyTimelineStart affordance at the origin.
func Compile(roots []*timeline.Node, cfg position.Config, state State) Graph {
	g := Graph{Orientation: cfg.Orientation}
	if len(roots) == 0 {
		g.Affordances = []Affordance{{
			ID:        affordanceEmptyStartID,
			Kind:      AffordanceEmptyStart,
			Position:  position.Position{X: cfg.StartX, Y: cfg.StartY},
			Insertion: EmptyTimeline{},
		}}
		return g
	}

	c := &compiler{cfg: cfg, state: state, g: &g}
	c.group(roots, nil, 0)
	return g
}

// CompileForest compiles the output of [transform.Normalize].
func CompileForest(f *transform.Forest, cfg position.Config, state State) Graph {
	if f.IsEmpty() {
		return Compile(nil, cfg, state)
	}
	return Compile(f.Roots, cfg, state)
}

type compiler struct {
	cfg   position.Config
	state State
	g     *Graph
}

// group compiles one sibling group. owner is nil for the root group.
func (c *compiler) group(nodes []*timeline.Node, owner *PositionedNode, level int) {
	sorted := transform.SortSiblings(nodes)

	var anchor *position.Position
	if owner != nil {
		anchor = &owner.Position
	}
	positions := position.Compute(len(sorted), c.cfg, anchor, level)

	var prev *PositionedNode
	var placed []PositionedNode
	for i, n := range sorted {
		pn := c.place(n, positions[i], level, i, owner)
		c.g.Nodes = append(c.g.Nodes, pn)
		ref := pn.Ref()

		if !pn.Expanded {
			c.leaf(pn)
		}
		if prev != nil {
			c.edge(EdgeSibling, prev.ID, pn.ID, Between{Parent: prev.Ref(), Target: ref})
		}
		if owner != nil && i == 0 {
			c.edge(EdgeParentChild, owner.ID, pn.ID, Branch{Parent: owner.Ref(), Target: ref})
		}
		if pn.Expanded {
			c.group(n.Children, &pn, level+1)
		}

		placed = append(placed, pn)
		prev = &pn
	}

	c.boundaries(placed, owner, level)
}

func (c *compiler) place(n *timeline.Node, p position.Position, level, index int, owner *PositionedNode) PositionedNode {
	cat := n.Category
	if !cat.Valid() {
		cat = timeline.InferCategory("", n.Meta)
	}
	return PositionedNode{
		ID:         n.ID,
		ParentID:   n.ParentID,
		Category:   cat,
		Title:      n.Title,
		Span:       n.Span,
		Meta:       n.Meta,
		Position:   p,
		Level:      level,
		Visibility: Resolve(n, level, c.state),
		Handles: Handles{
			Top:    owner != nil,
			Bottom: n.HasChildren(),
			Left:   index > 0 || owner == nil,
			Right:  true,
		},
		HasChildren: n.HasChildren(),
		Expanded:    n.HasChildren() && c.state.IsExpanded(n.ID),
		ChildCount:  len(n.Children),
	}
}

// leaf emits the "add child" affordance of a node without a compiled child
// group.
func (c *compiler) leaf(n PositionedNode) {
	a := Affordance{
		ID:        affordanceLeafPrefix + n.ID,
		Kind:      AffordanceLeafChild,
		Position:  position.LeafSlot(n.Position, c.cfg),
		Level:     n.Level + 1,
		AnchorID:  n.ID,
		Insertion: Child{Parent: n.Ref()},
	}
	c.g.Affordances = append(c.g.Affordances, a)
	c.edge(EdgeInsertion, n.ID, a.ID, a.Insertion)
}

func (c *compiler) boundaries(placed []PositionedNode, owner *PositionedNode, level int) {
	if len(placed) == 0 {
		return
	}
	first, last := placed[0], placed[len(placed)-1]

	if owner == nil {
		start := Affordance{
			ID:        affordanceRootStartID,
			Kind:      AffordanceTimelineStart,
			Position:  position.BoundaryBefore(first.Position, c.cfg),
			Level:     level,
			AnchorID:  first.ID,
			Insertion: TimelineStart{Target: first.Ref()},
		}
		end := Affordance{
			ID:        affordanceRootEndID,
			Kind:      AffordanceTimelineEnd,
			Position:  position.BoundaryAfter(last.Position, c.cfg),
			Level:     level,
			AnchorID:  last.ID,
			Insertion: TimelineEnd{Parent: last.Ref()},
		}
		c.g.Affordances = append(c.g.Affordances, start, end)
		c.edge(EdgeInsertion, start.ID, first.ID, start.Insertion)
		c.edge(EdgeInsertion, last.ID, end.ID, end.Insertion)
		return
	}

	// Appending to a child timeline adds another child of the owner.
	end := Affordance{
		ID:        affordanceChildEndPrefix + owner.ID,
		Kind:      AffordanceTimelineEnd,
		Position:  position.BoundaryAfter(last.Position, c.cfg),
		Level:     level,
		AnchorID:  last.ID,
		Insertion: Child{Parent: owner.Ref()},
	}
	c.g.Affordances = append(c.g.Affordances, end)
	c.edge(EdgeInsertion, last.ID, end.ID, end.Insertion)
}

func (c *compiler) edge(kind EdgeKind, src, dst string, ins Insertion) {
	c.g.Edges = append(c.g.Edges, Edge{
		ID:        string(kind) + ":" + src + "->" + dst,
		Source:    src,
		Target:    dst,
		Kind:      kind,
		Insertion: ins,
	})
}
