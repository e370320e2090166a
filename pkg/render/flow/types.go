package flow

import (
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/timeline"
)

// AffordanceKind identifies a synthetic insertion node.
type AffordanceKind string

const (
	AffordanceTimelineStart AffordanceKind = "timelineStart"
	AffordanceTimelineEnd   AffordanceKind = "timelineEnd"
	AffordanceLeafChild     AffordanceKind = "leafChild"
	AffordanceEmptyStart    AffordanceKind = "emptyTimelineStart"
)

// EdgeKind classifies a connection.
type EdgeKind string

const (
	// EdgeSibling links chronologically adjacent milestones of one group.
	EdgeSibling EdgeKind = "sibling"
	// EdgeParentChild links an owner to the first milestone of its child group.
	EdgeParentChild EdgeKind = "parentChild"
	// EdgeInsertion links a milestone to an affordance.
	EdgeInsertion EdgeKind = "insertion"
)

// Handles reports which anchor sides of a node are active. Top and Bottom
// are the branch sides (parent above, children below); Left and Right are
// the timeline sides. Renderers rotate them for vertical layouts.
type Handles struct {
	Top    bool `json:"hasTop"`
	Bottom bool `json:"hasBottom"`
	Left   bool `json:"hasLeft"`
	Right  bool `json:"hasRight"`
}

// PositionedNode is a milestone placed in layout space.
type PositionedNode struct {
	ID         string
	ParentID   string
	Category   timeline.Category
	Title      string
	Span       timeline.Span
	Meta       timeline.Meta
	Position   position.Position
	Level      int
	Visibility Visibility
	Handles    Handles

	// HasChildren reports declared children, independent of expansion.
	HasChildren bool
	// Expanded reports whether the child group was compiled into the graph.
	Expanded bool
	// ChildCount is the number of declared children.
	ChildCount int
}

// Ref returns the insertion reference of the node.
func (n PositionedNode) Ref() timeline.NodeRef {
	return timeline.NodeRef{ID: n.ID, Title: n.Title, Type: n.Category}
}

// Affordance is a synthetic node marking a place a milestone may be inserted.
// It is never persisted.
type Affordance struct {
	ID        string
	Kind      AffordanceKind
	Position  position.Position
	Level     int
	AnchorID  string // milestone the affordance is attached to; empty for the empty state
	Insertion Insertion
}

// Edge is a directed connection between two graph ids. Insertion is nil
// only for edges that carry no insertion meaning.
type Edge struct {
	ID        string
	Source    string
	Target    string
	Kind      EdgeKind
	Insertion Insertion
}

// Graph is the output of one compilation pass.
type Graph struct {
	Nodes       []PositionedNode
	Affordances []Affordance
	Edges       []Edge
	Orientation position.Orientation
}

// Node returns the positioned node with the given id.
func (g Graph) Node(id string) (PositionedNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// AffordancesOf returns the affordances of the given kind, in output order.
func (g Graph) AffordancesOf(kind AffordanceKind) []Affordance {
	var out []Affordance
	for _, a := range g.Affordances {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// EdgesOf returns the edges of the given kind, in output order.
func (g Graph) EdgesOf(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes a compiled graph.
type Stats struct {
	Nodes       int
	Affordances int
	Edges       int
	MaxLevel    int
}

// Stats returns element counts, used for logging.
func (g Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Affordances: len(g.Affordances), Edges: len(g.Edges)}
	for _, n := range g.Nodes {
		s.MaxLevel = max(s.MaxLevel, n.Level)
	}
	return s
}

// Bounds returns the bounding box of every node and affordance, using the
// configured box sizes. An empty graph yields a zero box at the origin.
func (g Graph) Bounds(cfg position.Config) (minP, maxP position.Position) {
	first := true
	grow := func(p position.Position, w, h float64) {
		if first {
			minP, maxP = p, position.Position{X: p.X + w, Y: p.Y + h}
			first = false
			return
		}
		minP.X, minP.Y = min(minP.X, p.X), min(minP.Y, p.Y)
		maxP.X, maxP.Y = max(maxP.X, p.X+w), max(maxP.Y, p.Y+h)
	}
	for _, n := range g.Nodes {
		grow(n.Position, cfg.NodeWidth, cfg.NodeHeight)
	}
	for _, a := range g.Affordances {
		grow(a.Position, cfg.AffordanceSize, cfg.AffordanceSize)
	}
	return minP, maxP
}
