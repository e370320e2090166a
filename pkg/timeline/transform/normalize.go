package transform

import (
	"fmt"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// Forest is the normalizer output.
type Forest struct {
	// Roots holds the top-level milestones in input order.
	Roots []*timeline.Node

	// Orphans lists ids of records whose declared parent was not present.
	// They appear in Roots as well.
	Orphans []string

	// Misplaced lists ids of records linked under a parent whose category
	// does not own children (a project under a project, say). They are kept
	// where the input put them.
	Misplaced []string

	// NodeCount is the total number of nodes across all levels.
	NodeCount int
}

// IsEmpty reports whether the forest has no milestones.
func (f *Forest) IsEmpty() bool { return f == nil || len(f.Roots) == 0 }

// Normalize builds a forest from flat or nested records.
//
// Every record resolves to exactly one node. It fails with
// [timeline.ErrInvalidNodeID] for empty ids, [timeline.ErrDuplicateNodeID]
// when two records share an id and [timeline.ErrCyclicHierarchy] when a
// parent chain loops. Records whose parent is missing are promoted to roots.
func Normalize(records []timeline.Record) (*Forest, error) {
	flat := Flatten(records)

	nodes := make(map[string]*timeline.Node, len(flat))
	ordered := make([]*timeline.Node, 0, len(flat))
	for i, r := range flat {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: %w", i, timeline.ErrInvalidNodeID)
		}
		if _, dup := nodes[r.ID]; dup {
			return nil, fmt.Errorf("node %s: %w", r.ID, timeline.ErrDuplicateNodeID)
		}
		n := newNode(r)
		n.SetSeq(i)
		nodes[r.ID] = n
		ordered = append(ordered, n)
	}

	if err := checkCycles(ordered, nodes); err != nil {
		return nil, err
	}

	forest := &Forest{NodeCount: len(ordered)}
	for _, n := range ordered {
		if n.IsRoot() {
			forest.Roots = append(forest.Roots, n)
			continue
		}
		parent, ok := nodes[n.ParentID]
		if !ok {
			forest.Orphans = append(forest.Orphans, n.ID)
			n.ParentID = ""
			forest.Roots = append(forest.Roots, n)
			continue
		}
		if !parent.Category.CanOwnChildren() {
			forest.Misplaced = append(forest.Misplaced, n.ID)
		}
		parent.Children = append(parent.Children, n)
	}
	return forest, nil
}

// Flatten expands embedded children depth-first, owner before owned.
// Embedded children without a ParentID take their owner's id.
func Flatten(records []timeline.Record) []timeline.Record {
	var out []timeline.Record
	var visit func(r timeline.Record)
	visit = func(r timeline.Record) {
		children := r.Children
		r.Children = nil
		out = append(out, r)
		for _, c := range children {
			if c.ParentID == "" {
				c.ParentID = r.ID
			}
			visit(c)
		}
	}
	for _, r := range records {
		visit(r)
	}
	return out
}

func newNode(r timeline.Record) *timeline.Node {
	meta := r.Meta
	if meta == nil {
		meta = timeline.Meta{}
	}
	return &timeline.Node{
		ID:       r.ID,
		ParentID: r.ParentID,
		Category: timeline.InferCategory(r.Type, meta),
		Title:    meta.String(timeline.MetaTitle),
		Span:     timeline.SpanFromMeta(meta),
		Meta:     meta,
	}
}

// checkCycles follows parent references from every node. A parent chain
// that revisits a node still on the current path is a cycle.
func checkCycles(ordered []*timeline.Node, nodes map[string]*timeline.Node) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(ordered))
	for _, start := range ordered {
		if color[start.ID] != white {
			continue
		}
		var path []string
		id := start.ID
		for {
			if color[id] == gray {
				return fmt.Errorf("node %s: %w", id, timeline.ErrCyclicHierarchy)
			}
			if color[id] == black {
				break
			}
			color[id] = gray
			path = append(path, id)

			n := nodes[id]
			if n.ParentID == "" {
				break
			}
			if _, ok := nodes[n.ParentID]; !ok {
				break
			}
			id = n.ParentID
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return nil
}
