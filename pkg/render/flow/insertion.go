package flow

import (
	"errors"
	"fmt"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// ErrInvalidInsertion is returned when an insertion contract is missing a
// reference its point requires, names an unknown point, or cannot be placed.
var ErrInvalidInsertion = errors.New("invalid insertion context")

// Point is the semantic location tag of an insertion.
type Point string

const (
	PointTimelineStart Point = "timeline-start"
	PointTimelineEnd   Point = "timeline-end"
	PointBetween       Point = "timeline-between"
	PointBranch        Point = "branch"
	PointChild         Point = "child"
	PointBefore        Point = "before"
	PointAfter         Point = "after"
)

// Insertion describes where a new milestone would attach. It is a closed
// set: each variant carries exactly the references its point needs.
type Insertion interface {
	Point() Point
	isInsertion()
}

// TimelineStart inserts ahead of the first root milestone.
type TimelineStart struct{ Target timeline.NodeRef }

// EmptyTimeline inserts the first milestone of an empty timeline.
type EmptyTimeline struct{}

// TimelineEnd appends after the last root milestone (Parent).
type TimelineEnd struct{ Parent timeline.NodeRef }

// Between inserts between two adjacent siblings: Parent precedes, Target follows.
type Between struct{ Parent, Target timeline.NodeRef }

// Branch inserts on the branch from Parent to its first visible child Target.
type Branch struct{ Parent, Target timeline.NodeRef }

// Child adds a milestone owned by Parent.
type Child struct{ Parent timeline.NodeRef }

// Before inserts directly ahead of Target in its sibling group.
type Before struct{ Target timeline.NodeRef }

// After inserts directly after Target in its sibling group.
type After struct{ Target timeline.NodeRef }

func (TimelineStart) Point() Point { return PointTimelineStart }
func (EmptyTimeline) Point() Point { return PointTimelineStart }
func (TimelineEnd) Point() Point   { return PointTimelineEnd }
func (Between) Point() Point       { return PointBetween }
func (Branch) Point() Point        { return PointBranch }
func (Child) Point() Point         { return PointChild }
func (Before) Point() Point        { return PointBefore }
func (After) Point() Point         { return PointAfter }

func (TimelineStart) isInsertion() {}
func (EmptyTimeline) isInsertion() {}
func (TimelineEnd) isInsertion()   {}
func (Between) isInsertion()       {}
func (Branch) isInsertion()        {}
func (Child) isInsertion()         {}
func (Before) isInsertion()        {}
func (After) isInsertion()         {}

// Contract is the wire form of an insertion, as forwarded to the
// node-creation collaborator.
type Contract struct {
	InsertionPoint Point             `json:"insertionPoint"`
	ParentNode     *timeline.NodeRef `json:"parentNode,omitempty"`
	TargetNode     *timeline.NodeRef `json:"targetNode,omitempty"`
}

// Wire converts an insertion to its contract. A nil insertion yields nil.
func Wire(ins Insertion) *Contract {
	ref := func(r timeline.NodeRef) *timeline.NodeRef { return &r }

	switch v := ins.(type) {
	case TimelineStart:
		return &Contract{InsertionPoint: PointTimelineStart, TargetNode: ref(v.Target)}
	case EmptyTimeline:
		return &Contract{InsertionPoint: PointTimelineStart}
	case TimelineEnd:
		return &Contract{InsertionPoint: PointTimelineEnd, ParentNode: ref(v.Parent)}
	case Between:
		return &Contract{InsertionPoint: PointBetween, ParentNode: ref(v.Parent), TargetNode: ref(v.Target)}
	case Branch:
		return &Contract{InsertionPoint: PointBranch, ParentNode: ref(v.Parent), TargetNode: ref(v.Target)}
	case Child:
		return &Contract{InsertionPoint: PointChild, ParentNode: ref(v.Parent)}
	case Before:
		return &Contract{InsertionPoint: PointBefore, TargetNode: ref(v.Target)}
	case After:
		return &Contract{InsertionPoint: PointAfter, TargetNode: ref(v.Target)}
	}
	return nil
}

// ParseContract validates a wire contract and returns the matching variant.
// A timeline-start contract without a target is the empty-timeline variant.
func ParseContract(c Contract) (Insertion, error) {
	parent, target := c.ParentNode, c.TargetNode
	need := func(r *timeline.NodeRef, role string) error {
		if r == nil || r.ID == "" {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidInsertion, c.InsertionPoint, role)
		}
		return nil
	}

	switch c.InsertionPoint {
	case PointTimelineStart:
		if target == nil {
			return EmptyTimeline{}, nil
		}
		if err := need(target, "targetNode"); err != nil {
			return nil, err
		}
		return TimelineStart{Target: *target}, nil
	case PointTimelineEnd:
		if err := need(parent, "parentNode"); err != nil {
			return nil, err
		}
		return TimelineEnd{Parent: *parent}, nil
	case PointBetween, PointBranch:
		if err := need(parent, "parentNode"); err != nil {
			return nil, err
		}
		if err := need(target, "targetNode"); err != nil {
			return nil, err
		}
		if c.InsertionPoint == PointBranch {
			return Branch{Parent: *parent, Target: *target}, nil
		}
		return Between{Parent: *parent, Target: *target}, nil
	case PointChild:
		if err := need(parent, "parentNode"); err != nil {
			return nil, err
		}
		return Child{Parent: *parent}, nil
	case PointBefore, PointAfter:
		if err := need(target, "targetNode"); err != nil {
			return nil, err
		}
		if c.InsertionPoint == PointBefore {
			return Before{Target: *target}, nil
		}
		return After{Target: *target}, nil
	}
	return nil, fmt.Errorf("%w: unknown insertion point %q", ErrInvalidInsertion, c.InsertionPoint)
}

// ParentLookup resolves the parent id of an existing milestone. found is
// false when the milestone does not exist; an empty parentID means a root.
type ParentLookup func(id string) (parentID string, found bool)

// ForestLookup returns a [ParentLookup] backed by a normalized forest.
func ForestLookup(roots []*timeline.Node) ParentLookup {
	parents := make(map[string]string)
	timeline.Walk(roots, func(n *timeline.Node, _ int) bool {
		parents[n.ID] = n.ParentID
		return true
	})
	return func(id string) (string, bool) {
		p, ok := parents[id]
		return p, ok
	}
}

// Placement returns the parent id a new milestone gets when created at ins.
// Root placements return "". Referenced milestones must exist.
func Placement(ins Insertion, lookup ParentLookup) (string, error) {
	siblingOf := func(ref timeline.NodeRef) (string, error) {
		parent, ok := lookup(ref.ID)
		if !ok {
			return "", fmt.Errorf("%w: node %s not found", ErrInvalidInsertion, ref.ID)
		}
		return parent, nil
	}
	childOf := func(ref timeline.NodeRef) (string, error) {
		if _, ok := lookup(ref.ID); !ok {
			return "", fmt.Errorf("%w: node %s not found", ErrInvalidInsertion, ref.ID)
		}
		return ref.ID, nil
	}

	switch v := ins.(type) {
	case EmptyTimeline:
		return "", nil
	case TimelineStart:
		return siblingOf(v.Target)
	case TimelineEnd:
		return siblingOf(v.Parent)
	case Between:
		return siblingOf(v.Target)
	case Before:
		return siblingOf(v.Target)
	case After:
		return siblingOf(v.Target)
	case Branch:
		return childOf(v.Parent)
	case Child:
		return childOf(v.Parent)
	}
	return "", fmt.Errorf("%w: no insertion given", ErrInvalidInsertion)
}
