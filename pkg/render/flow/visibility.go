package flow

import (
	"slices"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// BlurScope selects which levels receive the blurred flag while a milestone
// is focused.
type BlurScope string

const (
	// BlurAll blurs every unfocused node. This is the default.
	BlurAll BlurScope = "all"
	// BlurRootOnly blurs only unfocused root milestones.
	BlurRootOnly BlurScope = "root"
)

// State is the immutable expansion, focus, selection and highlight snapshot
// a compilation pass reads. The zero value is a fully collapsed, unfocused
// timeline.
type State struct {
	Expanded      map[string]bool
	FocusedID     string
	SelectedID    string
	HighlightedID string
	BlurScope     BlurScope
}

// IsExpanded reports whether id is in the expansion set.
func (s State) IsExpanded(id string) bool { return s.Expanded[id] }

// WithExpanded returns a copy of s with ids added to the expansion set.
// The receiver's map is never modified.
func (s State) WithExpanded(ids ...string) State {
	next := make(map[string]bool, len(s.Expanded)+len(ids))
	for id, v := range s.Expanded {
		if v {
			next[id] = true
		}
	}
	for _, id := range ids {
		next[id] = true
	}
	s.Expanded = next
	return s
}

// Toggle returns a copy of s with id flipped in the expansion set.
func (s State) Toggle(id string) State {
	expanded := !s.IsExpanded(id)
	next := s.WithExpanded()
	if expanded {
		next.Expanded[id] = true
	} else {
		delete(next.Expanded, id)
	}
	return next
}

// ExpandedIDs returns the expansion set as a sorted slice.
func (s State) ExpandedIDs() []string {
	ids := make([]string, 0, len(s.Expanded))
	for id, v := range s.Expanded {
		if v {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Visibility holds the per-node display flags.
type Visibility struct {
	Focused     bool `json:"isFocused"`
	Blurred     bool `json:"isBlurred"`
	Selected    bool `json:"isSelected"`
	Highlighted bool `json:"isHighlighted"`
	Completed   bool `json:"isCompleted"`
	Ongoing     bool `json:"isOngoing"`
}

// Resolve computes the visibility flags of n at level from the state
// snapshot. It depends only on ids, the node's span and the blur scope.
func Resolve(n *timeline.Node, level int, s State) Visibility {
	v := Visibility{
		Focused:     s.FocusedID != "" && n.ID == s.FocusedID,
		Selected:    s.SelectedID != "" && n.ID == s.SelectedID,
		Highlighted: s.HighlightedID != "" && n.ID == s.HighlightedID,
		Completed:   n.Span.HasEnd(),
	}
	v.Ongoing = !v.Completed
	if s.FocusedID != "" && !v.Focused {
		v.Blurred = s.BlurScope != BlurRootOnly || level == 0
	}
	return v
}
