package timeline

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidNodeID is returned when a record has an empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when two records share an identifier.
	// Callers must namespace or deduplicate ids upstream; the normalizer
	// never guesses which record to keep.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrCyclicHierarchy is returned when a parent chain loops back onto
	// itself, including a record that names itself as its parent.
	ErrCyclicHierarchy = errors.New("cyclic parent hierarchy")
)

// Meta is the opaque payload of a milestone. The layout engine only reads
// the title, the span fields and the category discriminants.
type Meta map[string]any

// String returns the value at key if it is a non-empty string.
func (m Meta) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// Has reports whether key is present with a non-nil value.
func (m Meta) Has(key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key]
	return ok && v != nil
}

// Clone returns a shallow copy. Cloning a nil Meta yields an empty map.
func (m Meta) Clone() Meta {
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Payload keys read by the engine.
const (
	MetaTitle     = "title"
	MetaStartDate = "startDate"
	MetaEndDate   = "endDate"
	MetaStart     = "start" // legacy
	MetaEnd       = "end"   // legacy
)

// Span is the temporal extent of a milestone, kept as the raw partial-date
// strings. An empty End means the milestone is ongoing.
type Span struct {
	Start string `json:"start,omitempty" bson:"start,omitempty"`
	End   string `json:"end,omitempty" bson:"end,omitempty"`
}

// SpanFromMeta extracts the span from a payload, preferring startDate/endDate
// over the legacy start/end keys.
func SpanFromMeta(m Meta) Span {
	s := Span{Start: m.String(MetaStartDate), End: m.String(MetaEndDate)}
	if s.Start == "" {
		s.Start = m.String(MetaStart)
	}
	if s.End == "" {
		s.End = m.String(MetaEnd)
	}
	return s
}

// HasEnd reports whether the span has a concrete end. "present" and its
// synonyms count as no end.
func (s Span) HasEnd() bool {
	return s.End != "" && !IsOpenDate(s.End)
}

// Record is a single domain record as delivered by the persistence layer.
//
// Children is an optional embedded collection of owned records (a job's
// projects, for example). Embedded children without a ParentID are attached
// to their owner during normalization.
type Record struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parentId,omitempty"`
	Type     string   `json:"type,omitempty"`
	Meta     Meta     `json:"meta,omitempty"`
	Children []Record `json:"children,omitempty"`
}

// Collections groups records by domain category, the way the journey
// screens fetch them. Use [Collections.Records] to flatten.
type Collections struct {
	Jobs              []Record `json:"jobs,omitempty"`
	Education         []Record `json:"education,omitempty"`
	Projects          []Record `json:"projects,omitempty"`
	Events            []Record `json:"events,omitempty"`
	Actions           []Record `json:"actions,omitempty"`
	CareerTransitions []Record `json:"careerTransitions,omitempty"`
}

// Records flattens the collections in a fixed order (jobs, education,
// projects, events, actions, career transitions). Records without a Type are
// stamped with their collection's category.
func (c Collections) Records() []Record {
	groups := []struct {
		cat  Category
		recs []Record
	}{
		{CategoryJob, c.Jobs},
		{CategoryEducation, c.Education},
		{CategoryProject, c.Projects},
		{CategoryEvent, c.Events},
		{CategoryAction, c.Actions},
		{CategoryCareerTransition, c.CareerTransitions},
	}

	var out []Record
	for _, g := range groups {
		for _, r := range g.recs {
			if r.Type == "" {
				r.Type = string(g.cat)
			}
			out = append(out, r)
		}
	}
	return out
}

// Node is one milestone in the normalized forest.
//
// Children holds owned milestones in input order. The zero value is not
// usable; nodes are built by the normalizer or [NewNode].
type Node struct {
	ID       string
	ParentID string
	Category Category
	Title    string
	Span     Span
	Meta     Meta
	Children []*Node

	// seq is the position of the record in the normalizer input and is the
	// final tie-breaker when sorting siblings.
	seq int
}

// NewNode builds a node directly, bypassing normalization. Mostly useful in
// tests and examples. The category is inferred from meta when typ is empty.
func NewNode(id, typ string, meta Meta, children ...*Node) *Node {
	n := &Node{
		ID:       id,
		Category: InferCategory(typ, meta),
		Title:    meta.String(MetaTitle),
		Span:     SpanFromMeta(meta),
		Meta:     meta,
	}
	for i, c := range children {
		c.ParentID = id
		c.seq = i
		n.Children = append(n.Children, c)
	}
	return n
}

// Seq returns the node's input sequence number.
func (n *Node) Seq() int { return n.seq }

// SetSeq sets the input sequence number. Used by the normalizer.
func (n *Node) SetSeq(seq int) { n.seq = seq }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// HasChildren reports whether the node owns at least one milestone.
// A node with a declared but empty children list is a leaf.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// Ref returns the compact reference used in insertion contracts.
func (n *Node) Ref() NodeRef {
	return NodeRef{ID: n.ID, Title: n.Title, Type: n.Category}
}

// Walk visits every node of the forest depth-first, parents before
// children. Returning false from fn stops the descent below that node.
func Walk(roots []*Node, fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
}

// NodeRef identifies a milestone inside an insertion contract.
type NodeRef struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	Type  Category `json:"type,omitempty"`
}
