package graph

import (
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/timeline"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types. Affordance nodes use their affordance kind as the type.
const (
	NodeTypeMilestone = "milestone"
)

// Output formats understood by the pipeline and the CLI.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// =============================================================================
// Node - Presentation Node
// =============================================================================

// Node is one element of the presentation node list. Milestones and
// affordances share this shape; Type tells them apart.
type Node struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Position position.Position `json:"position"`
	Data     NodeData          `json:"data"`
}

// IsAffordance reports whether the node is a synthetic insertion node.
func (n *Node) IsAffordance() bool { return n.Type != NodeTypeMilestone }

// NodeData carries everything a renderer needs besides the coordinates.
// Milestone fields are empty for affordances and vice versa.
type NodeData struct {
	// Milestone fields
	Title       string            `json:"title,omitempty"`
	Category    timeline.Category `json:"category,omitempty"`
	ParentID    string            `json:"parentId,omitempty"`
	Start       string            `json:"start,omitempty"`
	End         string            `json:"end,omitempty"`
	Level       int               `json:"level"`
	HasChildren bool              `json:"hasChildren,omitempty"`
	Expanded    bool              `json:"isExpanded,omitempty"`
	ChildCount  int               `json:"childCount,omitempty"`
	Meta        map[string]any    `json:"meta,omitempty"`

	*flow.Visibility
	*flow.Handles

	// Affordance fields
	AnchorID  string         `json:"anchorId,omitempty"`
	Insertion *flow.Contract `json:"insertionContext,omitempty"`
}

// =============================================================================
// Edge - Presentation Edge
// =============================================================================

// Edge is one element of the presentation edge list.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   string   `json:"type"`
	Data   EdgeData `json:"data"`
}

// EdgeData carries the insertion context of the edge, if any.
type EdgeData struct {
	Insertion *flow.Contract `json:"insertionContext,omitempty"`
}
