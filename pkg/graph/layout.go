package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
)

// ErrInvalidLayout is returned when decoded layout JSON is structurally unusable.
var ErrInvalidLayout = errors.New("invalid layout")

// =============================================================================
// Layout - Presentation Format
// =============================================================================

// Layout is the serialized result of a compilation pass, shaped for a
// generic graph-rendering surface.
//
// Nodes holds milestones followed by affordances, each in compile order.
// MinX/MinY and Width/Height describe the bounding box of every element,
// so renderers can size a viewport without walking the lists.
type Layout struct {
	Orientation position.Orientation `json:"orientation"`
	MinX        float64              `json:"minX"`
	MinY        float64              `json:"minY"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	NodeWidth   float64              `json:"nodeWidth"`
	NodeHeight  float64              `json:"nodeHeight"`
	Affordance  float64              `json:"affordanceSize"`

	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Milestones returns the non-affordance nodes.
func (l *Layout) Milestones() []Node {
	var out []Node
	for _, n := range l.Nodes {
		if !n.IsAffordance() {
			out = append(out, n)
		}
	}
	return out
}

// Export converts a compiled graph to its presentation layout.
func Export(g flow.Graph, cfg position.Config) Layout {
	minP, maxP := g.Bounds(cfg)
	l := Layout{
		Orientation: g.Orientation,
		MinX:        minP.X,
		MinY:        minP.Y,
		Width:       maxP.X - minP.X,
		Height:      maxP.Y - minP.Y,
		NodeWidth:   cfg.NodeWidth,
		NodeHeight:  cfg.NodeHeight,
		Affordance:  cfg.AffordanceSize,
		Nodes:       make([]Node, 0, len(g.Nodes)+len(g.Affordances)),
		Edges:       make([]Edge, 0, len(g.Edges)),
	}
	if l.Orientation == "" {
		l.Orientation = position.Horizontal
	}

	for _, n := range g.Nodes {
		l.Nodes = append(l.Nodes, milestoneNode(n))
	}
	for _, a := range g.Affordances {
		l.Nodes = append(l.Nodes, Node{
			ID:       a.ID,
			Type:     string(a.Kind),
			Position: a.Position,
			Data: NodeData{
				Level:     a.Level,
				AnchorID:  a.AnchorID,
				Insertion: flow.Wire(a.Insertion),
			},
		})
	}
	for _, e := range g.Edges {
		l.Edges = append(l.Edges, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Type:   string(e.Kind),
			Data:   EdgeData{Insertion: flow.Wire(e.Insertion)},
		})
	}
	return l
}

func milestoneNode(n flow.PositionedNode) Node {
	vis, handles := n.Visibility, n.Handles
	return Node{
		ID:       n.ID,
		Type:     NodeTypeMilestone,
		Position: n.Position,
		Data: NodeData{
			Title:       n.Title,
			Category:    n.Category,
			ParentID:    n.ParentID,
			Start:       n.Span.Start,
			End:         n.Span.End,
			Level:       n.Level,
			HasChildren: n.HasChildren,
			Expanded:    n.Expanded,
			ChildCount:  n.ChildCount,
			Meta:        n.Meta,
			Visibility:  &vis,
			Handles:     &handles,
		},
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every edge must reference nodes present in the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that the layout has at least one node, that node ids are
// unique and that edges only reference known node ids.
func (l *Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return fmt.Errorf("%w: layout must contain nodes", ErrInvalidLayout)
	}
	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrInvalidLayout)
		}
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidLayout, n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range l.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("%w: edge %s references unknown node", ErrInvalidLayout, e.ID)
		}
	}
	return nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
