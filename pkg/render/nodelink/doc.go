// Package nodelink renders compiled timelines as node-link diagrams.
//
// # Overview
//
// This package turns a [graph.Layout] into Graphviz DOT and renders it to
// SVG. Milestones appear as rounded boxes, insertion affordances as small
// dashed circles, and edges as arrows. The layout engine has already decided
// every coordinate; Graphviz is only asked to draw.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: milestone labels include category, level, span and metadata
//   - HideAffordances: drop insertion nodes for a read-only picture
//
// # DOT Format
//
// The generated DOT uses the neato engine with every node pinned
// (pos="x,y!"). It can be saved and processed with external Graphviz tools,
// provided they are run with neato as well.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
//
// [graph.Layout]: github.com/journeyline/journeyline/pkg/graph.Layout
package nodelink
