// Package render groups the layout and output stages of a timeline.
//
//   - [position] computes coordinates for sibling groups
//   - [flow] compiles a forest into nodes, edges and insertion affordances
//   - [nodelink] writes a compiled layout as Graphviz DOT or SVG
//
//	g := flow.Compile(roots, cfg, state)
//	l := graph.Export(g, cfg)
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [position]: github.com/journeyline/journeyline/pkg/render/position
// [flow]: github.com/journeyline/journeyline/pkg/render/flow
// [nodelink]: github.com/journeyline/journeyline/pkg/render/nodelink
package render
