package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/timeline"
)

// pointsPerInch converts layout units to the inches Graphviz uses for sizes.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the date span, level and metadata to milestone labels.
	// When false, only the title is shown.
	Detailed bool

	// HideAffordances omits the insertion nodes and the edges that end in them.
	HideAffordances bool
}

// ToDOT converts a presentation layout to Graphviz DOT source.
//
// Every node is pinned to its computed position (pos="x,y!"), so Graphviz
// only routes edges and draws shapes. Coordinates are node centers with the
// y axis flipped, since Graphviz grows y upwards.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	skipped := make(map[string]bool)
	for _, n := range l.Nodes {
		if n.IsAffordance() && opts.HideAffordances {
			skipped[n.ID] = true
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(l, n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if skipped[e.Source] || skipped[e.Target] {
			continue
		}
		attrs := ""
		if e.Type == string(flow.EdgeInsertion) {
			attrs = " [style=dashed, color=grey]"
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.Source, e.Target, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(l graph.Layout, n graph.Node, detailed bool) []string {
	w, h := l.NodeWidth, l.NodeHeight
	if n.IsAffordance() {
		w, h = l.Affordance, l.Affordance
	}
	cx := n.Position.X + w/2
	cy := -(n.Position.Y + h/2)

	attrs := []string{
		fmt.Sprintf("pos=\"%g,%g!\"", cx, cy),
		fmt.Sprintf("width=%g", w/pointsPerInch),
		fmt.Sprintf("height=%g", h/pointsPerInch),
	}

	if n.IsAffordance() {
		return append(attrs, "shape=circle", "label=\"+\"", "style=dashed", "color=grey", "fontcolor=grey")
	}

	attrs = append(attrs, fmt.Sprintf("label=%q", fmtLabel(n, detailed)))
	if v := n.Data.Visibility; v != nil {
		switch {
		case v.Blurred:
			attrs = append(attrs, "fontcolor=grey", "color=grey")
		case v.Focused:
			attrs = append(attrs, "penwidth=3")
		}
		if v.Selected {
			attrs = append(attrs, "fillcolor=lightyellow")
		}
		if v.Highlighted {
			attrs = append(attrs, "color=orange")
		}
	}
	return attrs
}

// spanKeys are metadata keys already shown as the title or date span.
var spanKeys = map[string]bool{
	timeline.MetaTitle:     true,
	timeline.MetaStartDate: true,
	timeline.MetaEndDate:   true,
	timeline.MetaStart:     true,
	timeline.MetaEnd:       true,
}

func fmtLabel(n graph.Node, detailed bool) string {
	title := n.Data.Title
	if title == "" {
		title = n.ID
	}
	if !detailed {
		return title
	}

	parts := []string{string(n.Data.Category), fmt.Sprintf("level: %d", n.Data.Level)}
	if n.Data.Start != "" || n.Data.End != "" {
		end := n.Data.End
		if end == "" {
			end = "present"
		}
		parts = append(parts, n.Data.Start+" - "+end)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Data.Meta)) {
		if spanKeys[k] {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data.Meta[k]))
	}

	return title + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using the in-process Graphviz
// library with the neato engine, which honors pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales to its
// container instead of carrying Graphviz's fixed point dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
