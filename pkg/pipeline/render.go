package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/observability"
	"github.com/journeyline/journeyline/pkg/render/nodelink"
)

// Render produces one artifact from a compiled layout.
func Render(ctx context.Context, layout graph.Layout, format string, opts Options) (data []byte, err error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, format)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	}()

	switch format {
	case graph.FormatJSON:
		return graph.MarshalLayout(layout)
	case graph.FormatDOT:
		return []byte(nodelink.ToDOT(layout, nodelinkOptions(opts))), nil
	case graph.FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(layout, nodelinkOptions(opts)))
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// RenderAll renders every requested format without caching.
func RenderAll(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := Render(ctx, layout, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{
		Detailed:        opts.Detailed,
		HideAffordances: opts.HideAffordances,
	}
}
