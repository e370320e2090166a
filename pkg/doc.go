// Package pkg provides the libraries behind journeyline, a layout engine for
// hierarchical career timelines.
//
// # Overview
//
// A timeline is a forest of milestones (jobs, education, projects, events)
// where any milestone may own a child timeline. The engine turns flat
// parent-linked records into positioned nodes, connecting edges and the
// synthetic insertion affordances an editor offers for adding milestones.
//
// # Architecture
//
// The data flow through a compilation pass:
//
//	Records (JSON file, store)
//	         ↓
//	    [timeline/transform] (normalize into a forest, sort siblings)
//	         ↓
//	    [render/position] (sibling coordinates per level)
//	         ↓
//	    [render/flow] (visibility, edges, insertion affordances)
//	         ↓
//	    [graph] (presentation layout: JSON, DOT, SVG)
//
// # Quick Start
//
//	import (
//	    "github.com/journeyline/journeyline/pkg/io"
//	    "github.com/journeyline/journeyline/pkg/graph"
//	    "github.com/journeyline/journeyline/pkg/render/flow"
//	    "github.com/journeyline/journeyline/pkg/render/position"
//	    "github.com/journeyline/journeyline/pkg/timeline/transform"
//	)
//
//	records, _ := io.ImportJSON("journey.json")
//	forest, _ := transform.Normalize(records)
//	state := flow.State{}.WithExpanded("acme")
//	g := flow.CompileForest(forest, position.DefaultConfig(), state)
//	layout := graph.Export(g, position.DefaultConfig())
//
// # Main Packages
//
// [timeline] - Records, nodes, partial dates and categories.
//
// [timeline/transform] - Tree normalization and chronological sorting.
//
// [render/position] - Coordinates for sibling groups in either orientation.
//
// [render/flow] - The graph compiler, visibility resolver and insertion
// contract.
//
// [graph] - The presentation layout handed to renderers.
//
// [render/nodelink] - Graphviz DOT and SVG output for a layout.
//
// [pipeline] - Orchestration with caching: load, compile, render.
//
// [cache] and [store] - Layout caching (file, Redis) and record storage
// (memory, MongoDB).
//
// [api] - The HTTP surface over a record store.
//
// [timeline]: github.com/journeyline/journeyline/pkg/timeline
// [timeline/transform]: github.com/journeyline/journeyline/pkg/timeline/transform
// [render/position]: github.com/journeyline/journeyline/pkg/render/position
// [render/flow]: github.com/journeyline/journeyline/pkg/render/flow
// [graph]: github.com/journeyline/journeyline/pkg/graph
// [render/nodelink]: github.com/journeyline/journeyline/pkg/render/nodelink
// [pipeline]: github.com/journeyline/journeyline/pkg/pipeline
// [cache]: github.com/journeyline/journeyline/pkg/cache
// [store]: github.com/journeyline/journeyline/pkg/store
// [api]: github.com/journeyline/journeyline/pkg/api
package pkg
