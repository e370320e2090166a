// Package graph provides the serialization format for compiled timelines.
//
// This package defines the canonical wire format handed to the presentation
// layer, used for JSON files, API responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between the layout engine
// and external consumers:
//
//   - [Layout], [Node], [Edge]: Serialization types (this package)
//   - pkg/render/flow.Graph: Internal compiled graph
//
// Use [Export] to convert a compiled graph into a [Layout].
//
// # Layout Format
//
// A layout is a node list and an edge list in the shape generic graph
// renderers expect:
//
//	{
//	  "orientation": "horizontal",
//	  "nodes": [
//	    {"id": "job-1", "type": "milestone", "position": {"x": 0, "y": 0},
//	     "data": {"title": "Engineer", "category": "job", "level": 0, ...}},
//	    {"id": "affordance:leaf:job-1", "type": "leafChild", ...,
//	     "data": {"insertionContext": {"insertionPoint": "child", ...}}}
//	  ],
//	  "edges": [
//	    {"id": "sibling:job-1->job-2", "source": "job-1", "target": "job-2",
//	     "type": "sibling", "data": {"insertionContext": {...}}}
//	  ]
//	}
//
// Milestone nodes have type "milestone"; affordance nodes use their
// affordance kind (timelineStart, timelineEnd, leafChild,
// emptyTimelineStart). Edge types are sibling, parentChild and insertion.
//
// Common operations:
//
//	layout := graph.Export(compiled, cfg)
//	graph.WriteLayoutFile(layout, "timeline.json")
//	data, _ := graph.MarshalLayout(layout)
//	parsed, _ := graph.UnmarshalLayout(data)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
