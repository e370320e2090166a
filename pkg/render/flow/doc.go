// Package flow compiles a milestone forest into a positioned, connected
// graph with insertion affordances.
//
// # Overview
//
// [Compile] is the layout engine. It walks the forest depth first, sorts
// every sibling group chronologically, positions it with the position
// package and emits:
//
//   - one [PositionedNode] per visible milestone, carrying [Visibility] and
//     [Handles] flags
//   - sibling edges between chronologically adjacent milestones and a
//     parent-child edge to the first milestone of each expanded child group
//   - [Affordance] nodes where a new milestone can be inserted: the start and
//     end of the root timeline, the end of each expanded child timeline, and
//     an "add child" slot under every milestone that shows no child group
//
// Collapsed milestones hide their subtree and reuse the leaf slot. An empty
// forest yields a single emptyTimelineStart affordance.
//
// # State
//
// Expansion, focus, selection and highlight are passed in as an immutable
// [State] snapshot. The engine never stores state between calls; identical
// inputs always yield an identical graph.
//
//	state := flow.State{FocusedID: "job-1"}.WithExpanded("job-1")
//	g := flow.Compile(forest.Roots, position.DefaultConfig(), state)
//
// # Insertion Contract
//
// Every affordance and every connecting edge carries an [Insertion], a closed
// set of variants (for example [Between], [Branch], [Child]) each holding
// the references its point requires. [Wire] converts a variant to the JSON
// [Contract] that the node-creation collaborator consumes, [ParseContract]
// validates one coming back, and [Placement] resolves the parent of the
// milestone about to be created.
package flow
