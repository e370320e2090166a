// Package transform turns raw timeline records into a forest the layout
// engine can walk.
//
// # Normalization
//
// [Normalize] flattens embedded child collections, classifies every record
// once (see [timeline.InferCategory]), rejects duplicate ids and cyclic
// parent chains, and links children to their parents. Records pointing at a
// parent that is not in the input become roots; their ids are reported in
// [Forest.Orphans] so the caller can warn about partial data without
// failing the render. Children of a milestone whose category cannot own
// children are linked anyway and listed in [Forest.Misplaced].
//
// # Chronological ordering
//
// [SortSiblings] orders one sibling group by start date, then end date
// (ongoing last), then input order. It is stable and never mutates its
// input. The layout compiler applies it to each group it places.
//
// # Cycles
//
// Parent references are followed with the usual white/gray/black colouring.
// Any loop, including a record that names itself as its parent, fails with
// [timeline.ErrCyclicHierarchy]; the normalizer never guesses where to cut.
package transform
