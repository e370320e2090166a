// Package position computes coordinates for timeline sibling groups.
//
// # Overview
//
// A timeline is laid out one sibling group at a time. The root group runs
// along the sibling axis from the configured origin; every expanded child
// group runs parallel to it, one level spacing further along the cross axis
// and anchored at its parent's coordinate.
//
//	cfg := position.DefaultConfig()
//	roots := position.Compute(3, cfg, nil, 0)
//	kids := position.Compute(2, cfg, &roots[1], 1)
//
// # Orientation
//
// [Horizontal] (the product default) places siblings along X and levels
// along Y. [Vertical] swaps the two axes, including which spacing applies to
// which axis.
//
// # Affordance Anchors
//
// [BoundaryBefore], [BoundaryAfter] and [LeafSlot] place the synthetic
// insertion affordances. Boundary affordances sit [Config.BoundaryOffset]
// times the sibling spacing outside the group and are centered on the node
// across the axis; leaf slots sit on the child side of the node.
package position
