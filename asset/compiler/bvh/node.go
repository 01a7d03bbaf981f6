package bvh

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/achilleasa/wbvh/types"
)

const (
	// Maximum number of children per node.
	Branching = 4

	// Count value of a NodeRef that points to an inner node.
	InnerNode = ^uint32(0)
)

// NodeRef references either an inner node or a leaf.
//
// - For inner nodes Count is InnerNode and Index points to the node list.
// - For leafs Count is the number of primitives and Index points to the
//   first primitive of the leaf in the permuted object list.
// - A zero Count marks an unused child slot.
type NodeRef struct {
	Index uint32
	Count uint32
}

// The reference stored in unused child slots.
var invalidRef = NodeRef{Index: InnerNode, Count: 0}

// Returns true if the reference points to an inner node.
func (r NodeRef) IsInner() bool {
	return r.Count == InnerNode
}

// Returns true if the reference points to a leaf.
func (r NodeRef) IsLeaf() bool {
	return r.Count != InnerNode && r.Count != 0
}

// Returns true if the reference points to a node or a leaf.
func (r NodeRef) IsValid() bool {
	return r.Count != 0
}

// Node is a 4-wide BVH node. Child bounds are stored per axis so that a
// traversal engine can test all children against a ray at once.
type Node struct {
	MinX, MinY, MinZ [Branching]float32
	MaxX, MaxY, MaxZ [Branching]float32

	Children [Branching]NodeRef
}

// Mark a child slot as unused. Unused slots carry an empty bbox so that
// overlap tests against them always fail.
func (n *Node) Invalidate(slot int) {
	n.MinX[slot], n.MinY[slot], n.MinZ[slot] = math32.Inf(1), math32.Inf(1), math32.Inf(1)
	n.MaxX[slot], n.MaxY[slot], n.MaxZ[slot] = math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)
	n.Children[slot] = invalidRef
}

// Set child reference and bbox for a slot.
func (n *Node) SetChild(slot int, ref NodeRef, bounds types.AABB) {
	n.MinX[slot], n.MinY[slot], n.MinZ[slot] = bounds.Min[0], bounds.Min[1], bounds.Min[2]
	n.MaxX[slot], n.MaxY[slot], n.MaxZ[slot] = bounds.Max[0], bounds.Max[1], bounds.Max[2]
	n.Children[slot] = ref
}

// Get the bbox of a child slot.
func (n *Node) Bounds(slot int) types.AABB {
	return types.AABB{
		Min: types.Vec3{n.MinX[slot], n.MinY[slot], n.MinZ[slot]},
		Max: types.Vec3{n.MaxX[slot], n.MaxY[slot], n.MaxZ[slot]},
	}
}

// Number of used child slots.
func (n *Node) ChildCount() int {
	count := 0
	for _, ref := range n.Children {
		if ref.IsValid() {
			count++
		}
	}
	return count
}

// Move used slots to the front ordered by decreasing bbox half area.
func (n *Node) sortChildren() {
	type slot struct {
		ref    NodeRef
		bounds types.AABB
		area   float32
	}

	slots := make([]slot, 0, Branching)
	for i, ref := range n.Children {
		if ref.IsValid() {
			bounds := n.Bounds(i)
			slots = append(slots, slot{ref, bounds, bounds.HalfArea()})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].area > slots[j].area
	})

	for i := 0; i < Branching; i++ {
		if i < len(slots) {
			n.SetChild(i, slots[i].ref, slots[i].bounds)
		} else {
			n.Invalidate(i)
		}
	}
}
