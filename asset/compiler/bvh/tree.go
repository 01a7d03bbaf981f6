package bvh

import (
	"fmt"

	"github.com/achilleasa/wbvh/types"
)

// Tree is a 4-wide BVH. Objects are stored in leaf order so that every leaf
// maps to a contiguous range of the object list.
type Tree struct {
	Objects []Primitive
	Nodes   []Node
	Root    NodeRef
	Bounds  types.AABB

	// The native block width of the traversal engine.
	Width int
}

// A callback invoked by Walk for every reachable node and leaf. Returning
// false skips the children of an inner node.
type WalkFunc func(ref NodeRef, bounds types.AABB, depth int) bool

// Visit the tree depth-first in child slot order.
func (t *Tree) Walk(fn WalkFunc) {
	if len(t.Objects) == 0 {
		return
	}
	t.walk(t.Root, t.Bounds, 0, fn)
}

func (t *Tree) walk(ref NodeRef, bounds types.AABB, depth int, fn WalkFunc) {
	if !fn(ref, bounds, depth) || !ref.IsInner() {
		return
	}

	node := &t.Nodes[ref.Index]
	for slot, child := range node.Children {
		if child.IsValid() {
			t.walk(child, node.Bounds(slot), depth+1, fn)
		}
	}
}

// Get the objects covered by a leaf reference.
func (t *Tree) Leaf(ref NodeRef) []Primitive {
	if !ref.IsLeaf() {
		return nil
	}
	return t.Objects[ref.Index : ref.Index+ref.Count]
}

// Invoke fn for each object whose bbox overlaps box. The query stops as
// soon as fn returns false.
func (t *Tree) Query(box types.AABB, fn func(obj Primitive) bool) {
	if len(t.Objects) == 0 || !t.Bounds.Overlaps(box) {
		return
	}

	stack := []NodeRef{t.Root}
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if ref.IsLeaf() {
			for _, obj := range t.Leaf(ref) {
				if obj.Bounds().Overlaps(box) && !fn(obj) {
					return
				}
			}
			continue
		}

		// Push in reverse so children are visited in slot order
		node := &t.Nodes[ref.Index]
		for slot := Branching - 1; slot >= 0; slot-- {
			if node.Children[slot].IsValid() && node.Bounds(slot).Overlaps(box) {
				stack = append(stack, node.Children[slot])
			}
		}
	}
}

// Estimate the expected cost of tracing a ray through the tree using the
// surface area heuristic. Node and leaf costs are weighted by the ratio of
// their bbox area to the root bbox area.
func (t *Tree) Cost(traversalCost, intersectCost float32) float32 {
	rootArea := t.Bounds.HalfArea()
	if len(t.Objects) == 0 || rootArea == 0 {
		return 0
	}

	var cost float32
	t.Walk(func(ref NodeRef, bounds types.AABB, _ int) bool {
		area := bounds.HalfArea() / rootArea
		if ref.IsInner() {
			cost += traversalCost * area
		} else {
			cost += intersectCost * area * float32(ref.Count)
		}
		return true
	})
	return cost
}

// Check the structural invariants of a built tree:
//
// - the root is at index 0 and every node is reachable exactly once
// - inner nodes have between 2 and Branching children
// - every child bbox lies inside its parent bbox
// - leafs hold at most maxLeafSize objects whose bboxes lie inside the leaf bbox
// - every object belongs to exactly one leaf
func (t *Tree) Validate(maxLeafSize int) error {
	if len(t.Objects) == 0 {
		return fmt.Errorf("%w: tree has no objects", ErrInvariant)
	}
	if t.Root.Index != 0 {
		return fmt.Errorf("%w: root index is %d", ErrRootNotZero, t.Root.Index)
	}

	covered := make([]bool, len(t.Objects))
	visited := make([]bool, len(t.Nodes))
	visitedCount := 0

	var check func(ref NodeRef, bounds types.AABB) error
	check = func(ref NodeRef, bounds types.AABB) error {
		if ref.IsLeaf() {
			end := uint64(ref.Index) + uint64(ref.Count)
			if end > uint64(len(t.Objects)) {
				return fmt.Errorf("%w: leaf range [%d, %d) exceeds object count %d", ErrInvariant, ref.Index, end, len(t.Objects))
			}
			if int(ref.Count) > maxLeafSize {
				return fmt.Errorf("%w: leaf at %d holds %d objects; max %d", ErrInvariant, ref.Index, ref.Count, maxLeafSize)
			}
			for i := ref.Index; i < uint32(end); i++ {
				if covered[i] {
					return fmt.Errorf("%w: object %d referenced by multiple leafs", ErrInvariant, i)
				}
				covered[i] = true
				if !bounds.Contains(t.Objects[i].Bounds()) {
					return fmt.Errorf("%w: object %d escapes its leaf bbox", ErrInvariant, i)
				}
			}
			return nil
		}

		if !ref.IsInner() {
			return fmt.Errorf("%w: unexpected invalid node reference", ErrInvariant)
		}
		if int(ref.Index) >= len(t.Nodes) {
			return fmt.Errorf("%w: node index %d out of range [0, %d)", ErrInvariant, ref.Index, len(t.Nodes))
		}
		if visited[ref.Index] {
			return fmt.Errorf("%w: node %d reachable from multiple parents", ErrInvariant, ref.Index)
		}
		visited[ref.Index] = true
		visitedCount++

		node := &t.Nodes[ref.Index]
		if count := node.ChildCount(); count < 2 {
			return fmt.Errorf("%w: node %d has %d children", ErrInvariant, ref.Index, count)
		}
		for slot, child := range node.Children {
			if !child.IsValid() {
				continue
			}
			childBounds := node.Bounds(slot)
			if !bounds.Contains(childBounds) {
				return fmt.Errorf("%w: child %d of node %d escapes its parent bbox", ErrInvariant, slot, ref.Index)
			}
			if err := check(child, childBounds); err != nil {
				return err
			}
		}
		return nil
	}

	if err := check(t.Root, t.Bounds); err != nil {
		return err
	}

	for i, ok := range covered {
		if !ok {
			return fmt.Errorf("%w: object %d is not referenced by any leaf", ErrInvariant, i)
		}
	}
	if visitedCount != len(t.Nodes) {
		return fmt.Errorf("%w: %d of %d nodes are unreachable", ErrInvariant, len(t.Nodes)-visitedCount, len(t.Nodes))
	}
	return nil
}
