package bvh

import (
	"fmt"

	"github.com/achilleasa/wbvh/types"
)

// The Primitive interface is implemented by all scene items that can be
// partitioned by the bvh builder.
type Primitive interface {
	Bounds() types.AABB
}

// PrimitiveInfo is the lightweight stand-in for a primitive that the builder
// reorders while partitioning. Geom is the index of the primitive in the
// builder input.
type PrimitiveInfo struct {
	Geom   uint32
	Bounds types.AABB
}

// Record describes a contiguous range of primitive infos that still needs
// to be partitioned together with the union of their bounds.
type Record struct {
	Begin, End int
	Bounds     types.AABB
}

// Number of primitives in the record range.
func (r Record) Size() int {
	return r.End - r.Begin
}

// Collect a PrimitiveInfo entry for each object in input order and a record
// that spans all of them.
func collect(objects []Primitive) ([]PrimitiveInfo, Record, error) {
	infos := make([]PrimitiveInfo, len(objects))
	root := Record{Begin: 0, End: len(objects), Bounds: types.EmptyAABB()}

	for index, obj := range objects {
		bounds := obj.Bounds()
		if !bounds.IsValid() {
			return nil, Record{}, fmt.Errorf("%w: primitive %d has bounds %v", ErrInvalidBounds, index, bounds)
		}

		infos[index] = PrimitiveInfo{Geom: uint32(index), Bounds: bounds}
		root.Bounds.Expand(bounds)
	}

	return infos, root, nil
}
