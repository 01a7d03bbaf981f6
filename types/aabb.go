package types

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box. The zero value is a degenerate box
// at the origin; use EmptyAABB to start accumulating a union.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create a box from its corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Create an empty box (min = +Inf, max = -Inf) that acts as the identity
// element for Expand.
func EmptyAABB() AABB {
	return AABB{
		Min: Splat(math32.Inf(1)),
		Max: Splat(math32.Inf(-1)),
	}
}

// Returns true if max < min along any axis.
func (b AABB) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Grow the box so it also encloses other.
func (b *AABB) Expand(other AABB) {
	b.Min = MinVec3(b.Min, other.Min)
	b.Max = MaxVec3(b.Max, other.Max)
}

// Grow the box so it also encloses point p.
func (b *AABB) ExpandPoint(p Vec3) {
	b.Min = MinVec3(b.Min, p)
	b.Max = MaxVec3(b.Max, p)
}

// Return the union of two boxes.
func Union(a, b AABB) AABB {
	a.Expand(b)
	return a
}

// Box side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Box center.
func (b AABB) Centroid() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Centroid coordinate along a single axis.
func (b AABB) CentroidAxis(axis Axis) float32 {
	return 0.5 * (b.Min[axis] + b.Max[axis])
}

// Half of the box surface area (xy + yz + zx). Empty boxes have zero area.
func (b AABB) HalfArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Extent()
	return d[0]*d[1] + d[1]*d[2] + d[2]*d[0]
}

// Returns true if other lies completely inside b.
func (b AABB) Contains(other AABB) bool {
	return other.Min[0] >= b.Min[0] && other.Max[0] <= b.Max[0] &&
		other.Min[1] >= b.Min[1] && other.Max[1] <= b.Max[1] &&
		other.Min[2] >= b.Min[2] && other.Max[2] <= b.Max[2]
}

// Returns true if the two boxes share at least one point.
func (b AABB) Overlaps(other AABB) bool {
	return b.Min[0] <= other.Max[0] && b.Max[0] >= other.Min[0] &&
		b.Min[1] <= other.Max[1] && b.Max[1] >= other.Min[1] &&
		b.Min[2] <= other.Max[2] && b.Max[2] >= other.Min[2]
}

// Returns true if both corners are finite and min <= max.
func (b AABB) IsValid() bool {
	return b.Min.IsFinite() && b.Max.IsFinite() && !b.IsEmpty()
}
