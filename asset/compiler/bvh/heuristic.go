package bvh

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/achilleasa/wbvh/types"
)

// The heuristic will not bin primitives along an axis if the record bbox
// side along that axis is not larger than this threshold.
const minAxisExtent float32 = 1e-6

// SplitCandidate describes the cheapest split found by the binned heuristic.
// Primitives whose centroid falls into a bin <= Bin along Axis go left.
type SplitCandidate struct {
	Axis types.Axis
	Bin  int
	Cost float32

	LeftBounds, RightBounds types.AABB
	LeftCount, RightCount   int

	// Centroid to bin mapping used while evaluating the candidate.
	binMin, binScale float32
}

// NoSplit returns the candidate reported when a record cannot be split.
func NoSplit() SplitCandidate {
	return SplitCandidate{
		Bin:         -1,
		Cost:        math32.Inf(1),
		LeftBounds:  types.EmptyAABB(),
		RightBounds: types.EmptyAABB(),
	}
}

// Returns false for the NoSplit sentinel.
func (s SplitCandidate) Valid() bool {
	return s.Bin >= 0
}

// BinnedHeuristic proposes SAH splits by bucketing primitive centroids into
// a fixed number of bins per axis and partitions primitive info ranges in place.
type BinnedHeuristic struct {
	infos    []PrimitiveInfo
	binCount int

	// Scratch space reused between Find calls.
	binBounds   []types.AABB
	binCounts   []int
	rightBounds []types.AABB
	rightCounts []int

	// Number of partitions that had to fall back to an equal-count split.
	fallbacks int
}

// Create a heuristic operating on infos using binCount bins per axis.
func NewBinnedHeuristic(infos []PrimitiveInfo, binCount int) *BinnedHeuristic {
	return &BinnedHeuristic{
		infos:       infos,
		binCount:    binCount,
		binBounds:   make([]types.AABB, binCount),
		binCounts:   make([]int, binCount),
		rightBounds: make([]types.AABB, binCount),
		rightCounts: make([]int, binCount),
	}
}

// Number of equal-count fallback splits performed so far.
func (h *BinnedHeuristic) Fallbacks() int {
	return h.fallbacks
}

// Find the split with the lowest SAH cost:
//
// cost = left bbox half area * left count + right bbox half area * right count
//
// Axes are evaluated in X, Y, Z order and boundaries from left to right; on
// ties the first candidate wins. Returns NoSplit if every boundary leaves
// one side empty.
func (h *BinnedHeuristic) Find(rec Record) SplitCandidate {
	best := NoSplit()
	if rec.Size() < 2 {
		return best
	}

	extent := rec.Bounds.Extent()
	for _, axis := range types.Axes {
		// Also rejects NaN extents
		if !(extent[axis] > minAxisExtent) {
			continue
		}

		binMin := rec.Bounds.Min[axis]
		binScale := float32(h.binCount) / extent[axis]

		for bin := 0; bin < h.binCount; bin++ {
			h.binBounds[bin] = types.EmptyAABB()
			h.binCounts[bin] = 0
		}

		for i := rec.Begin; i < rec.End; i++ {
			bounds := h.infos[i].Bounds
			bin := h.binIndex(bounds.CentroidAxis(axis), binMin, binScale)
			h.binCounts[bin]++
			h.binBounds[bin].Expand(bounds)
		}

		// Sweep right to left; rightBounds[i] covers bins [i, binCount)
		acc := types.EmptyAABB()
		count := 0
		for bin := h.binCount - 1; bin > 0; bin-- {
			acc.Expand(h.binBounds[bin])
			count += h.binCounts[bin]
			h.rightBounds[bin] = acc
			h.rightCounts[bin] = count
		}

		// Sweep left to right evaluating the boundary before each bin
		left := types.EmptyAABB()
		leftCount := 0
		for bin := 1; bin < h.binCount; bin++ {
			left.Expand(h.binBounds[bin-1])
			leftCount += h.binCounts[bin-1]
			rightCount := h.rightCounts[bin]
			if leftCount == 0 || rightCount == 0 {
				continue
			}

			cost := left.HalfArea()*float32(leftCount) + h.rightBounds[bin].HalfArea()*float32(rightCount)
			if cost < best.Cost {
				best = SplitCandidate{
					Axis:        axis,
					Bin:         bin - 1,
					Cost:        cost,
					LeftBounds:  left,
					RightBounds: h.rightBounds[bin],
					LeftCount:   leftCount,
					RightCount:  rightCount,
					binMin:      binMin,
					binScale:    binScale,
				}
			}
		}
	}

	return best
}

// Reorder the primitive infos in [begin, end) so that primitives on the
// left side of split come first and return records for both sides with
// their bounds recomputed from the primitives they contain.
//
// If split is NoSplit or the partition leaves a side empty, the range is
// split into two halves of equal count along the widest centroid axis.
func (h *BinnedHeuristic) Partition(split SplitCandidate, begin, end int) (Record, Record) {
	mid := begin
	if split.Valid() {
		mid = h.partitionByBin(split, begin, end)
	}

	if (mid == begin || mid == end) && end-begin > 1 {
		mid = h.partitionByCount(begin, end)
		h.fallbacks++
	}

	return h.record(begin, mid), h.record(mid, end)
}

func (h *BinnedHeuristic) binIndex(centroid, binMin, binScale float32) int {
	bin := int((centroid - binMin) * binScale)
	if bin < 0 {
		return 0
	}
	if bin >= h.binCount {
		return h.binCount - 1
	}
	return bin
}

func (h *BinnedHeuristic) partitionByBin(split SplitCandidate, begin, end int) int {
	left, right := begin, end-1
	for left <= right {
		centroid := h.infos[left].Bounds.CentroidAxis(split.Axis)
		if h.binIndex(centroid, split.binMin, split.binScale) <= split.Bin {
			left++
			continue
		}
		h.infos[left], h.infos[right] = h.infos[right], h.infos[left]
		right--
	}
	return left
}

func (h *BinnedHeuristic) partitionByCount(begin, end int) int {
	centroidBounds := types.EmptyAABB()
	for i := begin; i < end; i++ {
		centroidBounds.ExpandPoint(h.infos[i].Bounds.Centroid())
	}
	axis := centroidBounds.Extent().MaxAxis()

	items := h.infos[begin:end]
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].Bounds.CentroidAxis(axis), items[j].Bounds.CentroidAxis(axis)
		if ci != cj {
			return ci < cj
		}
		return items[i].Geom < items[j].Geom
	})

	return begin + (end-begin)/2
}

func (h *BinnedHeuristic) record(begin, end int) Record {
	rec := Record{Begin: begin, End: end, Bounds: types.EmptyAABB()}
	for i := begin; i < end; i++ {
		rec.Bounds.Expand(h.infos[i].Bounds)
	}
	return rec
}
