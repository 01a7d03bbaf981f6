package bvh

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/achilleasa/wbvh/log"
)

// Stats collected while building a tree.
type Stats struct {
	Primitives int
	Nodes      int
	Leafs      int
	MaxDepth   int

	// Partitions that fell back to an equal-count split because the SAH
	// candidate was degenerate.
	FallbackSplits int

	// Ranges split without evaluating SAH candidates because they were
	// deeper than the configured max depth.
	ForcedSplits int

	BuildTime time.Duration
}

type builder struct {
	logger log.Logger

	tree      *Tree
	heuristic *BinnedHeuristic
	infos     []PrimitiveInfo

	// Final object position for each primitive keyed by PrimitiveInfo.Geom.
	leaves []uint32

	leafSize   int
	blockSize  int
	leafBlocks float32
	maxDepth   int

	intersectCost float32
	traversalCost float32

	// Next free slot in the final object order.
	buildTrack int

	stats Stats
}

// Build a 4-wide BVH over objects using the binned surface area heuristic.
//
// The returned tree stores a permuted copy of objects in leaf order; the
// objects slice itself is not modified. Each range of primitives is turned
// into a leaf if it holds at most opts.LeafSize primitives or if it fits
// into a leaf (opts.BlockSize * opts.Width primitives) and the estimated
// leaf cost is lower than the cost of splitting it:
//
// leaf cost  = intersect * area * count * log2(leaf capacity)
// split cost = traversal * area + intersect * SAH split cost
func Build(objects []Primitive, opts Options) (*Tree, Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if len(objects) == 0 {
		return nil, Stats{}, ErrEmptyScene
	}

	start := time.Now()
	infos, root, err := collect(objects)
	if err != nil {
		return nil, Stats{}, err
	}

	blockSize := opts.MaxLeafSize()
	b := &builder{
		logger: log.New("bvh builder"),
		tree: &Tree{
			Nodes: make([]Node, 0, 2*len(objects)/opts.LeafSize+1),
			Width: opts.Width,
		},
		heuristic:     NewBinnedHeuristic(infos, opts.BinCount),
		infos:         infos,
		leaves:        make([]uint32, len(objects)),
		leafSize:      opts.LeafSize,
		blockSize:     blockSize,
		leafBlocks:    math32.Max(1, math32.Log2(float32(blockSize))),
		maxDepth:      opts.MaxDepth,
		intersectCost: opts.IntersectCost,
		traversalCost: opts.TraversalCost,
		stats: Stats{
			Primitives: len(objects),
		},
	}

	rootRef := b.recurse(root, 0)
	if rootRef.Index != 0 {
		return nil, Stats{}, fmt.Errorf("%w: got %d", ErrRootNotZero, rootRef.Index)
	}
	if b.buildTrack != len(objects) {
		return nil, Stats{}, fmt.Errorf("%w: leafs cover %d of %d primitives", ErrInvariant, b.buildTrack, len(objects))
	}

	// Move objects to their final leaf order
	b.tree.Objects = make([]Primitive, len(objects))
	for geom, slot := range b.leaves {
		b.tree.Objects[slot] = objects[geom]
	}

	b.tree.Root = rootRef
	b.tree.Bounds = root.Bounds
	b.tree.Optimize()

	if err = b.tree.Validate(blockSize); err != nil {
		return nil, Stats{}, err
	}

	b.stats.Nodes = len(b.tree.Nodes)
	b.stats.FallbackSplits = b.heuristic.Fallbacks()
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, primitives: %d, maxDepth: %d, nodes: %d, leafs: %d, fallback splits: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.Primitives, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs, b.stats.FallbackSplits,
	)

	return b.tree, b.stats, nil
}

// Partition a record and return a reference to the generated node or leaf.
func (b *builder) recurse(rec Record, depth int) NodeRef {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	split := b.find(rec, depth)
	area := rec.Bounds.HalfArea()
	size := rec.Size()
	leafCost := b.intersectCost * area * float32(size) * b.leafBlocks
	splitCost := b.traversalCost*area + b.intersectCost*split.Cost

	if size <= b.leafSize || (size <= b.blockSize && leafCost < splitCost) {
		return b.leaf(rec)
	}

	var children [Branching]Record
	children[0], children[1] = b.heuristic.Partition(split, rec.Begin, rec.End)

	// Keep splitting the child with the largest bbox area until we run out
	// of slots or all children are small enough to become leafs.
	n := 2
	for n < Branching {
		best := -1
		bestArea := math32.Inf(-1)
		for i := 0; i < n; i++ {
			if children[i].Size() <= b.leafSize {
				continue
			}
			if childArea := children[i].Bounds.HalfArea(); childArea > bestArea {
				best = i
				bestArea = childArea
			}
		}

		if best == -1 {
			break
		}

		cur := children[best]
		childSplit := b.find(cur, depth+1)
		children[best], children[n] = b.heuristic.Partition(childSplit, cur.Begin, cur.End)
		n++
	}

	return b.node(children[:n], depth)
}

// Find a split candidate for rec. Records deeper than the max depth get
// NoSplit which makes the heuristic split them by count.
func (b *builder) find(rec Record, depth int) SplitCandidate {
	if depth >= b.maxDepth {
		b.stats.ForcedSplits++
		return NoSplit()
	}
	return b.heuristic.Find(rec)
}

// Assign the next slots in the final object order to the primitives of rec.
func (b *builder) leaf(rec Record) NodeRef {
	ref := NodeRef{
		Index: uint32(b.buildTrack),
		Count: uint32(rec.Size()),
	}

	for i := rec.Begin; i < rec.End; i++ {
		b.leaves[b.infos[i].Geom] = uint32(b.buildTrack)
		b.buildTrack++
	}

	b.stats.Leafs++
	return ref
}

// Allocate an inner node, build its children and store their references.
// The node slot is reserved before recursing so that the first inner node
// created ends up at index 0.
func (b *builder) node(children []Record, depth int) NodeRef {
	index := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{})

	var refs [Branching]NodeRef
	for i, child := range children {
		refs[i] = b.recurse(child, depth+1)
	}

	// Children may have grown the node list so lookup the node again
	node := &b.tree.Nodes[index]
	for slot := 0; slot < Branching; slot++ {
		if slot < len(children) {
			node.SetChild(slot, refs[slot], children[slot].Bounds)
		} else {
			node.Invalidate(slot)
		}
	}

	return NodeRef{Index: uint32(index), Count: InnerNode}
}
