package bvh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/wbvh/types"
)

func buildTree(t *testing.T, items []Primitive, opts Options) (*Tree, Stats) {
	t.Helper()
	tree, stats, err := Build(items, opts)
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree, stats
}

func TestBuildNineCubes(t *testing.T) {
	opts := DefaultOptions()
	opts.LeafSize = 4
	opts.BlockSize = 1
	opts.Width = 4

	tree, stats := buildTree(t, cubesAlongX(9), opts)

	require.True(t, tree.Root.IsInner())
	assert.Equal(t, uint32(0), tree.Root.Index)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, 3, stats.Leafs)

	// Root splits 4 | 5 and the 5 primitive child is split again 2 | 3.
	// Optimize orders children by decreasing area.
	root := tree.Nodes[0]
	require.Equal(t, 3, root.ChildCount())
	expCounts := []uint32{4, 3, 2}
	total := 0
	for slot, expCount := range expCounts {
		ref := root.Children[slot]
		require.True(t, ref.IsLeaf())
		assert.Equal(t, expCount, ref.Count)
		total += int(ref.Count)
	}
	assert.Equal(t, 9, total)
	assert.False(t, root.Children[3].IsValid())

	assert.Equal(t, types.XYZ(0, 0, 0), tree.Bounds.Min)
	assert.Equal(t, types.XYZ(17, 1, 1), tree.Bounds.Max)
}

func TestBuildCoverageAndBounds(t *testing.T) {
	items := randomBoxes(42, 1000)
	opts := DefaultOptions()
	tree, stats := buildTree(t, items, opts)

	require.NoError(t, tree.Validate(opts.MaxLeafSize()))
	assert.Equal(t, 1000, stats.Primitives)
	assert.Equal(t, len(tree.Nodes), stats.Nodes)

	// The object list is a permutation of the input
	seen := make(map[int]int)
	for _, obj := range tree.Objects {
		seen[obj.(testBox).id]++
	}
	require.Len(t, seen, len(items))
	for id, count := range seen {
		assert.Equal(t, 1, count, "object %d", id)
	}

	leafs := 0
	leafObjects := 0
	tree.Walk(func(ref NodeRef, bounds types.AABB, depth int) bool {
		if ref.IsInner() {
			count := tree.Nodes[ref.Index].ChildCount()
			assert.GreaterOrEqual(t, count, 2)
			assert.LessOrEqual(t, count, Branching)
			return true
		}

		leafs++
		leafObjects += int(ref.Count)
		assert.LessOrEqual(t, int(ref.Count), opts.MaxLeafSize())
		for _, obj := range tree.Leaf(ref) {
			assert.True(t, bounds.Contains(obj.Bounds()))
			assert.True(t, tree.Bounds.Contains(obj.Bounds()))
		}
		return true
	})
	assert.Equal(t, stats.Leafs, leafs)
	assert.Equal(t, len(items), leafObjects)
}

func TestBuildDoesNotModifyInput(t *testing.T) {
	items := randomBoxes(3, 100)
	orig := append([]Primitive(nil), items...)

	_, _, err := Build(items, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, orig, items)
}

func TestBuildIsDeterministic(t *testing.T) {
	items := randomBoxes(1, 500)
	opts := DefaultOptions()

	tree1, _ := buildTree(t, items, opts)
	tree2, _ := buildTree(t, items, opts)

	assert.Equal(t, tree1.Root, tree2.Root)
	assert.Equal(t, tree1.Nodes, tree2.Nodes)
	assert.Equal(t, tree1.Objects, tree2.Objects)
	assert.Equal(t, tree1.Bounds, tree2.Bounds)
}

func TestBuildCoincidentPrimitives(t *testing.T) {
	opts := DefaultOptions()
	tree, stats := buildTree(t, coincidentPoints(100), opts)

	require.NoError(t, tree.Validate(opts.MaxLeafSize()))
	assert.True(t, tree.Root.IsInner())
	assert.Greater(t, stats.FallbackSplits, 0)
	// Equal-count splits keep the depth logarithmic
	assert.LessOrEqual(t, stats.MaxDepth, 8)
}

func TestBuildMaxDepthForcesCountSplits(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 1

	tree, stats := buildTree(t, randomBoxes(9, 300), opts)
	require.NoError(t, tree.Validate(opts.MaxLeafSize()))
	assert.Greater(t, stats.ForcedSplits, 0)
}

func TestBuildSinglePrimitive(t *testing.T) {
	items := cubesAlongX(1)
	tree, stats := buildTree(t, items, DefaultOptions())

	assert.Equal(t, NodeRef{Index: 0, Count: 1}, tree.Root)
	assert.Empty(t, tree.Nodes)
	assert.Equal(t, 1, stats.Leafs)
	assert.Equal(t, items[0].Bounds(), tree.Bounds)
	assert.Equal(t, items, tree.Leaf(tree.Root))
}

func TestBuildSmallSceneIsSingleLeaf(t *testing.T) {
	tree, _ := buildTree(t, cubesAlongX(3), DefaultOptions())
	assert.Equal(t, NodeRef{Index: 0, Count: 3}, tree.Root)
	assert.Empty(t, tree.Nodes)
}

func TestBuildErrors(t *testing.T) {
	_, _, err := Build(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyScene)

	items := []Primitive{
		testBox{0, types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))},
		testBox{1, types.EmptyAABB()},
	}
	_, _, err = Build(items, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidBounds)
	assert.Contains(t, err.Error(), "primitive 1")

	opts := DefaultOptions()
	opts.BinCount = 1
	_, _, err = Build(cubesAlongX(4), opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOptimizeLayout(t *testing.T) {
	tree, _ := buildTree(t, randomBoxes(5, 2000), DefaultOptions())
	require.Greater(t, len(tree.Nodes), 1)

	for index, node := range tree.Nodes {
		count := node.ChildCount()
		for slot := 0; slot < Branching; slot++ {
			child := node.Children[slot]
			if slot >= count {
				assert.False(t, child.IsValid())
				assert.True(t, node.Bounds(slot).IsEmpty())
				continue
			}
			if slot > 0 {
				assert.GreaterOrEqual(t, node.Bounds(slot-1).HalfArea(), node.Bounds(slot).HalfArea())
			}
			// Breadth-first layout places children after their parent
			if child.IsInner() {
				assert.Greater(t, int(child.Index), index)
			}
		}
	}

	// Optimizing again does not change the layout
	nodes := append([]Node(nil), tree.Nodes...)
	tree.Optimize()
	assert.Equal(t, nodes, tree.Nodes)
	assert.Equal(t, uint32(0), tree.Root.Index)
}

func TestValidateDetectsBrokenTrees(t *testing.T) {
	opts := DefaultOptions()
	tree, _ := buildTree(t, randomBoxes(11, 200), opts)
	require.NoError(t, tree.Validate(opts.MaxLeafSize()))

	// Leaf size bound
	assert.ErrorIs(t, tree.Validate(1), ErrInvariant)

	// Shrink a child bbox so its primitives escape
	broken := *tree
	broken.Nodes = append([]Node(nil), tree.Nodes...)
	broken.Nodes[0].MaxX[0] = broken.Nodes[0].MinX[0]
	assert.ErrorIs(t, broken.Validate(opts.MaxLeafSize()), ErrInvariant)

	// Drop an object
	broken = *tree
	broken.Objects = append([]Primitive(nil), tree.Objects...)
	broken.Objects = append(broken.Objects, testBox{id: -1, bounds: tree.Bounds})
	assert.ErrorIs(t, broken.Validate(opts.MaxLeafSize()), ErrInvariant)

	// Root must live at index 0
	broken = *tree
	broken.Root.Index = 1
	assert.ErrorIs(t, broken.Validate(opts.MaxLeafSize()), ErrRootNotZero)
}

func TestQueryMatchesBruteForce(t *testing.T) {
	items := randomBoxes(21, 800)
	tree, _ := buildTree(t, items, DefaultOptions())

	regions := []types.AABB{
		types.NewAABB(types.XYZ(10, 10, 10), types.XYZ(30, 30, 30)),
		types.NewAABB(types.XYZ(50, 0, 0), types.XYZ(51, 100, 100)),
		types.NewAABB(types.XYZ(-10, -10, -10), types.XYZ(-5, -5, -5)),
		tree.Bounds,
	}

	for _, region := range regions {
		expected := make(map[int]bool)
		for _, item := range items {
			if item.Bounds().Overlaps(region) {
				expected[item.(testBox).id] = true
			}
		}

		got := make(map[int]bool)
		tree.Query(region, func(obj Primitive) bool {
			got[obj.(testBox).id] = true
			return true
		})
		assert.Equal(t, expected, got)
	}

	// Early termination
	visits := 0
	tree.Query(tree.Bounds, func(Primitive) bool {
		visits++
		return visits < 5
	})
	assert.Equal(t, 5, visits)
}

func TestTreeCost(t *testing.T) {
	tree, _ := buildTree(t, cubesAlongX(3), DefaultOptions())
	// A single leaf with 3 primitives covering the root bbox
	assert.InDelta(t, 3, tree.Cost(1, 1), 1e-5)

	tree, _ = buildTree(t, randomBoxes(2, 500), DefaultOptions())
	cost := tree.Cost(1, 1)
	assert.Greater(t, cost, float32(1))
	// Much cheaper than testing every primitive
	assert.Less(t, cost, float32(500))
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	specs := map[string]func(*Options){
		"leaf size":      func(o *Options) { o.LeafSize = 0 },
		"block size":     func(o *Options) { o.BlockSize = 0 },
		"width":          func(o *Options) { o.Width = 0 },
		"bin count":      func(o *Options) { o.BinCount = 1 },
		"max depth":      func(o *Options) { o.MaxDepth = 0 },
		"leaf capacity":  func(o *Options) { o.LeafSize = 5 },
		"intersect cost": func(o *Options) { o.IntersectCost = 0 },
		"traversal cost": func(o *Options) { o.TraversalCost = -1 },
	}

	for name, mutate := range specs {
		opts := DefaultOptions()
		mutate(&opts)
		assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions, name)
	}
}
