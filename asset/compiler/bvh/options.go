package bvh

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Options control the BVH builder. The field tags allow options to be
// loaded from build profiles.
type Options struct {
	// Ranges with at most this many primitives always become leafs.
	LeafSize int `toml:"leaf_size" yaml:"leaf_size"`

	// Leaf capacity in blocks of Width primitives. Ranges with at most
	// BlockSize*Width primitives become leafs when that is cheaper than
	// splitting them.
	BlockSize int `toml:"block_size" yaml:"block_size"`

	// The native block width of the traversal engine.
	Width int `toml:"width" yaml:"width"`

	// Number of bins used by the SAH heuristic per axis.
	BinCount int `toml:"bin_count" yaml:"bin_count"`

	// Past this depth the builder stops evaluating SAH candidates and
	// splits ranges into equally sized halves.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`

	// Relative costs of a primitive intersection and a node traversal.
	IntersectCost float32 `toml:"intersect_cost" yaml:"intersect_cost"`
	TraversalCost float32 `toml:"traversal_cost" yaml:"traversal_cost"`
}

// Get the default builder options.
func DefaultOptions() Options {
	return Options{
		LeafSize:      4,
		BlockSize:     1,
		Width:         4,
		BinCount:      32,
		MaxDepth:      64,
		IntersectCost: 1,
		TraversalCost: 1,
	}
}

// The maximum number of primitives a leaf may hold.
func (o Options) MaxLeafSize() int {
	return o.BlockSize * o.Width
}

// Check that the options describe a buildable configuration.
func (o Options) Validate() error {
	switch {
	case o.LeafSize < 1:
		return fmt.Errorf("%w: leaf size must be >= 1; got %d", ErrInvalidOptions, o.LeafSize)
	case o.BlockSize < 1:
		return fmt.Errorf("%w: block size must be >= 1; got %d", ErrInvalidOptions, o.BlockSize)
	case o.Width < 1:
		return fmt.Errorf("%w: width must be >= 1; got %d", ErrInvalidOptions, o.Width)
	case o.BinCount < 2:
		return fmt.Errorf("%w: bin count must be >= 2; got %d", ErrInvalidOptions, o.BinCount)
	case o.MaxDepth < 1:
		return fmt.Errorf("%w: max depth must be >= 1; got %d", ErrInvalidOptions, o.MaxDepth)
	case o.LeafSize > o.MaxLeafSize():
		return fmt.Errorf("%w: leaf size %d exceeds leaf capacity %d (block size * width)", ErrInvalidOptions, o.LeafSize, o.MaxLeafSize())
	case !validCost(o.IntersectCost):
		return fmt.Errorf("%w: intersect cost must be a positive number; got %v", ErrInvalidOptions, o.IntersectCost)
	case !validCost(o.TraversalCost):
		return fmt.Errorf("%w: traversal cost must be a positive number; got %v", ErrInvalidOptions, o.TraversalCost)
	}
	return nil
}

func validCost(c float32) bool {
	return c > 0 && !math32.IsInf(c, 0) && !math32.IsNaN(c)
}
