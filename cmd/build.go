package cmd

import (
	"errors"

	"github.com/achilleasa/wbvh/asset/compiler"
	"github.com/achilleasa/wbvh/asset/compiler/bvh"
	"github.com/achilleasa/wbvh/asset/scene/reader"
	"github.com/urfave/cli"
)

// Flags for overriding the builder options of the active profile.
var BuildFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "leaf-size",
		Usage: "ranges with at most this many primitives always become leafs",
	},
	cli.IntFlag{
		Name:  "block-size",
		Usage: "leaf capacity in blocks of width primitives",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "native block width of the traversal engine",
	},
	cli.IntFlag{
		Name:  "bins",
		Usage: "number of SAH bins per axis",
	},
	cli.IntFlag{
		Name:  "max-depth",
		Usage: "switch to equal-count splits past this depth",
	},
	cli.Float64Flag{
		Name:  "intersect-cost",
		Usage: "relative cost of a primitive intersection test",
	},
	cli.Float64Flag{
		Name:  "traversal-cost",
		Usage: "relative cost of a node traversal step",
	},
}

// Build BVH trees for a list of scene files and display tree statistics.
func BuildScene(ctx *cli.Context) error {
	profile, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, profile)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	opts := applyOverrides(ctx, profile.Build)
	if err = opts.Validate(); err != nil {
		return err
	}

	for _, sceneFile := range ctx.Args() {
		parsedScene, err := reader.ReadScene(sceneFile)
		if err != nil {
			return err
		}

		sc, err := compiler.Compile(parsedScene, opts)
		if err != nil {
			return err
		}

		logger.Noticef("BVH statistics for %s\n%s", sceneFile, sc.Stats())
	}

	return nil
}

// Override any builder options that were explicitly set via command flags.
func applyOverrides(ctx *cli.Context, opts bvh.Options) bvh.Options {
	if ctx.IsSet("leaf-size") {
		opts.LeafSize = ctx.Int("leaf-size")
	}
	if ctx.IsSet("block-size") {
		opts.BlockSize = ctx.Int("block-size")
	}
	if ctx.IsSet("width") {
		opts.Width = ctx.Int("width")
	}
	if ctx.IsSet("bins") {
		opts.BinCount = ctx.Int("bins")
	}
	if ctx.IsSet("max-depth") {
		opts.MaxDepth = ctx.Int("max-depth")
	}
	if ctx.IsSet("intersect-cost") {
		opts.IntersectCost = float32(ctx.Float64("intersect-cost"))
	}
	if ctx.IsSet("traversal-cost") {
		opts.TraversalCost = float32(ctx.Float64("traversal-cost"))
	}
	return opts
}
