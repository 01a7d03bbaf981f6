package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/achilleasa/wbvh/asset/compiler"
	"github.com/achilleasa/wbvh/asset/compiler/bvh"
	"github.com/achilleasa/wbvh/asset/scene/reader"
	"github.com/achilleasa/wbvh/types"
	"github.com/urfave/cli"
)

// Flags for the tree command.
var TreeFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "depth",
		Value: 2,
		Usage: "max tree depth to display",
	},
}

// Print an outline of the scene BVH trees.
func PrintTree(ctx *cli.Context) error {
	profile, err := loadProfile(ctx)
	if err != nil {
		return err
	}
	setupLogging(ctx, profile)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	parsedScene, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	sc, err := compiler.Compile(parsedScene, applyOverrides(ctx, profile.Build))
	if err != nil {
		return err
	}

	maxDepth := ctx.Int("depth")
	writeOutline(ctx.App.Writer, "<top level>", sc.TopLevel, maxDepth)
	for _, mesh := range sc.Meshes {
		writeOutline(ctx.App.Writer, mesh.Name, mesh.Tree, maxDepth)
	}
	return nil
}

// Write an indented outline of the tree nodes up to maxDepth.
func writeOutline(w io.Writer, name string, tree *bvh.Tree, maxDepth int) {
	fmt.Fprintf(w, "%s (%d objects, %d nodes)\n", name, len(tree.Objects), len(tree.Nodes))
	tree.Walk(func(ref bvh.NodeRef, bounds types.AABB, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		if ref.IsLeaf() {
			fmt.Fprintf(w, "%sleaf [%d, %d) %s\n", indent, ref.Index, ref.Index+ref.Count, fmtBounds(bounds))
			return false
		}

		node := &tree.Nodes[ref.Index]
		fmt.Fprintf(w, "%snode #%d (%d children) %s\n", indent, ref.Index, node.ChildCount(), fmtBounds(bounds))
		if depth+1 > maxDepth {
			fmt.Fprintf(w, "%s  ...\n", indent)
			return false
		}
		return true
	})
}

func fmtBounds(b types.AABB) string {
	return fmt.Sprintf(
		"(%.2f, %.2f, %.2f) - (%.2f, %.2f, %.2f)",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2],
	)
}
