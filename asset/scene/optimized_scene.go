package scene

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/olekukonko/tablewriter"

	"github.com/achilleasa/wbvh/asset/compiler/bvh"
	"github.com/achilleasa/wbvh/types"
)

// A mesh together with the BVH built over its triangles.
type Mesh struct {
	Name  string
	Tree  *bvh.Tree
	Stats bvh.Stats
}

// MeshInstance is the top-level BVH primitive; it points to an entry of
// the scene mesh list.
type MeshInstance struct {
	MeshIndex uint32
	BBox      types.AABB
}

// Get the mesh bounds.
func (mi MeshInstance) Bounds() types.AABB {
	return mi.BBox
}

// A compiled scene uses a two-level BVH layout: the top-level tree
// partitions mesh instances and every mesh has its own tree.
type Scene struct {
	TopLevel      *bvh.Tree
	TopLevelStats bvh.Stats
	Meshes        []Mesh

	// The options used for building the mesh trees.
	Options bvh.Options
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Primitives", "Nodes", "Leafs", "Max depth", "Fallbacks", "SAH cost", "Size"})

	var totalPrims, totalNodes, totalLeafs int
	nodeLists := make([]interface{}, 0, len(sc.Meshes)+1)
	appendRow := func(name string, tree *bvh.Tree, stats bvh.Stats) {
		table.Append([]string{
			name,
			fmt.Sprintf("%d", stats.Primitives),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.Leafs),
			fmt.Sprintf("%d", stats.MaxDepth),
			fmt.Sprintf("%d", stats.FallbackSplits),
			fmt.Sprintf("%.2f", tree.Cost(sc.Options.TraversalCost, sc.Options.IntersectCost)),
			fmtSize(tree.Nodes),
		})
	}

	if sc.TopLevel != nil {
		appendRow("<top level>", sc.TopLevel, sc.TopLevelStats)
	}

	// Totals only account for mesh geometry
	for _, mesh := range sc.Meshes {
		appendRow(mesh.Name, mesh.Tree, mesh.Stats)
		nodeLists = append(nodeLists, mesh.Tree.Nodes)
		totalPrims += mesh.Stats.Primitives
		totalNodes += mesh.Stats.Nodes
		totalLeafs += mesh.Stats.Leafs
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", totalPrims),
		fmt.Sprintf("%d", totalNodes),
		fmt.Sprintf("%d", totalLeafs),
		" ", " ", " ",
		fmtSize(nodeLists...),
	})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
