package bvh

// Optimize rearranges the node list for traversal:
//
// - used child slots are moved to the front of each node ordered by
//   decreasing bbox half area
// - nodes are laid out in breadth-first order so that the children of a
//   node occupy neighboring entries
//
// The root stays at index 0 and leaf ranges are not modified.
func (t *Tree) Optimize() {
	if !t.Root.IsInner() || len(t.Nodes) == 0 {
		return
	}

	for i := range t.Nodes {
		t.Nodes[i].sortChildren()
	}

	// Collect node indices in breadth-first order
	order := make([]uint32, 0, len(t.Nodes))
	order = append(order, t.Root.Index)
	for head := 0; head < len(order); head++ {
		for _, child := range t.Nodes[order[head]].Children {
			if child.IsInner() {
				order = append(order, child.Index)
			}
		}
	}

	remap := make([]uint32, len(t.Nodes))
	for newIndex, oldIndex := range order {
		remap[oldIndex] = uint32(newIndex)
	}

	nodes := make([]Node, len(order))
	for newIndex, oldIndex := range order {
		node := t.Nodes[oldIndex]
		for slot, child := range node.Children {
			if child.IsInner() {
				node.Children[slot].Index = remap[child.Index]
			}
		}
		nodes[newIndex] = node
	}

	t.Nodes = nodes
	t.Root.Index = 0
}
