package bvh

import (
	"math/rand"

	"github.com/achilleasa/wbvh/types"
)

type testBox struct {
	id     int
	bounds types.AABB
}

func (b testBox) Bounds() types.AABB {
	return b.bounds
}

// Unit cubes placed along the X axis with a gap of one unit between them.
func cubesAlongX(count int) []Primitive {
	items := make([]Primitive, count)
	for i := range items {
		x := float32(2 * i)
		items[i] = testBox{id: i, bounds: types.NewAABB(types.XYZ(x, 0, 0), types.XYZ(x+1, 1, 1))}
	}
	return items
}

// Boxes with random position and size inside a 100 unit cube.
func randomBoxes(seed int64, count int) []Primitive {
	rng := rand.New(rand.NewSource(seed))
	items := make([]Primitive, count)
	for i := range items {
		min := types.XYZ(rng.Float32()*100, rng.Float32()*100, rng.Float32()*100)
		size := types.XYZ(rng.Float32()*5, rng.Float32()*5, rng.Float32()*5)
		items[i] = testBox{id: i, bounds: types.NewAABB(min, min.Add(size))}
	}
	return items
}

// Identical point boxes.
func coincidentPoints(count int) []Primitive {
	items := make([]Primitive, count)
	p := types.XYZ(3, 3, 3)
	for i := range items {
		items[i] = testBox{id: i, bounds: types.NewAABB(p, p)}
	}
	return items
}

func infosFor(items []Primitive) ([]PrimitiveInfo, Record) {
	infos, root, err := collect(items)
	if err != nil {
		panic(err)
	}
	return infos, root
}
