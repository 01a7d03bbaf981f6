package input

import "github.com/achilleasa/wbvh/types"

// A triangle primitive
type Primitive struct {
	Vertices [3]types.Vec3

	bbox types.AABB
}

// Create a triangle primitive and calculate its AABB.
func NewPrimitive(v0, v1, v2 types.Vec3) *Primitive {
	prim := &Primitive{Vertices: [3]types.Vec3{v0, v1, v2}}
	prim.bbox = types.EmptyAABB()
	for _, v := range prim.Vertices {
		prim.bbox.ExpandPoint(v)
	}
	return prim
}

// Get the primitive AABB.
func (prim *Primitive) Bounds() types.AABB {
	return prim.bbox
}

// A mesh is constructed by a list of primitive.
type Mesh struct {
	Name       string
	Primitives []*Primitive

	bbox            types.AABB
	bboxNeedsUpdate bool
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Primitives:      make([]*Primitive, 0),
		bboxNeedsUpdate: true,
	}
}

// Append a primitive to the mesh.
func (m *Mesh) AddPrimitive(prim *Primitive) {
	m.Primitives = append(m.Primitives, prim)
	m.bboxNeedsUpdate = true
}

// Get mesh bounding box.
func (m *Mesh) Bounds() types.AABB {
	if m.bboxNeedsUpdate {
		m.bbox = types.EmptyAABB()
		for _, prim := range m.Primitives {
			m.bbox.Expand(prim.Bounds())
		}
		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// The scene contains all elements that are processed by the scene compiler.
type Scene struct {
	Meshes []*Mesh
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes: make([]*Mesh, 0),
	}
}

// Total number of primitives in all scene meshes.
func (sc *Scene) PrimitiveCount() int {
	count := 0
	for _, mesh := range sc.Meshes {
		count += len(mesh.Primitives)
	}
	return count
}
