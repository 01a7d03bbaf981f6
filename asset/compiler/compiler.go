package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/wbvh/asset/compiler/bvh"
	"github.com/achilleasa/wbvh/asset/compiler/input"
	"github.com/achilleasa/wbvh/asset/scene"
	"github.com/achilleasa/wbvh/log"
)

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger
}

// Compile a scene representation parsed by a scene reader into a two-level
// BVH layout using the supplied builder options.
func Compile(parsedScene *input.Scene, opts bvh.Options) (*scene.Scene, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		optimizedScene: &scene.Scene{
			Options: opts,
		},
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	err := compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Generate a two-level BVH tree for the scene. A BVH tree is generated for
// each scene mesh and the top level BVH tree partitions the mesh bounds so
// that each mesh ends up in its own leaf.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	meshes := make([]*input.Mesh, 0, len(sc.parsedScene.Meshes))
	for _, pm := range sc.parsedScene.Meshes {
		if len(pm.Primitives) == 0 {
			sc.logger.Warningf(`skipping mesh "%s" without primitives`, pm.Name)
			continue
		}
		meshes = append(meshes, pm)
	}
	if len(meshes) == 0 {
		return fmt.Errorf("compiler: scene does not define any geometry: %w", bvh.ErrEmptyScene)
	}

	sc.optimizedScene.Meshes = make([]scene.Mesh, len(meshes))
	instances := make([]bvh.Primitive, len(meshes))
	for mIndex, pm := range meshes {
		volList := make([]bvh.Primitive, len(pm.Primitives))
		for index, prim := range pm.Primitives {
			volList[index] = prim
		}

		sc.logger.Infof(`building BVH tree for "%s" (%d primitives)`, pm.Name, len(pm.Primitives))
		tree, stats, err := bvh.Build(volList, sc.optimizedScene.Options)
		if err != nil {
			return fmt.Errorf("compiler: could not partition mesh %q: %w", pm.Name, err)
		}

		sc.optimizedScene.Meshes[mIndex] = scene.Mesh{
			Name:  pm.Name,
			Tree:  tree,
			Stats: stats,
		}
		instances[mIndex] = scene.MeshInstance{
			MeshIndex: uint32(mIndex),
			BBox:      pm.Bounds(),
		}
	}

	// Partition mesh instances so that each instance ends up in its own BVH leaf.
	sc.logger.Infof("building scene BVH tree (%d meshes)", len(instances))
	topOpts := sc.optimizedScene.Options
	topOpts.LeafSize = 1
	topOpts.BlockSize = 1
	topOpts.Width = 1
	tree, stats, err := bvh.Build(instances, topOpts)
	if err != nil {
		return fmt.Errorf("compiler: could not partition scene meshes: %w", err)
	}
	sc.optimizedScene.TopLevel = tree
	sc.optimizedScene.TopLevelStats = stats

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
