package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
)

/** @brief The name of the default mesh. */
const DefaultMeshName string = "default"

/** @brief CPU-side configuration for a single mesh subset. */
type SubsetConfig struct {
	/** @brief The subset Name. */
	Name string
	/** @brief The first index of the subset's full-detail range. */
	IndexOffset uint32
	/** @brief The number of indices in the subset's full-detail range. */
	IndexCount uint32
	/** @brief Coarser levels of detail, ordered by increasing distance. */
	Lods []SubsetLevelOfDetail
	/** @brief Minimum local extents of the subset. */
	MinExtents math.Vec3
	/** @brief Maximum local extents of the subset. */
	MaxExtents math.Vec3
}

/**
 * @brief CPU-side configuration a mesh is built from, either loaded from
 * a resource or generated procedurally. The buffer manager turns this
 * into a RenderMesh by uploading the vertex and index data.
 */
type MeshConfig struct {
	/** @brief The Name of the mesh. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices. */
	Indices []uint32
	/** @brief The attribute streams present in the vertex data. */
	Attributes VertexAttributes
	/** @brief The subsets the index data is carved into. When empty, a
	single subset covering the whole index range is assumed. */
	Subsets []SubsetConfig
	/** @brief The geometry is rendered as points rather than triangles. */
	PointsTopology bool
	/** @brief The names of the materials used by each subset, index-aligned.
	Carried for loaders whose source format binds materials to geometry. */
	MaterialNames []string
}

/**
 * @brief Derives the local bounds of the config's vertex positions.
 * Returns inverted bounds when the config has no vertices.
 */
func (c *MeshConfig) CalculateBounds() math.Extents3D {
	bounds := math.NewExtents3DEmpty()
	for i := range c.Vertices {
		bounds = bounds.Include(c.Vertices[i].Position)
	}
	return bounds
}
