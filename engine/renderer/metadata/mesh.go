package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
)

// Also used as result_data from job.
type MeshLoadParams struct {
	ResourceName string
	OutMesh      *RenderMesh
	MeshResource *Resource
}

type MeshReference struct {
	ReferenceCount uint64
	Mesh           *RenderMesh
	AutoRelease    bool
}

/** @brief The vertex attribute streams a mesh provides. */
type VertexAttributes uint16

const (
	VertexAttributePosition VertexAttributes = 1 << iota
	VertexAttributeNormal
	VertexAttributeTexCoord0
	VertexAttributeTexCoord1
	VertexAttributeLightmapUV
	VertexAttributeTangentBinormal
	VertexAttributeColour
	VertexAttributeJointAndWeight
	VertexAttributeMorphTarget
)

func (a VertexAttributes) Has(attr VertexAttributes) bool { return a&attr != 0 }

/**
 * @brief A discrete level of detail within a mesh subset. Each level is
 * an alternative index range paired with the camera distance at which the
 * level was generated.
 */
type SubsetLevelOfDetail struct {
	/** @brief The first index of the level's range. */
	IndexOffset uint32
	/** @brief The number of indices in the level's range. */
	IndexCount uint32
	/** @brief The distance this level was generated for, in mesh-local units. */
	Distance float32
}

/**
 * @brief A drawable index range of a mesh, paired with local bounds and
 * optional coarser levels of detail. Materials are bound per subset by
 * the model referencing the mesh, not by the mesh itself.
 */
type MeshSubset struct {
	/** @brief The subset Name, used for diagnostics. */
	Name string
	/** @brief The first index of the subset's full-detail range. */
	IndexOffset uint32
	/** @brief The number of indices in the subset's full-detail range. */
	IndexCount uint32
	/** @brief Mesh-local bounds of the subset. */
	Bounds math.Extents3D
	/** @brief Coarser levels of detail, ordered by increasing distance. May be empty. */
	Lods []SubsetLevelOfDetail
}

/**
 * @brief A node of a mesh's bounding volume hierarchy. Leaf nodes address
 * a contiguous triangle range; interior nodes only carry children.
 */
type MeshBvhNode struct {
	/** @brief Mesh-local bounds of everything below this node. */
	Bounds math.Extents3D
	/** @brief The children, nil on leaf nodes. */
	Left, Right *MeshBvhNode
	/** @brief The first triangle of a leaf's range. */
	TriangleOffset uint32
	/** @brief The number of triangles in a leaf's range. */
	TriangleCount uint32
}

func (n *MeshBvhNode) IsLeaf() bool { return n.Left == nil && n.Right == nil }

/**
 * @brief An acceleration structure over a mesh's triangles, built on demand
 * for meshes that participate in ray picking.
 */
type MeshBvh struct {
	/** @brief One root per subset, index-aligned with the mesh's subsets. */
	Roots []*MeshBvhNode
	/** @brief Per-triangle bounds, shared by all roots. */
	TriangleBounds []math.Extents3D
}

/**
 * @brief A renderable mesh: vertex/index data uploaded to the buffer
 * manager, carved into subsets. The CPU-side source data lives in a
 * MeshConfig; this is the resolved, GPU-resident form.
 */
type RenderMesh struct {
	/** @brief The unique mesh identifier. */
	UniqueID uint32
	/** @brief Incremented every time the mesh data is reloaded. */
	Generation uint8
	/** @brief The mesh name, matching the resource it was loaded from. */
	Name string
	/** @brief The drawable subsets of the mesh. */
	Subsets []*MeshSubset
	/** @brief The attribute streams the vertex layout provides. */
	Attributes VertexAttributes
	/** @brief Mesh-local bounds enclosing every subset. */
	Bounds math.Extents3D
	/** @brief The buffer manager handle for the vertex data. */
	VertexBuffer uint32
	/** @brief The buffer manager handle for the index data. */
	IndexBuffer uint32
	/** @brief The number of vertices uploaded. */
	VertexCount uint32
	/** @brief The number of indices uploaded. */
	IndexCount uint32
	/** @brief The picking acceleration structure, built only for pickable models. */
	Bvh *MeshBvh
	/** @brief The geometry is rendered as points rather than triangles. */
	PointsTopology bool
}

/**
 * @brief A square floating point texture holding skinning matrices.
 * Each bone occupies two rows of four RGBA32F texels (32 floats): the
 * bone transform followed by its inverse-transpose.
 */
type BoneTexture struct {
	/** @brief The backing texture, format RGBA32F, width == height. */
	Texture *Texture
	/** @brief The edge length of the square texture in texels. */
	Size uint32
	/** @brief The number of bones the texture holds. */
	BoneCount uint32
}

/**
 * @brief Computes the edge length of the square RGBA32F texture needed to
 * hold count bones at two rows of four texels per bone.
 */
func BoneTextureSize(count uint32) uint32 {
	if count == 0 {
		return 0
	}
	texels := count * 4 * 2
	size := uint32(math.Ceil(math.Sqrt(float32(texels))))
	if size == 0 {
		size = 1
	}
	return size
}
