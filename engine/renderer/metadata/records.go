package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/scene"
)

const (
	/** @brief Opacity at or below this is treated as fully transparent. */
	MinRenderableOpacity float32 = 0.01
	/** @brief Opacity at or above this is snapped to fully opaque. */
	OpaqueOpacityThreshold float32 = 0.99
)

/** @brief Identifies what kind of renderable a record was produced from. */
type RenderableKind int

const (
	/** @brief A single mesh subset of a model. */
	RenderableKindSubset RenderableKind = iota
	/** @brief A particle emitter. */
	RenderableKindParticles
	/** @brief A flat 2d item rendered inside the 3d scene. */
	RenderableKindItem2D
)

func (k RenderableKind) String() string {
	switch k {
	case RenderableKindSubset:
		return "subset"
	case RenderableKindParticles:
		return "particles"
	case RenderableKindItem2D:
		return "item2d"
	}
	return "unknown"
}

/**
 * @brief Per-renderable state bits resolved during frame preparation.
 * The transparency and pass-requirement bits drive bucket classification;
 * the attribute bits mirror what the mesh vertex layout provides so shader
 * variant selection never has to touch mesh data again.
 */
type RenderableFlags uint32

const (
	/** @brief The renderable changed since the previous frame. */
	RenderableDirty RenderableFlags = 1 << iota
	/** @brief The resolved opacity or material forces blending. */
	RenderableHasTransparency
	/** @brief The resolved opacity reached zero; kept only for bookkeeping passes. */
	RenderableCompletelyTransparent
	/** @brief The renderable participates in ray picking. */
	RenderablePickable
	/** @brief The renderable renders into shadow maps. */
	RenderableCastsShadows
	/** @brief The renderable samples shadow maps. */
	RenderableReceivesShadows
	/** @brief The renderable renders into reflection probe cubemaps. */
	RenderableCastsReflections
	/** @brief The renderable samples reflection probes. */
	RenderableReceivesReflections
	/** @brief The renderable contributes to baked lightmaps. */
	RenderableUsedInBakedLighting
	/** @brief The renderable samples a backbuffer copy. */
	RenderableRequiresScreenTexture
	/** @brief The mesh provides vertex positions. */
	RenderableHasAttributePosition
	/** @brief The mesh provides vertex normals. */
	RenderableHasAttributeNormal
	/** @brief The mesh provides the first texture coordinate set. */
	RenderableHasAttributeTexCoord0
	/** @brief The mesh provides the second texture coordinate set. */
	RenderableHasAttributeTexCoord1
	/** @brief The mesh provides a dedicated lightmap coordinate set. */
	RenderableHasAttributeLightmapUV
	/** @brief The mesh provides tangents and binormals. */
	RenderableHasAttributeTangentBinormal
	/** @brief The mesh provides vertex colours. */
	RenderableHasAttributeColour
	/** @brief The mesh provides joint indices and weights for skinning. */
	RenderableHasAttributeJointAndWeight
	/** @brief The mesh provides morph target deltas. */
	RenderableHasAttributeMorphTarget
	/** @brief The geometry is rendered as points rather than triangles. */
	RenderablePointsTopology
)

func (f RenderableFlags) Has(flag RenderableFlags) bool { return f&flag != 0 }

func (f *RenderableFlags) Set(flag RenderableFlags, on bool) {
	if on {
		*f |= flag
	} else {
		*f &^= flag
	}
}

/** @brief Marks the renderable transparent. Transparency never downgrades. */
func (f *RenderableFlags) SetHasTransparency(on bool) {
	if on {
		*f |= RenderableHasTransparency
	}
}

/** @brief The classification buckets renderables are collected into. */
type RenderBucket int

const (
	/** @brief Fully opaque surfaces, front-to-back sorted. */
	BucketOpaque RenderBucket = iota
	/** @brief Blended surfaces, back-to-front sorted. */
	BucketTransparent
	/** @brief Surfaces that sample a backbuffer copy, back-to-front sorted. */
	BucketScreenTexture
	/** @brief Surfaces participating in lightmap baking. */
	BucketBakedLighting
)

func (b RenderBucket) String() string {
	switch b {
	case BucketOpaque:
		return "opaque"
	case BucketTransparent:
		return "transparent"
	case BucketScreenTexture:
		return "screen_texture"
	case BucketBakedLighting:
		return "baked_lighting"
	}
	return "unknown"
}

/** @brief Identifies the material slot a renderable image feeds. */
type ImageMapType int

const (
	ImageMapBaseColour ImageMapType = iota
	ImageMapDiffuse
	ImageMapOpacity
	ImageMapTranslucency
	ImageMapNormal
	ImageMapMetalness
	ImageMapRoughness
	ImageMapSpecular
	ImageMapEmissive
	ImageMapOcclusion
	ImageMapHeight
	ImageMapTransmission
	ImageMapThickness
	ImageMapClearcoat
	ImageMapClearcoatRoughness
)

/**
 * @brief Indicates whether a transparent texture bound to this slot makes
 * the surface itself transparent. Base colour alpha is deliberately left
 * out: its alpha channel is only honoured through the material's alpha
 * mode, not through texture content.
 */
func (t ImageMapType) ContributesTransparency() bool {
	switch t {
	case ImageMapDiffuse, ImageMapOpacity, ImageMapTranslucency:
		return true
	}
	return false
}

/**
 * @brief A single node in the per-record image chain. Frame preparation
 * links every texture map a material binds into a singly linked list so
 * later passes can walk the maps without re-resolving the material.
 */
type RenderableImage struct {
	/** @brief The material slot this image feeds. */
	MapType ImageMapType
	/** @brief The texture map being sampled. */
	Map *TextureMap
	/** @brief The next image in the chain, or nil at the tail. */
	Next *RenderableImage
}

/**
 * @brief Per-model shared state referenced by each of the model's subset
 * records. Built once per model during preparation so per-subset work
 * never recomputes matrices or scoped light lists.
 */
type ModelContext struct {
	/** @brief The model node this context was prepared from. */
	Model *scene.Node
	/** @brief The model's global transform at preparation time. */
	GlobalTransform math.Mat4
	/** @brief Model-view-projection for the frame's camera. */
	ModelViewProjection math.Mat4
	/** @brief Inverse-transpose of the global transform, for normals. */
	NormalMatrix math.Mat4
	/**
	 * @brief The light list in effect for this model. Points at the layer's
	 * global list unless scoped lights produced a bespoke list.
	 */
	Lights []ShaderLight
	/** @brief The bone transform texture for skinned models, or nil. */
	BoneTexture *BoneTexture
	/** @brief Resolved morph target weights, capped at MaxMorphTargets. */
	MorphWeights []float32
	/** @brief Per-target attribute masks matching MorphWeights. */
	MorphAttributes []scene.MorphAttributes
}

/**
 * @brief A single prepared renderable. One record is produced per visible
 * model subset, particle emitter and 2d item each frame; classification
 * places the record in exactly one of opaque, transparent or screen
 * texture buckets (plus, additively, the baked lighting bucket).
 */
type RenderableRecord struct {
	/** @brief What kind of renderable produced this record. */
	Kind RenderableKind
	/** @brief Resolved state bits. */
	Flags RenderableFlags
	/** @brief The scene node the record was produced from. */
	Node *scene.Node
	/** @brief The world transform used for rendering. */
	GlobalTransform math.Mat4
	/** @brief World-space bounds used for sorting, probes and picking. */
	Bounds math.Extents3D
	/** @brief The resolved opacity, material and node combined. */
	Opacity float32
	/** @brief Depth bias applied during distance sorting, signed. */
	DepthBias float32
	/** @brief The resolved material for subset records, nil otherwise. */
	Material *Material
	/** @brief The mesh the subset belongs to, subset records only. */
	Mesh *RenderMesh
	/** @brief The mesh subset being drawn, subset records only. */
	Subset *MeshSubset
	/** @brief The chosen level of detail index into the subset's lod list.
	Zero selects the full-detail geometry. */
	SubsetLevelOfDetail uint32
	/** @brief Shared per-model state, subset records only. */
	ModelContext *ModelContext
	/** @brief Head of the image chain built from the material's texture maps. */
	FirstImage *RenderableImage
	/** @brief The shader variant key resolved for this record. */
	ShaderKey ShaderKey
	/** @brief Seed of the emitter's deterministic stream, particle records only. */
	ParticleSeed uint64
	/** @brief The reflection probe assigned to this record, or nil. */
	Probe *scene.Node
	/** @brief The instance table serial observed at preparation, instanced draws only. */
	InstanceSerial uint32
}

/** @brief Appends an image to the record's chain, preserving insertion order. */
func (r *RenderableRecord) AppendImage(img *RenderableImage) {
	if r.FirstImage == nil {
		r.FirstImage = img
		return
	}
	tail := r.FirstImage
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = img
}

/** @brief Indicates if the record draws instanced geometry. */
func (r *RenderableRecord) Instancing() bool {
	return r.Node != nil && r.Node.Model != nil && r.Node.Model.Instancing()
}

/**
 * @brief A sortable reference to a record paired with its signed squared
 * distance from the camera along the view direction.
 */
type RenderableHandle struct {
	Record           *RenderableRecord
	CameraDistanceSq float32
}

/**
 * @brief One model's contribution to lightmap baking: the model node and
 * every record it emitted this frame. Handed to the baker callback by the
 * one-shot baking path.
 */
type BakedLightingModel struct {
	Model       *scene.Node
	Renderables []RenderableHandle
}
