package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/lumina/engine/math"
)

/** @brief The closed set of light variants. */
type LightType uint8

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
	LightTypeSpot
)

/** @brief Controls participation of a light in lightmap baking. */
type LightBakeMode uint8

const (
	LightBakeModeDisabled LightBakeMode = iota
	LightBakeModeIndirect
	LightBakeModeAll
)

/** @brief Default shadow map resolution exponent (2^10 = 1024 texels). */
const DefaultShadowMapResolution uint8 = 10

type Light struct {
	Type       LightType
	Brightness float32
	/** @brief Explicitly requests shadow casting for this light. */
	CastShadow bool
	/** @brief A fully baked light never renders real-time shadows. */
	FullyBaked bool
	/** @brief Shadow map dimension is 2^ShadowMapResolution. */
	ShadowMapResolution uint8
	BakeMode            LightBakeMode
	/**
	 * @brief Restricts illumination to the subtree rooted at this node.
	 * Nil scopes the light globally.
	 */
	Scope *Node
}

/** @brief Morph target vertex attribute contribution mask. */
type MorphAttributes uint8

const (
	MorphAttributePosition MorphAttributes = 1 << iota
	MorphAttributeNormal
	MorphAttributeTangent
	MorphAttributeBinormal
)

const (
	/** @brief Per-model cap on simultaneously active morph targets. */
	MaxMorphTargets = 8
	/** @brief Highest morph target index that still morphs normals. */
	MaxMorphTargetIndexSupportsNormals = 3
	/** @brief Highest morph target index that still morphs tangent space. */
	MaxMorphTargetIndexSupportsTangents = 1
)

type MorphTarget struct {
	Weight     float32
	Attributes MorphAttributes
}

/**
 * @brief Packed skinning palette. Each bone contributes two column-major
 * 4x4 matrices (joint matrix and its normal matrix), 32 floats per bone.
 */
type Skin struct {
	BoneData []float32
}

/** @brief Floats one bone occupies in a packed palette. */
const FloatsPerBone = 32

func (s *Skin) BoneCount() int {
	if s == nil {
		return 0
	}
	return len(s.BoneData) / FloatsPerBone
}

/** @brief One GPU instance: three transposed transform rows plus a color. */
type InstanceTableEntry struct {
	Row0  math.Vec4
	Row1  math.Vec4
	Row2  math.Vec4
	Color math.Vec4
}

/** @brief World-space position packed into the row w components. */
func (e InstanceTableEntry) Position() math.Vec3 {
	return math.Vec3{X: e.Row0.W, Y: e.Row1.W, Z: e.Row2.W}
}

type InstanceTable struct {
	Entries []InstanceTableEntry
	/** @brief Any instance carries per-instance alpha below one. */
	HasTransparency bool
	/** @brief Requests camera-relative depth sorting of the entries. */
	DepthSortingEnabled bool
	/** @brief Bumped by the author whenever Entries changes. */
	Serial uint32
}

type Model struct {
	/** @brief Mesh resolved by name through the buffer manager. */
	MeshName string
	/**
	 * @brief Material names per submesh, resolved through the material
	 * registry. Fewer names than submeshes reuses the last.
	 */
	MaterialNames []string

	CastsShadows        bool
	ReceivesShadows     bool
	ReceivesReflections bool
	CastsReflections    bool

	Pickable bool

	UsedInBakedLighting bool
	/** @brief Non-empty key persists a baked lightmap for this model. */
	LightmapKey string

	/** @brief Additive view-space sort bias, squared with sign preserved. */
	DepthBias float32

	/** @brief Scales LOD selection; <= 0 disables LOD for this model. */
	LevelOfDetailBias float32

	Skin         *Skin
	SkeletonNode *Node
	MorphTargets []*MorphTarget

	InstanceTable *InstanceTable

	/** @brief Working skinning state maintained by the preparation pass. */
	BoneData        []float32
	BoneCount       int
	MorphWeights    [MaxMorphTargets]float32
	MorphAttributes [MaxMorphTargets]MorphAttributes
}

func (m *Model) Instancing() bool {
	return m.InstanceTable != nil && len(m.InstanceTable.Entries) > 0
}

type Particles struct {
	ParticleCount    int
	HasTransparency  bool
	CastsReflections bool
	/** @brief Simulation-space bounds of the particle buffer. */
	Bounds math.Extents3D
	/** @brief Optional sprite/color-table textures by resource name. */
	SpriteName     string
	ColorTableName string
	/** @brief Seed for the deterministic particle stream. */
	Seed uint64
}

type Item2D struct {
	/** @brief Authored z-order; higher draws later within a parent. */
	ZOrder int
	/** @brief Optional text run measured by the font system. */
	Text     string
	FontName string
	/** @brief Glyph quad count resolved from the text run. */
	GlyphCount int
	/** @brief Combined model-view-projection, filled during preparation. */
	MVP math.Mat4
}

type ReflectionProbe struct {
	BoxSize   math.Vec3
	BoxOffset math.Vec3
	/** @brief Corrects reflections for the probe box's finite size. */
	ParallaxCorrection bool
	/**
	 * @brief Baked capture by resource name. Empty means the probe is
	 * captured live, which only happens when at least one renderable is
	 * assigned to it.
	 */
	TextureName string
	/** @brief Stable identity of the probe's capture target. */
	CaptureID uuid.UUID
}

/**
 * @brief The texture identity of the probe's capture: the baked resource
 * name when one is authored, otherwise a name derived from CaptureID so a
 * live capture lands in the same cubemap frame over frame.
 */
func (p *ReflectionProbe) CaptureName() string {
	if p.TextureName != "" {
		return p.TextureName
	}
	return "probe_capture_" + p.CaptureID.String()
}

type Skeleton struct {
	/** @brief Highest joint index in the hierarchy. */
	MaxIndex int32
	/** @brief Set when a joint's transform changed since the last frame. */
	BoneTransformsDirty bool
}

type Joint struct {
	Index int32
	/** @brief Inverse of the joint's bind-pose global transform. */
	InverseBindPose math.Mat4
}
