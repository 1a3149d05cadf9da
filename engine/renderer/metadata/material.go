package metadata

import (
	"github.com/spaghettifunk/lumina/engine/math"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief Distinguishes the shading families a material can belong to. */
type MaterialKind int

const (
	/** @brief The legacy default material (diffuse/specular workflow). */
	MaterialKindDefault MaterialKind = iota
	/** @brief A physically based material using the metalness/roughness workflow. */
	MaterialKindPrincipled
	/** @brief A physically based material using the specular/glossiness workflow. */
	MaterialKindSpecularGlossy
	/** @brief A material driven entirely by user-authored shader code. */
	MaterialKindCustom
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialKindDefault:
		return "default"
	case MaterialKindPrincipled:
		return "principled"
	case MaterialKindSpecularGlossy:
		return "specular_glossy"
	case MaterialKindCustom:
		return "custom"
	}
	return "unknown"
}

/** @brief Determines whether a material participates in scene lighting. */
type MaterialLighting int

const (
	/** @brief The material ignores all scene lights. */
	MaterialLightingNone MaterialLighting = iota
	/** @brief The material is lit per fragment by the scene's light list. */
	MaterialLightingFragment
)

/** @brief The blend mode used when compositing a material over the backbuffer. */
type BlendMode int

const (
	/** @brief Standard source-over alpha blending. The only mode that can stay opaque. */
	BlendModeSourceOver BlendMode = iota
	/** @brief Screen blending. Always treated as transparent. */
	BlendModeScreen
	/** @brief Multiply blending. Always treated as transparent. */
	BlendModeMultiply
)

/** @brief Controls how the base colour alpha channel is interpreted. */
type AlphaMode int

const (
	/** @brief Alpha handling is derived from the other material properties. */
	AlphaModeDefault AlphaMode = iota
	/** @brief Fragments below the alpha cutoff are discarded; the surface stays opaque. */
	AlphaModeMask
	/** @brief The surface always blends, regardless of the resolved opacity. */
	AlphaModeBlend
	/** @brief Alpha is ignored entirely and the surface is forced opaque. */
	AlphaModeOpaque
)

/**
 * @brief Determines face culling during rendering. FaceCullModeNone marks
 * the material double-sided in its shader key.
 */
type FaceCullMode int

const (
	/** @brief No faces are culled; the surface is shaded double-sided. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

/** @brief Controls when a material writes into the depth buffer. */
type DepthDrawMode int

const (
	/** @brief Depth is written only while the surface is classified opaque. */
	DepthDrawOpaqueOnly DepthDrawMode = iota
	/** @brief Depth is always written, even for blended surfaces. */
	DepthDrawAlways
	/** @brief Depth is never written. */
	DepthDrawNever
	/** @brief Depth is written in a dedicated prepass before colour rendering. */
	DepthDrawOpaquePrePass
)

/**
 * @brief Capability flags declared by custom materials. Each flag feeds a
 * pass requirement or classification decision during frame preparation,
 * since custom shader code cannot be inspected directly.
 */
type CustomMaterialFlags uint8

const (
	/** @brief The shader blends with the backbuffer. Classifies as transparent. */
	CustomMaterialBlending CustomMaterialFlags = 1 << iota
	/** @brief The shader samples the backbuffer copy. */
	CustomMaterialScreenTexture
	/** @brief The shader samples mip levels of the backbuffer copy. */
	CustomMaterialScreenMipTexture
	/** @brief The shader samples the pre-rendered depth texture. */
	CustomMaterialDepthTexture
	/** @brief The shader samples the ambient occlusion texture. */
	CustomMaterialAoTexture
	/** @brief The material must be treated as dirty every frame. */
	CustomMaterialAlwaysDirty
)

func (f CustomMaterialFlags) Has(flag CustomMaterialFlags) bool {
	return f&flag != 0
}

type MaterialReference struct {
	ReferenceCount uint64
	Material       *Material
	AutoRelease    bool
}

/** @brief A single texture map binding within a material configuration. */
type MaterialMapConfig struct {
	/** @brief The name of the image resource backing the map. */
	Image string `toml:"image"`
	/** @brief The channel sampled for single-channel maps (r, g, b or a). */
	Channel string `toml:"channel,omitempty"`
}

/**
 * @brief Material configuration, typically loaded from a .lmt file.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string `toml:"name"`
	/** @brief The shading family (default, principled, specular_glossy, custom). */
	Kind string `toml:"kind"`
	/** @brief The name of the shader associated with a custom material. */
	ShaderName string `toml:"shader_name,omitempty"`
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease bool `toml:"auto_release"`
	/** @brief The lighting mode (none or fragment). */
	Lighting string `toml:"lighting,omitempty"`
	/** @brief The blend mode (source_over, screen or multiply). */
	BlendMode string `toml:"blend_mode,omitempty"`
	/** @brief The alpha mode (default, mask, blend or opaque). */
	AlphaMode string `toml:"alpha_mode,omitempty"`
	/** @brief The alpha cutoff applied in mask mode. */
	AlphaCutoff float32 `toml:"alpha_cutoff,omitempty"`
	/** @brief The face culling mode (none, front, back, front_and_back). */
	CullMode string `toml:"cull_mode,omitempty"`
	/** @brief The depth draw mode (opaque_only, always, never, opaque_pre_pass). */
	DepthDraw string `toml:"depth_draw,omitempty"`
	/** @brief The base colour, including alpha. */
	BaseColour [4]float32 `toml:"base_colour,omitempty"`
	/** @brief The uniform opacity multiplied into every renderable using this material. */
	Opacity *float32 `toml:"opacity,omitempty"`
	/** @brief Metalness amount, principled workflow. */
	Metalness float32 `toml:"metalness,omitempty"`
	/** @brief Surface roughness. */
	Roughness float32 `toml:"roughness,omitempty"`
	/** @brief Specular amount. */
	SpecularAmount float32 `toml:"specular_amount,omitempty"`
	/** @brief The emissive colour. */
	EmissiveColour [3]float32 `toml:"emissive_colour,omitempty"`
	/** @brief Transmission factor for refractive surfaces. */
	TransmissionFactor float32 `toml:"transmission_factor,omitempty"`
	/** @brief Wall thickness used for refraction. */
	ThicknessFactor float32 `toml:"thickness_factor,omitempty"`
	/** @brief Custom material capability flag names (blending, screen_texture,
	screen_mip_texture, depth_texture, ao_texture, always_dirty). */
	Capabilities []string `toml:"capabilities,omitempty"`
	/** @brief The texture maps, keyed by slot name (base_colour, diffuse,
	opacity, translucency, normal, metalness, roughness, specular, emissive,
	occlusion, height, transmission, thickness, clearcoat,
	clearcoat_roughness). */
	Maps map[string]MaterialMapConfig `toml:"maps,omitempty"`
}

/**
 * @brief A material, which represents the surface properties of renderable
 * geometry. Frame preparation reads materials to resolve opacity, classify
 * renderables into buckets and derive pass requirements, so every field
 * here is plain data resolved ahead of time by the material system.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The internal material id. Used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The material name. */
	Name string
	/** @brief The shading family of this material. */
	Kind MaterialKind
	/** @brief Whether the material is lit per fragment or unlit. */
	Lighting MaterialLighting
	/** @brief The blend mode used during compositing. */
	BlendMode BlendMode
	/** @brief How the base colour alpha channel is interpreted. */
	AlphaMode AlphaMode
	/** @brief The cutoff used when AlphaMode is mask. */
	AlphaCutoff float32
	/** @brief Face culling applied when drawing this material. */
	CullMode FaceCullMode
	/** @brief When this material writes depth. */
	DepthDraw DepthDrawMode
	/** @brief The material base colour, including alpha. */
	BaseColour math.Vec4
	/** @brief A uniform opacity multiplied into every renderable using this material. */
	Opacity float32
	/** @brief Metalness amount, principled workflow. */
	Metalness float32
	/** @brief Surface roughness. */
	Roughness float32
	/** @brief Specular amount. */
	SpecularAmount float32
	/** @brief The emissive colour. */
	EmissiveColour math.Vec3
	/** @brief Transmission factor. Values above zero make the surface refractive,
	which requires a mipmapped copy of the backbuffer. */
	TransmissionFactor float32
	/** @brief Wall thickness used for refraction. */
	ThicknessFactor float32

	/** @brief The base colour map. Never contributes to transparency detection. */
	BaseColourMap *TextureMap
	/** @brief The diffuse map used by the legacy default material. */
	DiffuseMap *TextureMap
	/** @brief The opacity map. Its presence alone forces transparency. */
	OpacityMap *TextureMap
	/** @brief The translucency map. */
	TranslucencyMap *TextureMap
	/** @brief The normal map. */
	NormalMap *TextureMap
	/** @brief The metalness map. */
	MetalnessMap *TextureMap
	/** @brief The roughness map. */
	RoughnessMap *TextureMap
	/** @brief The specular map. */
	SpecularMap *TextureMap
	/** @brief The emissive map. */
	EmissiveMap *TextureMap
	/** @brief The ambient occlusion map. */
	OcclusionMap *TextureMap
	/** @brief The height (parallax) map. */
	HeightMap *TextureMap
	/** @brief The transmission map. */
	TransmissionMap *TextureMap
	/** @brief The thickness map. */
	ThicknessMap *TextureMap
	/** @brief The clearcoat amount map, single channel. */
	ClearcoatMap *TextureMap
	/** @brief The clearcoat roughness map, single channel. */
	ClearcoatRoughnessMap *TextureMap

	/** @brief Capability flags for custom materials. Zero for other kinds. */
	Capabilities CustomMaterialFlags
	/** @brief The shader name associated with a custom material. */
	ShaderName string
	/** @brief The shader id resolved for custom materials. */
	ShaderID uint32
	/** @brief Set when the material changed since the previous frame. */
	Dirty bool
	/** @brief Synced to the renderer's current frame number when the material has been applied that frame. */
	RenderFrameNumber uint32
}

/**
 * @brief Indicates if the material can never be part of the opaque bucket,
 * independent of the resolved opacity value. Screen and multiply blending
 * composite against whatever is already in the backbuffer, an opacity map
 * modulates alpha per fragment, and blend alpha mode forces blending
 * outright, so all three make the surface transparent unconditionally.
 */
func (m *Material) HasUnconditionalTransparency() bool {
	if m.Kind == MaterialKindCustom {
		return m.Capabilities.Has(CustomMaterialBlending)
	}
	return m.BlendMode != BlendModeSourceOver || m.OpacityMap != nil || m.AlphaMode == AlphaModeBlend
}

/**
 * @brief Indicates if drawing this material requires a refraction copy of
 * the backbuffer with mip levels.
 */
func (m *Material) RequiresScreenMipTexture() bool {
	if m.Kind == MaterialKindCustom {
		return m.Capabilities.Has(CustomMaterialScreenMipTexture)
	}
	return m.TransmissionFactor > 0
}

/** @brief Indicates if drawing this material requires a copy of the backbuffer. */
func (m *Material) RequiresScreenTexture() bool {
	if m.Kind == MaterialKindCustom {
		return m.Capabilities.Has(CustomMaterialScreenTexture) || m.Capabilities.Has(CustomMaterialScreenMipTexture)
	}
	return m.TransmissionFactor > 0
}

/** @brief Indicates if drawing this material requires the pre-rendered depth texture. */
func (m *Material) RequiresDepthTexture() bool {
	if m.Kind == MaterialKindCustom {
		return m.Capabilities.Has(CustomMaterialDepthTexture)
	}
	return false
}

/** @brief Indicates if drawing this material requires the screen space ambient occlusion texture. */
func (m *Material) RequiresAoTexture() bool {
	if m.Kind == MaterialKindCustom {
		return m.Capabilities.Has(CustomMaterialAoTexture)
	}
	return false
}

/**
 * @brief Walks the material's assigned texture maps in a stable order,
 * invoking fn for each. Iteration stops early when fn returns false.
 */
func (m *Material) EachTextureMap(fn func(mapType ImageMapType, tm *TextureMap) bool) {
	maps := [...]struct {
		mapType ImageMapType
		tm      *TextureMap
	}{
		{ImageMapBaseColour, m.BaseColourMap},
		{ImageMapDiffuse, m.DiffuseMap},
		{ImageMapOpacity, m.OpacityMap},
		{ImageMapTranslucency, m.TranslucencyMap},
		{ImageMapNormal, m.NormalMap},
		{ImageMapMetalness, m.MetalnessMap},
		{ImageMapRoughness, m.RoughnessMap},
		{ImageMapSpecular, m.SpecularMap},
		{ImageMapEmissive, m.EmissiveMap},
		{ImageMapOcclusion, m.OcclusionMap},
		{ImageMapHeight, m.HeightMap},
		{ImageMapTransmission, m.TransmissionMap},
		{ImageMapThickness, m.ThicknessMap},
		{ImageMapClearcoat, m.ClearcoatMap},
		{ImageMapClearcoatRoughness, m.ClearcoatRoughnessMap},
	}
	for _, entry := range maps {
		if entry.tm == nil {
			continue
		}
		if !fn(entry.mapType, entry.tm) {
			return
		}
	}
}
