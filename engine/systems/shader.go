package systems

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/** @brief Configuration for the shader variant cache. */
type ShaderSystemConfig struct {
	/** @brief The number of variants the cache is expected to stay under. */
	MaxVariantCount uint32
}

// UBO strides are padded to the largest minimum alignment seen in the
// wild (256 bytes on some nVidia parts).
const shaderUboAlignment uint64 = 256

// One packed light on the GPU: position, direction, colour and params
// vectors plus a shadow matrix.
const shaderLightStride uint16 = 128

/**
 * @brief Compiles and caches one shader variant per distinct shader key.
 * Renderable records built during frame preparation carry a key; passes
 * exchange the key here for the variant that can draw the record. Equal
 * keys always yield the same variant pointer, and variants live until
 * Shutdown.
 */
type ShaderSystem struct {
	config  ShaderSystemConfig
	buffers *BufferManager

	mutex    sync.RWMutex
	variants map[metadata.ShaderKey]*metadata.ShaderVariant

	budgetWarned bool
}

func NewShaderSystem(config ShaderSystemConfig, buffers *BufferManager) (*ShaderSystem, error) {
	if config.MaxVariantCount == 0 {
		err := fmt.Errorf("shader system config.MaxVariantCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if buffers == nil {
		err := fmt.Errorf("shader system requires a buffer manager")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		config:   config,
		buffers:  buffers,
		variants: make(map[metadata.ShaderKey]*metadata.ShaderVariant),
	}, nil
}

/**
 * @brief Returns the variant compiled for the given key, building and
 * caching it on first sight. Safe for concurrent use.
 */
func (ss *ShaderSystem) AcquireVariant(key metadata.ShaderKey) *metadata.ShaderVariant {
	ss.mutex.RLock()
	variant, found := ss.variants[key]
	ss.mutex.RUnlock()
	if found {
		return variant
	}

	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	if variant, found := ss.variants[key]; found {
		return variant
	}
	return ss.buildVariant(key)
}

/** @brief Looks up an already-compiled variant without building one. */
func (ss *ShaderSystem) Variant(key metadata.ShaderKey) (*metadata.ShaderVariant, bool) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	variant, found := ss.variants[key]
	return variant, found
}

/** @brief The number of variants currently held. */
func (ss *ShaderSystem) VariantCount() int {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return len(ss.variants)
}

/**
 * @brief Snapshots all cached variants sorted by key. The order is the
 * strict total key order, so repeated calls over the same cache contents
 * return the same sequence.
 */
func (ss *ShaderSystem) Variants() []*metadata.ShaderVariant {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	out := make([]*metadata.ShaderVariant, 0, len(ss.variants))
	for _, variant := range ss.variants {
		out = append(out, variant)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}

/** @brief Destroys all cached variants and releases their identifiers. */
func (ss *ShaderSystem) Shutdown() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	for key, variant := range ss.variants {
		variant.State = metadata.SHADER_STATE_NOT_CREATED
		if err := core.IdentifierReleaseID(variant.ID); err != nil {
			core.LogError(err.Error())
			return err
		}
		delete(ss.variants, key)
	}
	return nil
}

// buildVariant derives the full attribute, uniform and sampler layout a
// key implies. Callers hold the write lock.
func (ss *ShaderSystem) buildVariant(key metadata.ShaderKey) *metadata.ShaderVariant {
	if uint32(len(ss.variants)) >= ss.config.MaxVariantCount && !ss.budgetWarned {
		core.LogWarn("shader variant count %d exceeds the configured budget of %d", len(ss.variants)+1, ss.config.MaxVariantCount)
		ss.budgetWarned = true
	}

	variant := &metadata.ShaderVariant{
		ID:                   core.IdentifierAcquireNewID(ss),
		Name:                 variantName(key),
		Key:                  key,
		State:                metadata.SHADER_STATE_UNINITIALIZED,
		UniformLookup:        make(map[string]uint16),
		RequiredUboAlignment: shaderUboAlignment,
		RenderFrameNumber:    metadata.InvalidIDUint64,
	}

	ss.addAttributes(variant)
	ss.addUniforms(variant)

	variant.GlobalUboStride = metadata.GetAligned(variant.GlobalUboSize, variant.RequiredUboAlignment)
	variant.UboStride = metadata.GetAligned(variant.UboSize, variant.RequiredUboAlignment)
	variant.State = metadata.SHADER_STATE_INITIALIZED

	ss.variants[key] = variant
	core.LogDebug("compiled shader variant '%s' (%s)", variant.Name, key.String())
	return variant
}

// addAttributes declares the vertex inputs the key's features consume.
func (ss *ShaderSystem) addAttributes(variant *metadata.ShaderVariant) {
	key := variant.Key

	ss.addAttribute(variant, "in_position", metadata.ShaderAttribTypeFloat32_3)
	if key.HasFeature(metadata.ShaderFeatureLighting) {
		ss.addAttribute(variant, "in_normal", metadata.ShaderAttribTypeFloat32_3)
	}
	if anyImageMap(key) {
		ss.addAttribute(variant, "in_texcoord", metadata.ShaderAttribTypeFloat32_2)
	}
	if key.HasImageMap(metadata.ImageMapNormal) || key.HasImageMap(metadata.ImageMapHeight) {
		ss.addAttribute(variant, "in_tangent", metadata.ShaderAttribTypeFloat32_3)
	}
	if key.HasFeature(metadata.ShaderFeatureVertexColours) {
		ss.addAttribute(variant, "in_colour", metadata.ShaderAttribTypeFloat32_4)
	}
	if key.HasFeature(metadata.ShaderFeatureSkinning) {
		ss.addAttribute(variant, "in_joints", metadata.ShaderAttribTypeFloat32_4)
		ss.addAttribute(variant, "in_weights", metadata.ShaderAttribTypeFloat32_4)
	}
	if key.HasFeature(metadata.ShaderFeatureInstancing) {
		ss.addAttribute(variant, "in_instance_model", metadata.ShaderAttribTypeMatrix4)
	}
	if key.HasFeature(metadata.ShaderFeatureLightmap) {
		ss.addAttribute(variant, "in_lightmap_uv", metadata.ShaderAttribTypeFloat32_2)
	}
}

// addUniforms declares per-frame globals, per-draw instance data and the
// per-object model matrix. Samplers for bound texture maps, deformation
// textures and pass attachments follow the same path.
func (ss *ShaderSystem) addUniforms(variant *metadata.ShaderVariant) {
	key := variant.Key

	// Globals, updated once per frame.
	ss.addUniform(variant, "projection", 64, metadata.ShaderUniformTypeMatrix4, metadata.ShaderScopeGlobal)
	ss.addUniform(variant, "view", 64, metadata.ShaderUniformTypeMatrix4, metadata.ShaderScopeGlobal)
	ss.addUniform(variant, "view_position", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeGlobal)
	ss.addUniform(variant, "ambient_colour", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeGlobal)
	if key.HasFeature(metadata.ShaderFeatureLighting) && key.LightCount() > 0 {
		ss.addUniform(variant, "lights", shaderLightStride*uint16(key.LightCount()), metadata.ShaderUniformTypeCustom, metadata.ShaderScopeGlobal)
	}

	for i := uint32(0); i < key.ShadowMapCount(); i++ {
		ss.addSampler(variant, fmt.Sprintf("shadow_map_%d", i), metadata.ShaderScopeGlobal, metadata.TextureRepeatClampToBorder)
	}
	if key.HasFeature(metadata.ShaderFeatureSsao) {
		ss.addSampler(variant, "ssao_texture", metadata.ShaderScopeGlobal, metadata.TextureRepeatClampToEdge)
	}
	if key.HasFeature(metadata.ShaderFeatureScreenTexture) || key.HasFeature(metadata.ShaderFeatureScreenMipTexture) {
		ss.addSampler(variant, "screen_texture", metadata.ShaderScopeGlobal, metadata.TextureRepeatClampToEdge)
	}
	if key.HasFeature(metadata.ShaderFeatureDepthTexture) {
		ss.addSampler(variant, "depth_texture", metadata.ShaderScopeGlobal, metadata.TextureRepeatClampToEdge)
	}
	if key.HasFeature(metadata.ShaderFeatureReflectionProbe) {
		ss.addSampler(variant, "probe_texture", metadata.ShaderScopeGlobal, metadata.TextureRepeatClampToEdge)
	}

	// Instance data, updated per material binding.
	ss.addUniform(variant, "base_colour", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeInstance)
	ss.addUniform(variant, "emissive_colour", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeInstance)
	// metalness, roughness, specular amount, opacity
	ss.addUniform(variant, "material_params", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeInstance)
	// alpha cutoff, transmission factor, thickness factor
	ss.addUniform(variant, "alpha_params", 16, metadata.ShaderUniformTypeFloat32_4, metadata.ShaderScopeInstance)

	for _, mapType := range imageMapOrder {
		if key.HasImageMap(mapType) {
			ss.addSampler(variant, imageMapSamplerName(mapType), metadata.ShaderScopeInstance, metadata.TextureRepeatRepeat)
		}
	}
	if key.HasFeature(metadata.ShaderFeatureLightmap) {
		ss.addSampler(variant, "lightmap_texture", metadata.ShaderScopeInstance, metadata.TextureRepeatClampToEdge)
	}
	if key.HasFeature(metadata.ShaderFeatureSkinning) {
		ss.addSampler(variant, "bone_texture", metadata.ShaderScopeInstance, metadata.TextureRepeatClampToEdge)
	}
	if key.HasFeature(metadata.ShaderFeatureMorphing) {
		ss.addSampler(variant, "morph_texture", metadata.ShaderScopeInstance, metadata.TextureRepeatClampToEdge)
		if n := key.MorphTargetCount(); n > 0 {
			// Weights are packed four to a vector.
			ss.addUniform(variant, "morph_weights", uint16(16*((n+3)/4)), metadata.ShaderUniformTypeCustom, metadata.ShaderScopeInstance)
		}
	}

	// Per-object data.
	ss.addUniform(variant, "model", 64, metadata.ShaderUniformTypeMatrix4, metadata.ShaderScopeLocal)
}

func (ss *ShaderSystem) addAttribute(variant *metadata.ShaderVariant, name string, attribType metadata.ShaderAttributeType) {
	size := uint32(4)
	switch attribType {
	case metadata.ShaderAttribTypeInt8, metadata.ShaderAttribTypeUint8:
		size = 1
	case metadata.ShaderAttribTypeInt16, metadata.ShaderAttribTypeUint16:
		size = 2
	case metadata.ShaderAttribTypeFloat32, metadata.ShaderAttribTypeInt32, metadata.ShaderAttribTypeUint32:
		size = 4
	case metadata.ShaderAttribTypeFloat32_2:
		size = 8
	case metadata.ShaderAttribTypeFloat32_3:
		size = 12
	case metadata.ShaderAttribTypeFloat32_4:
		size = 16
	case metadata.ShaderAttribTypeMatrix4:
		size = 64
	default:
		core.LogError("unrecognized attribute type %d, defaulting to a size of 4", attribType)
	}

	variant.AttributeStride += uint16(size)
	variant.Attributes = append(variant.Attributes, metadata.ShaderAttribute{
		Name:                       name,
		Size:                       size,
		ShaderUniformAttributeType: attribType,
	})
}

func (ss *ShaderSystem) addUniform(variant *metadata.ShaderVariant, name string, size uint16, uniformType metadata.ShaderUniformType, scope metadata.ShaderScope) {
	if _, exists := variant.UniformLookup[name]; exists {
		core.LogError("variant '%s' already has a uniform named '%s'", variant.Name, name)
		return
	}

	index := uint16(len(variant.Uniforms))
	entry := metadata.ShaderUniform{
		Index:             index,
		Location:          index,
		Size:              size,
		Scope:             scope,
		ShaderUniformType: uniformType,
	}

	switch scope {
	case metadata.ShaderScopeGlobal:
		entry.SetIndex = 0
		entry.Offset = variant.GlobalUboSize
		variant.GlobalUboSize += uint64(size)
	case metadata.ShaderScopeInstance:
		entry.SetIndex = 1
		entry.Offset = variant.UboSize
		variant.UboSize += uint64(size)
	case metadata.ShaderScopeLocal:
		// Push range, aligned to 4 bytes.
		entry.SetIndex = metadata.InvalidIDUint8
		r := metadata.GetAlignedRange(ss.localSize(variant), uint64(size), 4)
		entry.Offset = r.Offset
		entry.Size = uint16(r.Size)
	}

	variant.UniformLookup[name] = index
	variant.Uniforms = append(variant.Uniforms, entry)
}

// addSampler declares a texture binding. Samplers occupy a location in
// their scope's texture table rather than UBO bytes; global samplers are
// seeded with a default-texture map so bind sets are complete before the
// passes assign real attachments.
func (ss *ShaderSystem) addSampler(variant *metadata.ShaderVariant, name string, scope metadata.ShaderScope, repeat metadata.TextureRepeat) {
	if scope == metadata.ShaderScopeLocal {
		core.LogError("samplers cannot live at local scope, '%s' skipped", name)
		return
	}
	if _, exists := variant.UniformLookup[name]; exists {
		core.LogError("variant '%s' already has a uniform named '%s'", variant.Name, name)
		return
	}

	var location uint16
	if scope == metadata.ShaderScopeGlobal {
		location = uint16(len(variant.GlobalTextureMaps))
		variant.GlobalTextureMaps = append(variant.GlobalTextureMaps, &metadata.TextureMap{
			Texture:       ss.buffers.GetDefaultTexture(),
			FilterMinify:  metadata.TextureFilterModeLinear,
			FilterMagnify: metadata.TextureFilterModeLinear,
			RepeatU:       repeat,
			RepeatV:       repeat,
			RepeatW:       repeat,
		})
	} else {
		location = uint16(variant.InstanceTextureCount)
		variant.InstanceTextureCount++
	}

	index := uint16(len(variant.Uniforms))
	variant.UniformLookup[name] = index
	variant.Uniforms = append(variant.Uniforms, metadata.ShaderUniform{
		Index:             index,
		Location:          location,
		SetIndex:          uint8(scope),
		Scope:             scope,
		ShaderUniformType: metadata.ShaderUniformTypeSampler,
	})
}

// localSize sums the push-range bytes already claimed by local uniforms.
func (ss *ShaderSystem) localSize(variant *metadata.ShaderVariant) uint64 {
	var total uint64
	for i := range variant.Uniforms {
		u := &variant.Uniforms[i]
		if u.Scope == metadata.ShaderScopeLocal && u.ShaderUniformType != metadata.ShaderUniformTypeSampler {
			total += uint64(u.Size)
		}
	}
	return total
}

/** @brief The uniform name a texture map slot binds to. */
func imageMapSamplerName(t metadata.ImageMapType) string {
	switch t {
	case metadata.ImageMapBaseColour:
		return "base_colour_texture"
	case metadata.ImageMapDiffuse:
		return "diffuse_texture"
	case metadata.ImageMapOpacity:
		return "opacity_texture"
	case metadata.ImageMapTranslucency:
		return "translucency_texture"
	case metadata.ImageMapNormal:
		return "normal_texture"
	case metadata.ImageMapMetalness:
		return "metalness_texture"
	case metadata.ImageMapRoughness:
		return "roughness_texture"
	case metadata.ImageMapSpecular:
		return "specular_texture"
	case metadata.ImageMapEmissive:
		return "emissive_texture"
	case metadata.ImageMapOcclusion:
		return "occlusion_texture"
	case metadata.ImageMapHeight:
		return "height_texture"
	case metadata.ImageMapTransmission:
		return "transmission_texture"
	case metadata.ImageMapThickness:
		return "thickness_texture"
	}
	return "unknown_texture"
}

var imageMapOrder = []metadata.ImageMapType{
	metadata.ImageMapBaseColour,
	metadata.ImageMapDiffuse,
	metadata.ImageMapOpacity,
	metadata.ImageMapTranslucency,
	metadata.ImageMapNormal,
	metadata.ImageMapMetalness,
	metadata.ImageMapRoughness,
	metadata.ImageMapSpecular,
	metadata.ImageMapEmissive,
	metadata.ImageMapOcclusion,
	metadata.ImageMapHeight,
	metadata.ImageMapTransmission,
	metadata.ImageMapThickness,
}

func anyImageMap(key metadata.ShaderKey) bool {
	for _, mapType := range imageMapOrder {
		if key.HasImageMap(mapType) {
			return true
		}
	}
	return false
}

// variantName renders a key as a stable, readable token list, e.g.
// "principled+lit4+shadow2+alpha_mask+skin+maps_11".
func variantName(key metadata.ShaderKey) string {
	tokens := make([]string, 0, 8)

	switch key.MaterialKind() {
	case metadata.MaterialKindDefault:
		tokens = append(tokens, "default")
	case metadata.MaterialKindPrincipled:
		tokens = append(tokens, "principled")
	case metadata.MaterialKindSpecularGlossy:
		tokens = append(tokens, "specular_glossy")
	case metadata.MaterialKindCustom:
		tokens = append(tokens, "custom")
	}

	if key.HasFeature(metadata.ShaderFeatureLighting) {
		tokens = append(tokens, fmt.Sprintf("lit%d", key.LightCount()))
	}
	if key.HasFeature(metadata.ShaderFeatureShadows) {
		tokens = append(tokens, fmt.Sprintf("shadow%d", key.ShadowMapCount()))
	}
	if key.HasFeature(metadata.ShaderFeatureSsao) {
		tokens = append(tokens, "ssao")
	}
	if key.HasFeature(metadata.ShaderFeatureScreenTexture) {
		tokens = append(tokens, "screen")
	}
	if key.HasFeature(metadata.ShaderFeatureScreenMipTexture) {
		tokens = append(tokens, "screen_mip")
	}
	if key.HasFeature(metadata.ShaderFeatureDepthTexture) {
		tokens = append(tokens, "depth")
	}
	if key.HasFeature(metadata.ShaderFeatureSkinning) {
		tokens = append(tokens, "skin")
	}
	if key.HasFeature(metadata.ShaderFeatureMorphing) {
		tokens = append(tokens, fmt.Sprintf("morph%d", key.MorphTargetCount()))
	}
	if key.HasFeature(metadata.ShaderFeatureInstancing) {
		tokens = append(tokens, "instanced")
	}
	if key.HasFeature(metadata.ShaderFeatureTransparency) {
		tokens = append(tokens, "blend")
	}
	if key.HasFeature(metadata.ShaderFeatureVertexColours) {
		tokens = append(tokens, "vcolour")
	}
	if key.HasFeature(metadata.ShaderFeatureReflectionProbe) {
		tokens = append(tokens, "probe")
	}
	if key.HasFeature(metadata.ShaderFeatureLightmap) {
		tokens = append(tokens, "lightmap")
	}
	if key.HasFeature(metadata.ShaderFeaturePointsTopology) {
		tokens = append(tokens, "points")
	}

	switch key.AlphaMode() {
	case metadata.AlphaModeMask:
		tokens = append(tokens, "alpha_mask")
	case metadata.AlphaModeBlend:
		tokens = append(tokens, "alpha_blend")
	case metadata.AlphaModeOpaque:
		tokens = append(tokens, "alpha_opaque")
	}

	switch key.BlendMode() {
	case metadata.BlendModeScreen:
		tokens = append(tokens, "blend_screen")
	case metadata.BlendModeMultiply:
		tokens = append(tokens, "blend_multiply")
	}

	if maps := key[2]; maps != 0 {
		tokens = append(tokens, fmt.Sprintf("maps_%x", maps))
	}

	return strings.Join(tokens, "+")
}
