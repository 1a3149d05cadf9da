package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumina/engine/assets"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/** @brief The configuration for the material registry. */
type MaterialRegistryConfig struct {
	/** @brief The maximum number of materials held registered at once. */
	MaxMaterialCount uint32
}

/**
 * @brief Owns every named material. Resolution is lazy: acquiring an
 * unknown name loads and resolves its definition from disk; acquiring a
 * known name returns the same pointer every time, which is what lets
 * on-disk edits be re-resolved in place without re-binding consumers.
 */
type MaterialRegistry struct {
	config  MaterialRegistryConfig
	buffers *BufferManager
	assets  *assets.AssetManager

	mutex           sync.RWMutex
	materials       map[string]*metadata.MaterialReference
	defaultMaterial *metadata.Material

	warned       map[string]bool
	budgetWarned bool
}

func NewMaterialRegistry(config MaterialRegistryConfig, bufferManager *BufferManager, assetManager *assets.AssetManager) (*MaterialRegistry, error) {
	if config.MaxMaterialCount == 0 {
		return nil, fmt.Errorf("config.MaxMaterialCount must be > 0")
	}
	if bufferManager == nil {
		return nil, fmt.Errorf("a buffer manager is required")
	}

	mr := &MaterialRegistry{
		config:    config,
		buffers:   bufferManager,
		assets:    assetManager,
		materials: make(map[string]*metadata.MaterialReference),
		warned:    make(map[string]bool),
	}
	mr.createDefaultMaterial()
	return mr, nil
}

func (mr *MaterialRegistry) Shutdown() error {
	mr.mutex.Lock()
	defer mr.mutex.Unlock()
	for name, ref := range mr.materials {
		if ref.Material != nil && ref.Material.ID != metadata.InvalidID {
			core.IdentifierReleaseID(ref.Material.ID)
		}
		delete(mr.materials, name)
	}
	if mr.defaultMaterial != nil {
		core.IdentifierReleaseID(mr.defaultMaterial.ID)
	}
	return nil
}

// An opaque white principled surface, lit per fragment.
func (mr *MaterialRegistry) createDefaultMaterial() {
	material := &metadata.Material{
		Name:       metadata.DefaultMaterialName,
		Kind:       metadata.MaterialKindPrincipled,
		Lighting:   metadata.MaterialLightingFragment,
		CullMode:   metadata.FaceCullModeBack,
		BaseColour: math.NewVec4One(),
		Opacity:    1.0,
		Roughness:  1.0,
		ShaderID:   metadata.InvalidID,
		BaseColourMap: &metadata.TextureMap{
			Texture:       mr.buffers.GetDefaultBaseColourTexture(),
			FilterMinify:  metadata.TextureFilterModeLinear,
			FilterMagnify: metadata.TextureFilterModeLinear,
			RepeatU:       metadata.TextureRepeatRepeat,
			RepeatV:       metadata.TextureRepeatRepeat,
			RepeatW:       metadata.TextureRepeatRepeat,
		},
	}
	material.ID = core.IdentifierAcquireNewID(material)
	mr.defaultMaterial = material
}

/** @brief Returns the fallback material used when a model names none. */
func (mr *MaterialRegistry) DefaultMaterial() *metadata.Material {
	return mr.defaultMaterial
}

/**
 * @brief Resolves a material name for frame preparation. An empty name
 * resolves to nothing, the default name to the default material and any
 * other name to its registered material, loading the definition from disk
 * on first sight. Returns nil when the definition cannot be loaded this
 * frame; failures warn once and are retried on later frames.
 */
func (mr *MaterialRegistry) AcquireMaterial(name string) *metadata.Material {
	if name == "" {
		return nil
	}
	if name == metadata.DefaultMaterialName {
		return mr.defaultMaterial
	}

	mr.mutex.RLock()
	ref, ok := mr.materials[name]
	mr.mutex.RUnlock()
	if ok {
		return ref.Material
	}

	mr.mutex.Lock()
	defer mr.mutex.Unlock()
	if ref, ok := mr.materials[name]; ok {
		return ref.Material
	}
	return mr.loadMaterial(name)
}

/** @brief Explicitly acquires a material by name, taking a reference on it. */
func (mr *MaterialRegistry) Acquire(name string) (*metadata.Material, error) {
	if name == metadata.DefaultMaterialName {
		return mr.defaultMaterial, nil
	}

	mr.mutex.Lock()
	defer mr.mutex.Unlock()

	ref, ok := mr.materials[name]
	if !ok {
		if material := mr.loadMaterial(name); material == nil {
			return nil, fmt.Errorf("unable to resolve material '%s'", name)
		}
		ref = mr.materials[name]
	}
	ref.ReferenceCount++
	return ref.Material, nil
}

/**
 * @brief Registers a material directly from a configuration, bypassing the
 * asset manager. Anonymous configurations are registered under a generated
 * name. Re-registering a known name re-resolves the existing material in
 * place and bumps its generation.
 */
func (mr *MaterialRegistry) AcquireFromConfig(config *metadata.MaterialConfig) (*metadata.Material, error) {
	if config == nil {
		return nil, fmt.Errorf("a material config is required")
	}
	name := config.Name
	if name == "" {
		name = metadata.GenerateNewHash()
	}

	mr.mutex.Lock()
	defer mr.mutex.Unlock()

	ref, ok := mr.materials[name]
	if !ok {
		mr.registerMaterial(name, config)
		ref = mr.materials[name]
	} else {
		mr.resolveConfig(config, ref.Material)
	}
	ref.ReferenceCount++
	return ref.Material, nil
}

/**
 * @brief Releases a reference on a material. When the last reference on an
 * auto-release material goes away the registration is removed.
 */
func (mr *MaterialRegistry) Release(name string) {
	if name == metadata.DefaultMaterialName {
		return
	}

	mr.mutex.Lock()
	defer mr.mutex.Unlock()

	ref, ok := mr.materials[name]
	if !ok {
		core.LogWarn("Release called for unknown material '%s'. Nothing was done.", name)
		return
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		core.IdentifierReleaseID(ref.Material.ID)
		ref.Material.ID = metadata.InvalidID
		delete(mr.materials, name)
	}
}

// Callers hold mr.mutex.
func (mr *MaterialRegistry) loadMaterial(name string) *metadata.Material {
	resource, err := mr.assets.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		if !mr.warned[name] {
			core.LogWarn("Unable to load material '%s': %s", name, err.Error())
			mr.warned[name] = true
		}
		return nil
	}
	config, ok := resource.Data.(*metadata.MaterialConfig)
	if !ok {
		core.LogError("Material resource '%s' carried unexpected data.", name)
		return nil
	}

	material := mr.registerMaterial(name, config)
	mr.assets.UnloadAsset(resource)
	return material
}

// Callers hold mr.mutex.
func (mr *MaterialRegistry) registerMaterial(name string, config *metadata.MaterialConfig) *metadata.Material {
	if uint32(len(mr.materials)) >= mr.config.MaxMaterialCount && !mr.budgetWarned {
		core.LogWarn("Material budget of %d exceeded while registering '%s'.", mr.config.MaxMaterialCount, name)
		mr.budgetWarned = true
	}

	material := &metadata.Material{
		Name:       name,
		ShaderID:   metadata.InvalidID,
		Generation: metadata.InvalidID,
	}
	material.ID = core.IdentifierAcquireNewID(material)
	mr.resolveConfig(config, material)
	mr.materials[name] = &metadata.MaterialReference{
		Material:    material,
		AutoRelease: config.AutoRelease,
	}
	return material
}

/**
 * @brief Resolves a validated configuration into the given material. The
 * material pointer is never replaced, so everything holding it observes
 * the new state plus a generation bump. The material comes out dirty.
 */
func (mr *MaterialRegistry) resolveConfig(config *metadata.MaterialConfig, material *metadata.Material) {
	material.Kind = parseMaterialKind(config.Kind)
	material.Lighting = parseMaterialLighting(config.Lighting)
	material.BlendMode = parseBlendMode(config.BlendMode)
	material.AlphaMode = parseAlphaMode(config.AlphaMode)
	material.AlphaCutoff = config.AlphaCutoff
	material.CullMode = parseCullMode(config.CullMode)
	material.DepthDraw = parseDepthDraw(config.DepthDraw)

	// An omitted base colour unmarshals as all zeros; read it as opaque white.
	material.BaseColour = math.NewVec4Create(config.BaseColour[0], config.BaseColour[1], config.BaseColour[2], config.BaseColour[3])
	if material.BaseColour == math.NewVec4Zero() {
		material.BaseColour = math.NewVec4One()
	}
	material.Opacity = 1.0
	if config.Opacity != nil {
		material.Opacity = *config.Opacity
	}
	material.Metalness = config.Metalness
	material.Roughness = config.Roughness
	material.SpecularAmount = config.SpecularAmount
	material.EmissiveColour = math.NewVec3(config.EmissiveColour[0], config.EmissiveColour[1], config.EmissiveColour[2])
	material.TransmissionFactor = config.TransmissionFactor
	material.ThicknessFactor = config.ThicknessFactor

	material.Capabilities = 0
	for _, capability := range config.Capabilities {
		material.Capabilities |= parseCapability(capability)
	}
	material.ShaderName = config.ShaderName

	material.BaseColourMap = nil
	material.DiffuseMap = nil
	material.OpacityMap = nil
	material.TranslucencyMap = nil
	material.NormalMap = nil
	material.MetalnessMap = nil
	material.RoughnessMap = nil
	material.SpecularMap = nil
	material.EmissiveMap = nil
	material.OcclusionMap = nil
	material.HeightMap = nil
	material.TransmissionMap = nil
	material.ThicknessMap = nil
	material.ClearcoatMap = nil
	material.ClearcoatRoughnessMap = nil
	for slot, mapConfig := range config.Maps {
		tm := mr.buildTextureMap(mapConfig)
		switch slot {
		case "base_colour":
			material.BaseColourMap = tm
		case "diffuse":
			material.DiffuseMap = tm
		case "opacity":
			material.OpacityMap = tm
		case "translucency":
			material.TranslucencyMap = tm
		case "normal":
			material.NormalMap = tm
		case "metalness":
			material.MetalnessMap = tm
		case "roughness":
			material.RoughnessMap = tm
		case "specular":
			material.SpecularMap = tm
		case "emissive":
			material.EmissiveMap = tm
		case "occlusion":
			material.OcclusionMap = tm
		case "height":
			material.HeightMap = tm
		case "transmission":
			material.TransmissionMap = tm
		case "thickness":
			material.ThicknessMap = tm
		case "clearcoat":
			material.ClearcoatMap = tm
		case "clearcoat_roughness":
			material.ClearcoatRoughnessMap = tm
		default:
			core.LogWarn("Material '%s' names unknown map slot '%s'. The map is ignored.", material.Name, slot)
		}
	}

	if material.Generation == metadata.InvalidID {
		material.Generation = 0
	} else {
		material.Generation++
	}
	material.Dirty = true
}

// Maps reference placeholders; pixels load when a renderable samples them.
func (mr *MaterialRegistry) buildTextureMap(config metadata.MaterialMapConfig) *metadata.TextureMap {
	return &metadata.TextureMap{
		Texture:       mr.buffers.TexturePlaceholder(config.Image),
		Channel:       parseTextureChannel(config.Channel),
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		RepeatU:       metadata.TextureRepeatRepeat,
		RepeatV:       metadata.TextureRepeatRepeat,
		RepeatW:       metadata.TextureRepeatRepeat,
	}
}

/**
 * @brief Starts watching for on-disk material edits. A modified definition
 * that is already registered is re-resolved into the same material, so
 * every consumer sees the change on the next prepared frame.
 */
func (mr *MaterialRegistry) WatchAssetChanges() {
	core.EventRegister(core.EVENT_CODE_ASSET_MODIFIED, mr, mr.onAssetModified)
}

func (mr *MaterialRegistry) onAssetModified(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	event, ok := data.Data.(*core.AssetModifiedEvent)
	if !ok {
		return false
	}

	mr.mutex.Lock()
	defer mr.mutex.Unlock()

	ref, ok := mr.materials[event.AssetName]
	if !ok {
		return false
	}

	resource, err := mr.assets.LoadAsset(event.AssetName, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogWarn("Material '%s' changed on disk but could not be reloaded: %s", event.AssetName, err.Error())
		return false
	}
	config, castOK := resource.Data.(*metadata.MaterialConfig)
	if !castOK {
		return false
	}

	mr.resolveConfig(config, ref.Material)
	mr.assets.UnloadAsset(resource)
	core.LogInfo("Reloaded material '%s' after on-disk change (generation %d).", event.AssetName, ref.Material.Generation)
	return false
}

func parseMaterialKind(token string) metadata.MaterialKind {
	switch token {
	case "default":
		return metadata.MaterialKindDefault
	case "specular_glossy":
		return metadata.MaterialKindSpecularGlossy
	case "custom":
		return metadata.MaterialKindCustom
	}
	return metadata.MaterialKindPrincipled
}

func parseMaterialLighting(token string) metadata.MaterialLighting {
	if token == "none" {
		return metadata.MaterialLightingNone
	}
	return metadata.MaterialLightingFragment
}

func parseBlendMode(token string) metadata.BlendMode {
	switch token {
	case "screen":
		return metadata.BlendModeScreen
	case "multiply":
		return metadata.BlendModeMultiply
	}
	return metadata.BlendModeSourceOver
}

func parseAlphaMode(token string) metadata.AlphaMode {
	switch token {
	case "mask":
		return metadata.AlphaModeMask
	case "blend":
		return metadata.AlphaModeBlend
	case "opaque":
		return metadata.AlphaModeOpaque
	}
	return metadata.AlphaModeDefault
}

func parseCullMode(token string) metadata.FaceCullMode {
	switch token {
	case "none":
		return metadata.FaceCullModeNone
	case "front":
		return metadata.FaceCullModeFront
	case "front_and_back":
		return metadata.FaceCullModeFrontAndBack
	}
	return metadata.FaceCullModeBack
}

func parseDepthDraw(token string) metadata.DepthDrawMode {
	switch token {
	case "always":
		return metadata.DepthDrawAlways
	case "never":
		return metadata.DepthDrawNever
	case "opaque_pre_pass":
		return metadata.DepthDrawOpaquePrePass
	}
	return metadata.DepthDrawOpaqueOnly
}

func parseCapability(token string) metadata.CustomMaterialFlags {
	switch token {
	case "blending":
		return metadata.CustomMaterialBlending
	case "screen_texture":
		return metadata.CustomMaterialScreenTexture
	case "screen_mip_texture":
		return metadata.CustomMaterialScreenMipTexture
	case "depth_texture":
		return metadata.CustomMaterialDepthTexture
	case "ao_texture":
		return metadata.CustomMaterialAoTexture
	case "always_dirty":
		return metadata.CustomMaterialAlwaysDirty
	}
	return 0
}

func parseTextureChannel(token string) metadata.TextureChannel {
	switch token {
	case "g":
		return metadata.TextureChannelGreen
	case "b":
		return metadata.TextureChannelBlue
	case "a":
		return metadata.TextureChannelAlpha
	}
	return metadata.TextureChannelRed
}
