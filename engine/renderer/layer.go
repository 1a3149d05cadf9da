package renderer

import (
	"github.com/spaghettifunk/lumina/engine/containers"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/renderer/passes"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Resolves CPU-side scene data into GPU-resident resources. Lookups
 * are cache-backed and idempotent within a frame; a nil result means the
 * resource is not resident yet and the caller skips the affected renderable
 * until a later frame.
 */
type MeshResolver interface {
	LoadMesh(model *scene.Node) *metadata.RenderMesh
	LoadMeshBvh(mesh *metadata.RenderMesh) *metadata.MeshBvh
	LoadRenderImage(textureMap *metadata.TextureMap) *metadata.Texture
	/** @brief Flushes queued buffer uploads. Called once per preparation pass. */
	CommitPendingUploads()
}

/** @brief Resolves material names to registered materials. */
type MaterialResolver interface {
	AcquireMaterial(name string) *metadata.Material
	DefaultMaterial() *metadata.Material
}

/** @brief Measures text runs for 2d overlay items. */
type TextMeasurer interface {
	MeasureText(fontName, text string) (metadata.TextMeasurement, error)
}

/**
 * @brief Receives the models flagged for lightmap baking, at most once per
 * bake request. The slice is only valid until the next frame reset.
 */
type LightmapBaker func(models []metadata.BakedLightingModel)

/** @brief Per-layer preparation settings, loadable from a TOML document. */
type LayerConfig struct {
	Name string `toml:"name"`
	/** @brief Enables depth testing; disabling forces painter-style sorting. */
	DepthTestEnabled bool `toml:"depth_test_enabled"`
	/** @brief Routes opaque depth writes into the z pre-pass. */
	DepthPrePassEnabled bool `toml:"depth_prepass_enabled"`
	SsaoEnabled         bool `toml:"ssao_enabled"`
	/** @brief Builds pick acceleration for every model, not just pickable ones. */
	GlobalPickingEnabled bool       `toml:"global_picking_enabled"`
	ClearColour          [4]float32 `toml:"clear_colour"`
	/** @brief Overrides the per-frame light budget when positive. */
	MaxLights int `toml:"max_lights"`
	/** @brief Overrides the shadow map budget when positive. */
	MaxShadowMaps int `toml:"max_shadow_maps"`
}

/**
 * @brief All per-layer state for one prepared output surface. A layer owns
 * its classification lists, frame arenas and sorted views; everything in
 * here is rebuilt by PrepareForRender and torn down by ResetForFrame.
 *
 * Preparation is single threaded and not reentrant within a frame: the
 * first PrepareForRender call after a reset does the work, repeated calls
 * return the cached result. Independent layers may prepare concurrently as
 * long as they do not share a resolver cache without synchronization.
 */
type LayerData struct {
	Config LayerConfig

	/** @brief The scene container whose children are classified each frame. */
	Root *scene.Node

	/**
	 * @brief Camera override. When set, the implicit first-active-camera
	 * search is skipped entirely; if the override is inactive no camera is
	 * resolved for the frame and rendering is skipped.
	 */
	ExplicitCamera *scene.Node

	/** @brief The camera resolved for the current frame, nil before prepare. */
	Camera *scene.Node

	/**
	 * @brief The cached result of the current frame's preparation. Non-nil
	 * means the frame is already prepared and PrepareForRender returns it
	 * unchanged. ResetForFrame clears it.
	 */
	PrepResult *metadata.LayerPrepResult

	/** @brief Raises the one-shot lightmap baking path on the next prepare. */
	BakeRequested bool

	meshes    MeshResolver
	materials MaterialResolver
	text      TextMeasurer
	baker     LightmapBaker

	capabilities metadata.RendererCapabilities
	diagnostics  *core.Diagnostics

	// Light budget resolved once from device capabilities.
	maxLights int

	// Classified node lists. Slots persist across frames and are reused by
	// the collect-or-grow policy.
	renderableModels    containers.FrameList[*scene.Node]
	renderableParticles containers.FrameList[*scene.Node]
	renderableItem2Ds   containers.FrameList[*scene.Node]
	cameras             containers.FrameList[*scene.Node]
	lights              containers.FrameList[*scene.Node]
	reflectionProbes    containers.FrameList[*scene.Node]

	// Frame arenas owning every per-frame record. Invalidated wholesale by
	// ResetForFrame; nothing in them is individually freed.
	recordArena  *containers.FrameArena[metadata.RenderableRecord]
	contextArena *containers.FrameArena[metadata.ModelContext]
	imageArena   *containers.FrameArena[metadata.RenderableImage]

	// Classification buckets. A record lands in exactly one of the first
	// three; the baked lighting grouping is additive. Truncated, not freed,
	// at frame reset.
	opaqueObjects        []metadata.RenderableHandle
	transparentObjects   []metadata.RenderableHandle
	screenTextureObjects []metadata.RenderableHandle
	bakedLightingModels  []metadata.BakedLightingModel

	modelContexts []*metadata.ModelContext

	// Memoized sorted views over the buckets, computed at most once per
	// frame by the sorted accessors.
	sortedOpaque             []metadata.RenderableHandle
	sortedTransparent        []metadata.RenderableHandle
	sortedScreenTexture      []metadata.RenderableHandle
	sortedItem2Ds            []*scene.Node
	depthWriteObjects        []metadata.RenderableHandle
	prePassObjects           []metadata.RenderableHandle
	sortedOpaqueValid        bool
	sortedTransparentValid   bool
	sortedScreenTextureValid bool
	sortedItem2DsValid       bool
	depthPartitionValid      bool

	// Reused scratch for pass population.
	drawableTransparent   []metadata.RenderableHandle
	drawableScreenTexture []metadata.RenderableHandle
	shadowCasters         []metadata.RenderableHandle

	// Light selection state for the frame. frameLights is the full selected
	// list in selection order; globalLights holds only the unscoped subset.
	frameLights      []metadata.ShaderLight
	globalLights     []metadata.ShaderLight
	shadowMapEntries []metadata.ShadowMapEntry
	hasScopedLights  bool

	// Camera-derived values cached at resolution time.
	cameraPosition  math.Vec3
	cameraDirection math.Vec3
	meshLodThreshold float32

	// Bone texture backing per skinned model, kept across frames and
	// released when the skin goes away.
	boneTextures map[*scene.Node]*metadata.BoneTexture

	// Probe registration results for the reflection pass.
	texturedProbes []*scene.Node
	liveProbes     []*scene.Node

	// Pass instances owned by the layer and reused every frame.
	depthMapPass      passes.DepthMapPass
	ssaoMapPass       passes.SsaoMapPass
	shadowMapPass     passes.ShadowMapPass
	reflectionMapPass passes.ReflectionMapPass
	zPrePass          passes.ZPrePass
	screenMapPass     passes.ScreenMapPass
	mainPass          passes.MainPass
	activePasses      []passes.Pass

	frameFlags metadata.PrepResultFlags
	bakeFired  bool

	clock *core.Clock
	stats core.FrameStats
}

/**
 * @brief Creates the preparation state for one layer. The light budget is
 * resolved here, once, from the device capabilities; a capability-limited
 * device logs a one-time informational notice through the diagnostics.
 */
func NewLayerData(config LayerConfig, root *scene.Node, meshes MeshResolver, materials MaterialResolver, text TextMeasurer,
	capabilities metadata.RendererCapabilities, diagnostics *core.Diagnostics) *LayerData {
	if diagnostics == nil {
		diagnostics = core.NewDiagnostics()
	}

	maxLights := metadata.MaxShaderLights
	if capabilities.MaxUniformBufferRange > 0 && capabilities.MaxUniformBufferRange < metadata.ReducedMaxLightsUniformThreshold {
		maxLights = metadata.ReducedMaxShaderLights
		diagnostics.InfoReducedLightBudget(metadata.MaxShaderLights, metadata.ReducedMaxShaderLights)
	}
	if config.MaxLights > 0 && config.MaxLights < maxLights {
		maxLights = config.MaxLights
	}

	return &LayerData{
		Config:       config,
		Root:         root,
		meshes:       meshes,
		materials:    materials,
		text:         text,
		capabilities: capabilities,
		diagnostics:  diagnostics,
		maxLights:    maxLights,
		recordArena:  containers.NewFrameArena[metadata.RenderableRecord](0),
		contextArena: containers.NewFrameArena[metadata.ModelContext](0),
		imageArena:   containers.NewFrameArena[metadata.RenderableImage](0),
		boneTextures: make(map[*scene.Node]*metadata.BoneTexture),
		clock:        core.NewClock(),
	}
}

/** @brief Installs the lightmap baker callback. */
func (ld *LayerData) SetLightmapBaker(baker LightmapBaker) {
	ld.baker = baker
}

/** @brief The shadow map budget in effect for this layer. */
func (ld *LayerData) maxShadowMaps() int {
	if ld.Config.MaxShadowMaps > 0 && ld.Config.MaxShadowMaps < metadata.MaxShadowMaps {
		return ld.Config.MaxShadowMaps
	}
	return metadata.MaxShadowMaps
}

/**
 * @brief Tears down the frame: releases the scheduled passes, truncates
 * every classification bucket and sorted view without freeing their
 * storage, rewinds the frame arenas and clears the cached preparation
 * result. Must run between frames; PrepareForRender treats leftover bucket
 * contents as a fatal contract violation.
 */
func (ld *LayerData) ResetForFrame() {
	for _, p := range ld.activePasses {
		p.Release()
	}
	ld.activePasses = ld.activePasses[:0]

	ld.opaqueObjects = ld.opaqueObjects[:0]
	ld.transparentObjects = ld.transparentObjects[:0]
	ld.screenTextureObjects = ld.screenTextureObjects[:0]
	ld.bakedLightingModels = ld.bakedLightingModels[:0]
	ld.modelContexts = ld.modelContexts[:0]

	ld.sortedOpaque = ld.sortedOpaque[:0]
	ld.sortedTransparent = ld.sortedTransparent[:0]
	ld.sortedScreenTexture = ld.sortedScreenTexture[:0]
	ld.sortedItem2Ds = ld.sortedItem2Ds[:0]
	ld.depthWriteObjects = ld.depthWriteObjects[:0]
	ld.prePassObjects = ld.prePassObjects[:0]
	ld.sortedOpaqueValid = false
	ld.sortedTransparentValid = false
	ld.sortedScreenTextureValid = false
	ld.sortedItem2DsValid = false
	ld.depthPartitionValid = false

	ld.drawableTransparent = ld.drawableTransparent[:0]
	ld.drawableScreenTexture = ld.drawableScreenTexture[:0]
	ld.shadowCasters = ld.shadowCasters[:0]

	ld.frameLights = ld.frameLights[:0]
	ld.globalLights = ld.globalLights[:0]
	ld.shadowMapEntries = ld.shadowMapEntries[:0]
	ld.hasScopedLights = false

	ld.texturedProbes = ld.texturedProbes[:0]
	ld.liveProbes = ld.liveProbes[:0]

	ld.Camera = nil
	ld.meshLodThreshold = 0
	ld.frameFlags = 0
	ld.PrepResult = nil
	ld.stats = core.FrameStats{}

	ld.recordArena.Reset()
	ld.contextArena.Reset()
	ld.imageArena.Reset()
}

/**
 * @brief Runs the full preparation pass for one frame: classification,
 * camera resolution, light selection, model/particle/2d item preparation,
 * reflection probe assignment and pass scheduling. Idempotent within a
 * frame: once a result exists it is returned as-is until ResetForFrame.
 *
 * Calling this with stale bucket contents (a missed reset) panics with
 * core.ErrStaleFrameLists; every derived list would alias freed arena
 * slots, so there is nothing sensible to recover to.
 */
func (ld *LayerData) PrepareForRender(viewportWidth, viewportHeight float32) *metadata.LayerPrepResult {
	if ld.PrepResult != nil {
		return ld.PrepResult
	}
	if len(ld.opaqueObjects) != 0 || len(ld.transparentObjects) != 0 || len(ld.screenTextureObjects) != 0 {
		core.LogError("layer '%s' prepared without a frame reset: %v", ld.Config.Name, core.ErrStaleFrameLists)
		panic(core.ErrStaleFrameLists)
	}

	ld.clock.Start()

	wasDirty := ld.classifyNodes()
	if ld.resolveCamera(viewportWidth, viewportHeight) {
		wasDirty = true
	}
	ld.frameFlags.Set(metadata.PrepResultWasDirty, wasDirty)

	ld.selectLights()
	ld.prepareModels()
	ld.prepareParticles()
	ld.prepareItem2Ds()
	ld.injectReflectionProbes()
	ld.maybeBakeLightmaps()

	if ld.Config.SsaoEnabled {
		ld.frameFlags.Set(metadata.PrepResultRequiresSsaoPass, true)
		ld.frameFlags.Set(metadata.PrepResultRequiresDepthTexture, true)
	}
	if len(ld.shadowMapEntries) > 0 {
		ld.frameFlags.Set(metadata.PrepResultRequiresShadowMapPass, true)
	}

	result := &metadata.LayerPrepResult{
		Flags:    ld.frameFlags,
		Viewport: math.NewVec4Create(0, 0, viewportWidth, viewportHeight),
		Camera:   ld.Camera,
	}
	ld.PrepResult = result
	ld.schedulePasses(result)

	ld.clock.Update()
	ld.stats.PrepMS = ld.clock.ElapsedMS()
	ld.stats.LightsSelected = len(ld.frameLights)
	ld.stats.ShadowMaps = len(ld.shadowMapEntries)
	ld.stats.PassesScheduled = len(ld.activePasses)
	core.LogDebug("layer '%s' prepared: %d nodes, %d models, %d records, %d lights (%d shadowed), %d passes, %.3fms",
		ld.Config.Name, ld.stats.NodesVisited, ld.stats.ModelsPrepared, ld.stats.RecordsEmitted,
		ld.stats.LightsSelected, ld.stats.ShadowMaps, ld.stats.PassesScheduled, ld.stats.PrepMS)

	return result
}

/**
 * @brief Builds the frame's ordered pass sequence. The relative order is
 * fixed and is itself the dependency mechanism: a pass may rely on any
 * earlier pass's output being available, never the other way around.
 * Optional passes drop out individually; reflection, z pre-pass and the
 * main pass are always present so downstream bind layouts stay stable.
 */
func (ld *LayerData) schedulePasses(result *metadata.LayerPrepResult) {
	sortedOpaque := ld.SortedOpaqueObjects()
	sortedTransparent := ld.SortedTransparentObjects()
	sortedScreen := ld.SortedScreenTextureObjects()
	depthWrite := ld.SortedDepthWriteObjects()
	prePass := ld.SortedOpaquePrePassObjects()

	ld.drawableTransparent = appendDrawable(ld.drawableTransparent[:0], sortedTransparent)
	ld.drawableScreenTexture = appendDrawable(ld.drawableScreenTexture[:0], sortedScreen)

	ld.shadowCasters = ld.shadowCasters[:0]
	ld.shadowCasters = appendShadowCasters(ld.shadowCasters, sortedOpaque)
	ld.shadowCasters = appendShadowCasters(ld.shadowCasters, ld.drawableTransparent)
	ld.shadowCasters = appendShadowCasters(ld.shadowCasters, ld.drawableScreenTexture)

	ld.activePasses = ld.activePasses[:0]

	if result.RequiresDepthTexture() {
		ld.depthMapPass.SortedOpaque = sortedOpaque
		ld.depthMapPass.SortedTransparent = ld.drawableTransparent
		ld.activePasses = append(ld.activePasses, &ld.depthMapPass)
	}
	if result.RequiresSsaoPass() {
		ld.ssaoMapPass.DepthTexture = ld.depthMapPass.DepthTexture
		ld.activePasses = append(ld.activePasses, &ld.ssaoMapPass)
	}
	if result.RequiresShadowMapPass() {
		ld.shadowMapPass.Entries = ld.shadowMapEntries
		ld.shadowMapPass.CastingObjects = ld.shadowCasters
		ld.shadowMapPass.GlobalLights = ld.globalLights
		ld.activePasses = append(ld.activePasses, &ld.shadowMapPass)
	}

	ld.reflectionMapPass.TexturedProbes = ld.texturedProbes
	ld.reflectionMapPass.LiveProbes = ld.liveProbes
	ld.reflectionMapPass.CaptureTargets = ld.reflectionMapPass.CaptureTargets[:0]
	for _, probeNode := range ld.liveProbes {
		ld.reflectionMapPass.CaptureTargets = append(ld.reflectionMapPass.CaptureTargets, probeNode.Probe.CaptureName())
	}
	ld.activePasses = append(ld.activePasses, &ld.reflectionMapPass)

	ld.zPrePass.DepthWriteObjects = depthWrite
	ld.zPrePass.PrePassObjects = prePass
	ld.activePasses = append(ld.activePasses, &ld.zPrePass)

	if result.RequiresScreenTexture() {
		ld.screenMapPass.SortedOpaque = sortedOpaque
		ld.screenMapPass.WantsMips = result.RequiresScreenMipTexture()
		ld.activePasses = append(ld.activePasses, &ld.screenMapPass)
	}

	ld.mainPass.SortedOpaque = sortedOpaque
	ld.mainPass.SortedTransparent = ld.drawableTransparent
	ld.mainPass.SortedScreenTexture = ld.drawableScreenTexture
	ld.mainPass.Item2Ds = ld.SortedItem2Ds()
	ld.mainPass.GlobalLights = ld.globalLights
	ld.activePasses = append(ld.activePasses, &ld.mainPass)
}

/** @brief The passes scheduled for the current frame, in execution order. */
func (ld *LayerData) ActivePasses() []passes.Pass {
	return ld.activePasses
}

/** @brief The opaque classification bucket, unsorted. */
func (ld *LayerData) OpaqueObjects() []metadata.RenderableHandle {
	return ld.opaqueObjects
}

/** @brief The transparent classification bucket, unsorted. */
func (ld *LayerData) TransparentObjects() []metadata.RenderableHandle {
	return ld.transparentObjects
}

/** @brief The screen texture classification bucket, unsorted. */
func (ld *LayerData) ScreenTextureObjects() []metadata.RenderableHandle {
	return ld.screenTextureObjects
}

/** @brief The selected lights visible to every unscoped node. */
func (ld *LayerData) GlobalLights() []metadata.ShaderLight {
	return ld.globalLights
}

/** @brief The shadow map allocations granted this frame. */
func (ld *LayerData) ShadowMapEntries() []metadata.ShadowMapEntry {
	return ld.shadowMapEntries
}

/** @brief The per-model shared contexts built this frame. */
func (ld *LayerData) ModelContexts() []*metadata.ModelContext {
	return ld.modelContexts
}

/** @brief This frame's preparation counters. */
func (ld *LayerData) FrameStats() core.FrameStats {
	return ld.stats
}

// Records forced fully transparent still classify (they keep participating
// in picking) but never reach a draw list.
func appendDrawable(dst, src []metadata.RenderableHandle) []metadata.RenderableHandle {
	for _, h := range src {
		if h.Record.Flags.Has(metadata.RenderableCompletelyTransparent) {
			continue
		}
		dst = append(dst, h)
	}
	return dst
}

func appendShadowCasters(dst, src []metadata.RenderableHandle) []metadata.RenderableHandle {
	for _, h := range src {
		if h.Record.Flags.Has(metadata.RenderableCastsShadows) {
			dst = append(dst, h)
		}
	}
	return dst
}
