package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/platform"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
	"github.com/spaghettifunk/lumina/engine/systems"
)

/** @brief Capability defaults used when the embedder reports nothing. */
const (
	DefaultMaxUniformBufferRange uint32 = 64 * 1024
	DefaultMaxTextureSize        uint32 = 16384
)

type RendererConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/**
	 * @brief Device limits reported by the consuming backend. Zero fields
	 * fall back to generous defaults; tools that model constrained devices
	 * set them explicitly.
	 */
	Capabilities metadata.RendererCapabilities
}

/**
 * @brief The preparation frontend. Owns the layers, the per-instance
 * diagnostics and the device capability view, and runs the frame sequence
 * for every layer: reset, prepare, shader variant warming. It produces
 * ordered pass lists; executing them against a graphics API is the
 * embedder's business.
 */
type Renderer struct {
	config       RendererConfig
	capabilities metadata.RendererCapabilities
	diagnostics  *core.Diagnostics
	systems      *systems.SystemManager

	mutex      sync.RWMutex
	layers     map[string]*LayerData
	layerOrder []string

	frameNumber uint64
	lastStats   core.FrameStats
}

/**
 * @brief Creates the frontend on top of an initialized system manager.
 */
func NewRenderer(config RendererConfig, systemManager *systems.SystemManager) (*Renderer, error) {
	if systemManager == nil {
		return nil, fmt.Errorf("renderer requires a system manager")
	}
	if config.Capabilities.MaxUniformBufferRange == 0 {
		config.Capabilities.MaxUniformBufferRange = DefaultMaxUniformBufferRange
	}
	if config.Capabilities.MaxTextureSize == 0 {
		config.Capabilities.MaxTextureSize = DefaultMaxTextureSize
	}

	return &Renderer{
		config:       config,
		capabilities: config.Capabilities,
		diagnostics:  core.NewDiagnostics(),
		systems:      systemManager,
		layers:       make(map[string]*LayerData),
	}, nil
}

/** @brief Tears down every layer's frame state. */
func (r *Renderer) Shutdown() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, name := range r.layerOrder {
		r.layers[name].ResetForFrame()
	}
	r.layers = make(map[string]*LayerData)
	r.layerOrder = r.layerOrder[:0]
	return nil
}

/**
 * @brief Creates a layer over the given scene root and registers it for
 * the frame sequence. Layer names must be unique; the scene resolvers are
 * the system manager's registries.
 */
func (r *Renderer) CreateLayer(config LayerConfig, root *scene.Node) (*LayerData, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("layer name must not be empty")
	}
	if root == nil {
		return nil, fmt.Errorf("layer '%s' requires a scene root", config.Name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, found := r.layers[config.Name]; found {
		return nil, fmt.Errorf("a layer named '%s' already exists", config.Name)
	}

	ld := NewLayerData(config, root, r.systems.BufferManager, r.systems.MaterialRegistry,
		r.systems.FontSystem, r.capabilities, r.diagnostics)
	r.layers[config.Name] = ld
	r.layerOrder = append(r.layerOrder, config.Name)
	core.LogInfo("created layer '%s'", config.Name)
	return ld, nil
}

/** @brief Looks a layer up by name. */
func (r *Renderer) Layer(name string) (*LayerData, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ld, found := r.layers[name]
	return ld, found
}

/** @brief Unregisters a layer and drops its frame state. */
func (r *Renderer) DestroyLayer(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	ld, found := r.layers[name]
	if !found {
		return fmt.Errorf("no layer named '%s' exists", name)
	}
	ld.ResetForFrame()
	delete(r.layers, name)
	for i, n := range r.layerOrder {
		if n == name {
			r.layerOrder = append(r.layerOrder[:i], r.layerOrder[i+1:]...)
			break
		}
	}
	return nil
}

/** @brief The registered layers in creation order. */
func (r *Renderer) Layers() []*LayerData {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]*LayerData, 0, len(r.layerOrder))
	for _, name := range r.layerOrder {
		out = append(out, r.layers[name])
	}
	return out
}

/**
 * @brief Runs one frame of preparation for every layer against the given
 * surface: frame reset, the preparation pass, then shader variant warming
 * for every emitted record so the variant cache is hot before the pass
 * lists are consumed. Returns the per-layer results in creation order.
 *
 * A minimized surface skips the frame entirely and returns nil.
 */
func (r *Renderer) PrepareFrame(surface *platform.Surface) []*metadata.LayerPrepResult {
	if surface == nil || surface.Minimized() {
		return nil
	}
	width, height := surface.PixelSize()

	r.mutex.Lock()
	r.frameNumber++
	frame := r.frameNumber
	layers := make([]*LayerData, 0, len(r.layerOrder))
	for _, name := range r.layerOrder {
		layers = append(layers, r.layers[name])
	}
	r.mutex.Unlock()

	results := make([]*metadata.LayerPrepResult, 0, len(layers))
	stats := core.FrameStats{}
	for _, ld := range layers {
		ld.ResetForFrame()
		result := ld.PrepareForRender(width, height)
		r.warmShaderVariants(ld, frame)

		s := ld.FrameStats()
		stats.NodesVisited += s.NodesVisited
		stats.ModelsPrepared += s.ModelsPrepared
		stats.RecordsEmitted += s.RecordsEmitted
		stats.LightsSelected += s.LightsSelected
		stats.ShadowMaps += s.ShadowMaps
		stats.PassesScheduled += s.PassesScheduled
		stats.PrepMS += s.PrepMS
		results = append(results, result)
	}

	r.mutex.Lock()
	r.lastStats = stats
	r.mutex.Unlock()
	return results
}

/**
 * @brief Acquires (and thereby builds on first sight) the shader variant
 * for every record the layer emitted, and stamps the variant with the
 * frame it was last wanted in.
 */
func (r *Renderer) warmShaderVariants(ld *LayerData, frame uint64) {
	warm := func(handles []metadata.RenderableHandle) {
		for _, h := range handles {
			variant := r.systems.ShaderSystem.AcquireVariant(h.Record.ShaderKey)
			variant.RenderFrameNumber = frame
		}
	}
	warm(ld.OpaqueObjects())
	warm(ld.TransparentObjects())
	warm(ld.ScreenTextureObjects())
}

/** @brief The capability view preparation derives budgets from. */
func (r *Renderer) Capabilities() metadata.RendererCapabilities {
	return r.capabilities
}

/** @brief The per-instance warn-once diagnostics. */
func (r *Renderer) Diagnostics() *core.Diagnostics {
	return r.diagnostics
}

/** @brief The number of frames prepared since creation. */
func (r *Renderer) FrameNumber() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.frameNumber
}

/** @brief The previous frame's preparation counters, summed across layers. */
func (r *Renderer) FrameStats() core.FrameStats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.lastStats
}
