package systems

import (
	"github.com/spaghettifunk/lumina/engine/assets"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

/**
 * @brief Budgets and wiring knobs for the long-lived systems. Zero values
 * fall back to workable defaults so a manager can be built from a partial
 * configuration document.
 */
type SystemManagerConfig struct {
	/** @brief The directory the asset manager indexes and watches. */
	AssetsDir string

	MaxMeshCount          uint32
	MaxTextureCount       uint32
	MaxMaterialCount      uint32
	MaxShaderVariantCount uint32
	MaxCameraCount        uint16

	JobWorkerCount int
	JobQueueSize   int

	/** @brief Optional fonts to load at startup; nil creates an empty font system. */
	Fonts *metadata.FontSystemConfig
}

func (c *SystemManagerConfig) applyDefaults() {
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.MaxMeshCount == 0 {
		c.MaxMeshCount = 1024
	}
	if c.MaxTextureCount == 0 {
		c.MaxTextureCount = 1024
	}
	if c.MaxMaterialCount == 0 {
		c.MaxMaterialCount = 1024
	}
	if c.MaxShaderVariantCount == 0 {
		c.MaxShaderVariantCount = 512
	}
	if c.MaxCameraCount == 0 {
		c.MaxCameraCount = 16
	}
	if c.JobWorkerCount == 0 {
		c.JobWorkerCount = 4
	}
	if c.JobQueueSize == 0 {
		c.JobQueueSize = 128
	}
	if c.Fonts == nil {
		c.Fonts = &metadata.FontSystemConfig{}
	}
	if c.Fonts.MaxBitmapFontCount == 0 {
		c.Fonts.MaxBitmapFontCount = 16
	}
	if c.Fonts.MaxSystemFontCount == 0 {
		c.Fonts.MaxSystemFontCount = 16
	}
}

/**
 * @brief Owns every long-lived collaborator the frame preparation layer
 * depends on and wires them together in dependency order: assets first,
 * then jobs, buffers, materials, shaders, cameras and fonts. Shutdown
 * unwinds in reverse.
 */
type SystemManager struct {
	AssetManager     *assets.AssetManager
	JobSystem        *JobSystem
	BufferManager    *BufferManager
	MaterialRegistry *MaterialRegistry
	ShaderSystem     *ShaderSystem
	CameraSystem     *CameraSystem
	FontSystem       *FontSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	config.applyDefaults()

	assetManager, err := assets.NewAssetManager()
	if err != nil {
		return nil, err
	}
	if err := assetManager.Initialize(config.AssetsDir); err != nil {
		return nil, err
	}

	jobSystem, err := NewJobSystem(config.JobWorkerCount, config.JobQueueSize)
	if err != nil {
		return nil, err
	}

	bufferManager, err := NewBufferManager(BufferManagerConfig{
		MaxMeshCount:    config.MaxMeshCount,
		MaxTextureCount: config.MaxTextureCount,
	}, assetManager, jobSystem)
	if err != nil {
		return nil, err
	}

	materialRegistry, err := NewMaterialRegistry(MaterialRegistryConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, bufferManager, assetManager)
	if err != nil {
		return nil, err
	}

	shaderSystem, err := NewShaderSystem(ShaderSystemConfig{
		MaxVariantCount: config.MaxShaderVariantCount,
	}, bufferManager)
	if err != nil {
		return nil, err
	}

	cameraSystem, err := NewCameraSystem(CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
	})
	if err != nil {
		return nil, err
	}

	fontSystem, err := NewFontSystem(config.Fonts, bufferManager, assetManager)
	if err != nil {
		return nil, err
	}

	// Registries re-resolve their entries when watched asset files change.
	bufferManager.WatchAssetChanges()
	materialRegistry.WatchAssetChanges()

	return &SystemManager{
		AssetManager:     assetManager,
		JobSystem:        jobSystem,
		BufferManager:    bufferManager,
		MaterialRegistry: materialRegistry,
		ShaderSystem:     shaderSystem,
		CameraSystem:     cameraSystem,
		FontSystem:       fontSystem,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.FontSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.MaterialRegistry.Shutdown(); err != nil {
		return err
	}
	if err := sm.BufferManager.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return sm.AssetManager.Shutdown()
}
