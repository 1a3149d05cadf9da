package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/systems"
)

/**
 * @brief Whole-engine settings, one TOML document. Everything has a
 * usable zero-configuration default; files only state what they change.
 * The file is watched and re-fires EVENT_CODE_CONFIG_RELOADED on write,
 * at which point layer sections are re-applied to live layers.
 */
type EngineConfig struct {
	Application ApplicationConfig      `toml:"application"`
	Surface     SurfaceConfig          `toml:"surface"`
	Assets      AssetsConfig           `toml:"assets"`
	Budgets     BudgetsConfig          `toml:"budgets"`
	Device      DeviceConfig           `toml:"device"`
	Fonts       FontsConfig            `toml:"fonts"`
	Layers      []renderer.LayerConfig `toml:"layers"`
}

type ApplicationConfig struct {
	/** @brief The application name used in logs and identifiers. */
	Name string `toml:"name"`
	/** @brief Minimum severity emitted: debug, info, warn or error. */
	LogLevel string `toml:"log_level"`
	/** @brief Caps the frame rate; zero disables pacing. */
	TargetFrameRate int `toml:"target_frame_rate"`
}

type SurfaceConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	/** @brief Scale from logical units to pixels. */
	DevicePixelRatio float32 `toml:"device_pixel_ratio"`
}

type AssetsConfig struct {
	/** @brief The root directory asset lookups resolve against. */
	Dir string `toml:"dir"`
}

/** @brief Registry capacities. Zero fields use the registry defaults. */
type BudgetsConfig struct {
	MaxMeshCount          uint32 `toml:"max_mesh_count"`
	MaxTextureCount       uint32 `toml:"max_texture_count"`
	MaxMaterialCount      uint32 `toml:"max_material_count"`
	MaxShaderVariantCount uint32 `toml:"max_shader_variant_count"`
	MaxCameraCount        uint16 `toml:"max_camera_count"`
	JobWorkerCount        int    `toml:"job_worker_count"`
	JobQueueSize          int    `toml:"job_queue_size"`
}

/**
 * @brief Device limits the consuming backend reports. Tools model
 * constrained hardware by setting these; zero fields mean unbounded.
 */
type DeviceConfig struct {
	MaxUniformBufferRange uint32 `toml:"max_uniform_buffer_range"`
	MaxTextureSize        uint32 `toml:"max_texture_size"`
}

type FontsConfig struct {
	MaxBitmapFontCount uint8             `toml:"max_bitmap_font_count"`
	MaxSystemFontCount uint8             `toml:"max_system_font_count"`
	Bitmap             []BitmapFontEntry `toml:"bitmap"`
	System             []SystemFontEntry `toml:"system"`
}

type BitmapFontEntry struct {
	Name         string `toml:"name"`
	Size         uint16 `toml:"size"`
	ResourceName string `toml:"resource_name"`
}

type SystemFontEntry struct {
	Name         string `toml:"name"`
	DefaultSize  uint16 `toml:"default_size"`
	ResourceName string `toml:"resource_name"`
}

/** @brief The settings used when no configuration file exists. */
func NewEngineConfig() *EngineConfig {
	return &EngineConfig{
		Application: ApplicationConfig{
			Name:            "Lumina",
			LogLevel:        "info",
			TargetFrameRate: 60,
		},
		Surface: SurfaceConfig{
			Width:            1280,
			Height:           720,
			DevicePixelRatio: 1.0,
		},
		Assets: AssetsConfig{Dir: "assets"},
	}
}

/**
 * @brief Reads a TOML configuration file over the defaults. A missing
 * file is not an error; defaults apply and a notice is logged.
 */
func LoadEngineConfig(path string) (*EngineConfig, error) {
	config := NewEngineConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("no configuration at '%s', using defaults", path)
			return config, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("configuration file %s is not valid TOML: %w", path, err)
	}
	return config, nil
}

func (c *EngineConfig) logLevel() core.LogLevel {
	switch c.Application.LogLevel {
	case "debug":
		return core.LogLevelDebug
	case "warn":
		return core.LogLevelWarn
	case "error":
		return core.LogLevelError
	default:
		return core.LogLevelInfo
	}
}

/** @brief Maps the budget and font sections onto system manager settings. */
func (c *EngineConfig) systemManagerConfig() systems.SystemManagerConfig {
	fonts := &metadata.FontSystemConfig{
		MaxBitmapFontCount: c.Fonts.MaxBitmapFontCount,
		MaxSystemFontCount: c.Fonts.MaxSystemFontCount,
	}
	for _, entry := range c.Fonts.Bitmap {
		fonts.BitmapFontConfigs = append(fonts.BitmapFontConfigs, &metadata.BitmapFontConfig{
			Name:         entry.Name,
			Size:         entry.Size,
			ResourceName: entry.ResourceName,
		})
	}
	fonts.DefaultBitmapFontCount = uint8(len(fonts.BitmapFontConfigs))
	for _, entry := range c.Fonts.System {
		fonts.SystemFontConfigs = append(fonts.SystemFontConfigs, &metadata.SystemFontConfig{
			Name:         entry.Name,
			DefaultSize:  entry.DefaultSize,
			ResourceName: entry.ResourceName,
		})
	}
	fonts.DefaultSystemFontCount = uint8(len(fonts.SystemFontConfigs))

	return systems.SystemManagerConfig{
		AssetsDir:             c.Assets.Dir,
		MaxMeshCount:          c.Budgets.MaxMeshCount,
		MaxTextureCount:       c.Budgets.MaxTextureCount,
		MaxMaterialCount:      c.Budgets.MaxMaterialCount,
		MaxShaderVariantCount: c.Budgets.MaxShaderVariantCount,
		MaxCameraCount:        c.Budgets.MaxCameraCount,
		JobWorkerCount:        c.Budgets.JobWorkerCount,
		JobQueueSize:          c.Budgets.JobQueueSize,
		Fonts:                 fonts,
	}
}

func (c *EngineConfig) capabilities() metadata.RendererCapabilities {
	return metadata.RendererCapabilities{
		MaxUniformBufferRange: c.Device.MaxUniformBufferRange,
		MaxTextureSize:        c.Device.MaxTextureSize,
	}
}
