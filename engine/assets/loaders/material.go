package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type MaterialLoader struct{}

/**
 * @brief Parses a .lmt material definition, a TOML document mapping onto
 * MaterialConfig. Enum-valued strings are validated here so registry
 * resolution never sees unknown tokens.
 */
func (ml *MaterialLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &metadata.MaterialConfig{}
	if err := toml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("material file %s is not valid TOML: %w", path, err)
	}

	if err := validateMaterial(config); err != nil {
		return nil, fmt.Errorf("material file %s: %w", path, err)
	}

	return &metadata.Resource{
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(raw)),
		Data:     config,
	}, nil
}

func (ml *MaterialLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}

var (
	materialKinds      = tokenSet("", "default", "principled", "specular_glossy", "custom")
	materialLightings  = tokenSet("", "none", "fragment")
	materialBlendModes = tokenSet("", "source_over", "screen", "multiply")
	materialAlphaModes = tokenSet("", "default", "mask", "blend", "opaque")
	materialCullModes  = tokenSet("", "none", "front", "back", "front_and_back")
	materialDepthDraws = tokenSet("", "opaque_only", "always", "never", "opaque_pre_pass")
	materialCaps       = tokenSet("blending", "screen_texture", "screen_mip_texture", "depth_texture", "ao_texture", "always_dirty")
	materialChannels   = tokenSet("", "r", "g", "b", "a")
)

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func validateMaterial(config *metadata.MaterialConfig) error {
	if config.Name == "" {
		return fmt.Errorf("material name is required")
	}
	if _, ok := materialKinds[config.Kind]; !ok {
		return fmt.Errorf("unknown material kind %q", config.Kind)
	}
	if _, ok := materialLightings[config.Lighting]; !ok {
		return fmt.Errorf("unknown lighting mode %q", config.Lighting)
	}
	if _, ok := materialBlendModes[config.BlendMode]; !ok {
		return fmt.Errorf("unknown blend mode %q", config.BlendMode)
	}
	if _, ok := materialAlphaModes[config.AlphaMode]; !ok {
		return fmt.Errorf("unknown alpha mode %q", config.AlphaMode)
	}
	if _, ok := materialCullModes[config.CullMode]; !ok {
		return fmt.Errorf("unknown cull mode %q", config.CullMode)
	}
	if _, ok := materialDepthDraws[config.DepthDraw]; !ok {
		return fmt.Errorf("unknown depth draw mode %q", config.DepthDraw)
	}
	if config.Kind == "custom" && config.ShaderName == "" {
		return fmt.Errorf("custom material requires shader_name")
	}
	for _, capability := range config.Capabilities {
		if _, ok := materialCaps[capability]; !ok {
			return fmt.Errorf("unknown capability %q", capability)
		}
	}
	for slot, m := range config.Maps {
		if m.Image == "" {
			return fmt.Errorf("map %q has no image", slot)
		}
		if _, ok := materialChannels[m.Channel]; !ok {
			return fmt.Errorf("map %q has unknown channel %q", slot, m.Channel)
		}
	}
	if config.AlphaCutoff < 0.0 || config.AlphaCutoff > 1.0 {
		return fmt.Errorf("alpha_cutoff must be within [0, 1]")
	}
	if config.Opacity != nil && (*config.Opacity < 0.0 || *config.Opacity > 1.0) {
		return fmt.Errorf("opacity must be within [0, 1]")
	}
	return nil
}
