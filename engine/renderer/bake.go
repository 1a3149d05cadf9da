package renderer

import (
	"os"
	"strconv"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
)

/**
 * @brief Environment variable that arms the one-shot lightmap baking path
 * for the whole process. Integer valued; any non-zero value enables it.
 */
const BakeLightmapsEnv = "LUMINA_BAKE_LIGHTMAPS"

var (
	bakeEnvOnce sync.Once
	bakeEnvOn   bool
)

// Detection runs once and is cached for the process lifetime.
func lightmapBakingEnvRequested() bool {
	bakeEnvOnce.Do(func() {
		value := os.Getenv(BakeLightmapsEnv)
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		bakeEnvOn = err == nil && n != 0
	})
	return bakeEnvOn
}

/**
 * @brief Hands the frame's lightmap-contributing models to the baker, at
 * most once: after the environment toggle or an explicit request fires the
 * callback, it stays quiet until BakeRequested is raised again. Frames with
 * nothing to bake never consume the shot.
 */
func (ld *LayerData) maybeBakeLightmaps() {
	if ld.baker == nil {
		return
	}
	if !ld.BakeRequested {
		if ld.bakeFired || !lightmapBakingEnvRequested() {
			return
		}
	}
	if len(ld.bakedLightingModels) == 0 {
		return
	}

	ld.bakeFired = true
	ld.BakeRequested = false
	core.LogInfo("layer '%s': baking lightmaps for %d models", ld.Config.Name, len(ld.bakedLightingModels))
	ld.baker(ld.bakedLightingModels)
}
