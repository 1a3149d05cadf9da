package engine

import (
	"github.com/spaghettifunk/lumina/engine/renderer"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/systems"
)

/**
 * @brief The application half of the frame loop. The engine injects the
 * system manager and renderer before FnInitialize runs; the callbacks are
 * invoked in the documented frame order and a returned error shuts the
 * loop down.
 */
type Game struct {
	Config        *EngineConfig
	SystemManager *systems.SystemManager
	Renderer      *renderer.Renderer
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

/** @brief Builds the scene and layers. Runs once, after the systems are up. */
type Initialize func() error

/** @brief Mutates the scene for the frame, before preparation. */
type Update func(deltaTime float64) error

/** @brief Consumes the prepared per-layer results. */
type Render func(results []*metadata.LayerPrepResult, deltaTime float64) error

/** @brief Reacts to surface size changes, after the engine resizes. */
type OnResize func(width uint32, height uint32) error

/** @brief Releases game-held resources. Runs before the systems go down. */
type Shutdown func() error
