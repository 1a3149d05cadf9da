package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/platform"
	"github.com/spaghettifunk/lumina/engine/renderer"
	"github.com/spaghettifunk/lumina/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief Drives the frame loop: update, preparation, render callback,
 * metrics, pacing. Owns the output surface, the system manager and the
 * preparation frontend; the game instance owns the scenes.
 */
type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   atomic.Bool
	surface       *platform.Surface
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	clock         *core.Clock
	lastTime      float64
}

/**
 * @brief Builds an engine for the given game. A nil game config means
 * pure defaults. Event and metrics singletons are brought up here so the
 * constructors below may already publish.
 */
func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine requires a game instance")
	}
	if g.Config == nil {
		g.Config = NewEngineConfig()
	}
	config := g.Config

	core.SetLogLevel(config.logLevel())
	if !core.EventSystemInitialize() {
		return nil, fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return nil, err
	}

	sm, err := systems.NewSystemManager(config.systemManagerConfig())
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r, err := renderer.NewRenderer(renderer.RendererConfig{
		ApplicationName: config.Application.Name,
		Capabilities:    config.capabilities(),
	}, sm)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	g.SystemManager = sm
	g.Renderer = r

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		surface:       platform.NewSurface(config.Application.Name, config.Surface.Width, config.Surface.Height, config.Surface.DevicePixelRatio),
		systemManager: sm,
		renderer:      r,
		clock:         core.NewClock(),
	}
	e.isRunning.Store(true)
	return e, nil
}

/**
 * @brief Registers the engine's event interests and hands control to the
 * game's initialize callback, which builds scenes and layers.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_SURFACE_RESIZED, e, e.onResized)
	core.EventRegister(core.EVENT_CODE_CONFIG_RELOADED, e, e.onConfigReloaded)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.surface.Width(), e.surface.Height()); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

/** @brief The output surface frames are prepared for. */
func (e *Engine) Surface() *platform.Surface {
	return e.surface
}

/**
 * @brief The frame loop. Each iteration updates the game, runs the
 * preparation pass for every layer, hands the results to the render
 * callback and folds the frame into the metrics state. Runs until a quit
 * event or a callback error.
 */
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	targetSeconds := 0.0
	if rate := e.gameInstance.Config.Application.TargetFrameRate; rate > 0 {
		targetSeconds = 1.0 / float64(rate)
	}

	for e.isRunning.Load() {
		if e.isSuspended.Load() {
			// Nothing to prepare against; idle until a resize restores us.
			time.Sleep(50 * time.Millisecond)
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				break
			}
		}

		results := e.renderer.PrepareFrame(e.surface)

		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(results, delta); err != nil {
				core.LogError("game render failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				break
			}
		}

		e.clock.Update()
		frameElapsed := e.clock.Elapsed() - currentTime
		core.MetricsUpdate(frameElapsed, e.renderer.FrameStats())

		if remaining := targetSeconds - frameElapsed; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}

		e.lastTime = currentTime
	}

	return nil
}

/** @brief Stops the frame loop at the end of the current iteration. */
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}

	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventUnregister(core.EVENT_CODE_SURFACE_RESIZED, e, e.onResized)
	core.EventUnregister(core.EVENT_CODE_CONFIG_RELOADED, e, e.onConfigReloaded)

	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	e.surface.Destroy()
	return nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("application quit requested, shutting down")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	ev, ok := data.Data.(*core.SurfaceResizeEvent)
	if !ok {
		core.LogError("wrong event data for event type %d", code)
		return false
	}
	if ev.SurfaceID != e.surface.ID {
		return false
	}

	if ev.Width == 0 || ev.Height == 0 {
		core.LogInfo("surface minimized, suspending the frame loop")
		e.isSuspended.Store(true)
		return true
	}
	if e.isSuspended.Load() {
		core.LogInfo("surface restored, resuming the frame loop")
		e.isSuspended.Store(false)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(ev.Width, ev.Height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}

/**
 * @brief Re-applies a rewritten configuration file to the running engine:
 * log level immediately, layer sections onto live layers by name. Budgets
 * and font sets stay as constructed; capacities do not resize mid-run.
 */
func (e *Engine) onConfigReloaded(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	ev, ok := data.Data.(*core.AssetModifiedEvent)
	if !ok {
		return false
	}

	config, err := LoadEngineConfig(ev.Path)
	if err != nil {
		core.LogWarn("configuration reload skipped: %s", err.Error())
		return false
	}
	core.SetLogLevel(config.logLevel())

	applied := 0
	for _, layerConfig := range config.Layers {
		if ld, found := e.renderer.Layer(layerConfig.Name); found {
			ld.Config = layerConfig
			applied++
		}
	}
	core.LogInfo("configuration reloaded from '%s', %d layer(s) updated", ev.Path, applied)
	return false
}
