// Package platform describes the output surfaces frames are prepared
// for. A surface is a plain size/scale descriptor owned by whatever
// embeds the engine; there is no windowing here, resize notifications
// arrive from the outside and are rebroadcast on the event bus.
package platform

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
)

/**
 * @brief One output surface. Dimensions are in logical units; the device
 * pixel ratio scales them to the pixel viewport handed to preparation.
 */
type Surface struct {
	/** @brief Runtime identifier carried by resize events. */
	ID uint32
	/** @brief Display name used in logs. */
	Name string

	mutex            sync.RWMutex
	width            uint32
	height           uint32
	devicePixelRatio float32
}

/**
 * @brief Creates a surface descriptor. Zero dimensions are valid and
 * describe a minimized surface; a non-positive pixel ratio falls back
 * to 1.
 */
func NewSurface(name string, width, height uint32, devicePixelRatio float32) *Surface {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	return &Surface{
		ID:               core.IdentifierAcquireNewID(name),
		Name:             name,
		width:            width,
		height:           height,
		devicePixelRatio: devicePixelRatio,
	}
}

/** @brief Releases the surface's runtime identifier. */
func (s *Surface) Destroy() {
	if err := core.IdentifierReleaseID(s.ID); err != nil {
		core.LogWarn("surface '%s': %s", s.Name, err.Error())
	}
}

/**
 * @brief Applies a new logical size. A genuine change fires
 * EVENT_CODE_SURFACE_RESIZED; same-size calls are dropped silently so
 * embedders may forward every host resize without debouncing.
 */
func (s *Surface) Resize(width, height uint32) {
	s.mutex.Lock()
	if width == s.width && height == s.height {
		s.mutex.Unlock()
		return
	}
	s.width = width
	s.height = height
	s.mutex.Unlock()

	core.LogDebug("surface '%s' resized to %dx%d", s.Name, width, height)
	core.EventFire(core.EVENT_CODE_SURFACE_RESIZED, s, core.EventContext{
		Type: core.EVENT_CODE_SURFACE_RESIZED,
		Data: &core.SurfaceResizeEvent{
			SurfaceID: s.ID,
			Width:     width,
			Height:    height,
		},
	})
}

/** @brief Updates the device pixel ratio. Non-positive values are rejected. */
func (s *Surface) SetDevicePixelRatio(ratio float32) error {
	if ratio <= 0 {
		return fmt.Errorf("surface '%s': device pixel ratio must be positive, got %f", s.Name, ratio)
	}
	s.mutex.Lock()
	s.devicePixelRatio = ratio
	s.mutex.Unlock()
	return nil
}

/** @brief The logical width. */
func (s *Surface) Width() uint32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.width
}

/** @brief The logical height. */
func (s *Surface) Height() uint32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.height
}

/** @brief The device pixel ratio. */
func (s *Surface) DevicePixelRatio() float32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.devicePixelRatio
}

/**
 * @brief The viewport in pixels, the unit frame preparation works in.
 */
func (s *Surface) PixelSize() (float32, float32) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return float32(s.width) * s.devicePixelRatio, float32(s.height) * s.devicePixelRatio
}

/** @brief True while either dimension is zero. */
func (s *Surface) Minimized() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.width == 0 || s.height == 0
}
