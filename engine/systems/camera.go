package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/** @brief The camera registry configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of named cameras managed by the registry. */
	MaxCameraCount uint16
}

/** @brief One registry slot holding a named camera node. */
type CameraLookup struct {
	/** @brief The slot identifier, or InvalidIDUint16 when the slot is free. */
	ID uint16
	/** @brief The number of outstanding acquisitions. */
	ReferenceCount uint16
	/** @brief The camera-kind scene node held by this slot. */
	Node *scene.Node
}

/**
 * @brief Hands out named camera nodes so tools and views can share one
 * camera by name. Cameras are plain camera-kind scene nodes; the registry
 * only owns their lifetime, not their placement in a scene graph. A
 * default camera always exists as a fallback and is never released.
 */
type CameraSystem struct {
	config CameraSystemConfig

	mutex   sync.Mutex
	lookup  map[string]uint16
	cameras []CameraLookup

	defaultCamera *scene.Node
}

func NewCameraSystem(config CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("camera system config.MaxCameraCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}

	cs := &CameraSystem{
		config:        config,
		lookup:        make(map[string]uint16, config.MaxCameraCount),
		cameras:       make([]CameraLookup, config.MaxCameraCount),
		defaultCamera: scene.NewNode(scene.DEFAULT_CAMERA_NAME, scene.NodeKindCamera),
	}
	for i := range cs.cameras {
		cs.cameras[i].ID = metadata.InvalidIDUint16
	}
	return cs, nil
}

func (cs *CameraSystem) Shutdown() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	for i := range cs.cameras {
		cs.cameras[i] = CameraLookup{ID: metadata.InvalidIDUint16}
	}
	cs.lookup = make(map[string]uint16, cs.config.MaxCameraCount)
	return nil
}

/**
 * @brief Acquires a camera node by name, creating it on first use. The
 * slot's reference count is incremented; callers pair this with Release.
 * The default camera name always resolves without touching a slot.
 */
func (cs *CameraSystem) Acquire(name string) (*scene.Node, error) {
	if name == scene.DEFAULT_CAMERA_NAME {
		return cs.defaultCamera, nil
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	id, found := cs.lookup[name]
	if !found {
		id = cs.freeSlot()
		if id == metadata.InvalidIDUint16 {
			err := fmt.Errorf("camera system is out of slots; adjust MaxCameraCount to allow more than %d", cs.config.MaxCameraCount)
			core.LogError(err.Error())
			return nil, err
		}

		core.LogDebug("creating camera '%s'", name)
		cs.cameras[id] = CameraLookup{
			ID:   id,
			Node: scene.NewNode(name, scene.NodeKindCamera),
		}
		cs.lookup[name] = id
	}

	cs.cameras[id].ReferenceCount++
	return cs.cameras[id].Node, nil
}

/**
 * @brief Releases a named camera. When the reference count reaches zero
 * the slot is reclaimed and the name forgets its camera.
 */
func (cs *CameraSystem) Release(name string) {
	if name == scene.DEFAULT_CAMERA_NAME {
		core.LogDebug("the default camera cannot be released, nothing was done")
		return
	}

	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	id, found := cs.lookup[name]
	if !found {
		core.LogWarn("released unknown camera '%s', nothing was done", name)
		return
	}

	cs.cameras[id].ReferenceCount--
	if cs.cameras[id].ReferenceCount < 1 {
		cs.cameras[id] = CameraLookup{ID: metadata.InvalidIDUint16}
		delete(cs.lookup, name)
	}
}

/** @brief The fallback camera. Always valid, never reference counted. */
func (cs *CameraSystem) GetDefault() *scene.Node {
	return cs.defaultCamera
}

// freeSlot scans for an unused slot. Callers hold the mutex.
func (cs *CameraSystem) freeSlot() uint16 {
	for i := uint16(0); i < cs.config.MaxCameraCount; i++ {
		if cs.cameras[i].ID == metadata.InvalidIDUint16 {
			return i
		}
	}
	return metadata.InvalidIDUint16
}
