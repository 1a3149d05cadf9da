package core

import "sync"

// System internal event codes. Applications should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the frame loop down at the end of the current frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// An output surface changed size.
	/* Context data: *SurfaceResizeEvent */
	EVENT_CODE_SURFACE_RESIZED SystemEventCode = 0x02

	// An asset file changed on disk.
	/* Context data: *AssetModifiedEvent */
	EVENT_CODE_ASSET_MODIFIED SystemEventCode = 0x03

	// The engine configuration file was rewritten.
	/* Context data: *AssetModifiedEvent */
	EVENT_CODE_CONFIG_RELOADED SystemEventCode = 0x04

	// Debug view mode changed (lit, lighting only, normals).
	/* Context data: int */
	EVENT_CODE_SET_RENDER_MODE SystemEventCode = 0x0A

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type SurfaceResizeEvent struct {
	SurfaceID uint32
	Width     uint32
	Height    uint32
}

type AssetModifiedEvent struct {
	Path      string
	AssetName string
}

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

// State structure.
type eventSystemState struct {
	mu sync.Mutex
	// Lookup table for event codes.
	registered [MAX_MESSAGE_CODES]eventCodeEntry
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for i := 0; i < MAX_MESSAGE_CODES; i++ {
		eventState.registered[i].events = nil
	}
	return nil
}

// EventRegister listens for events fired with the provided code. Duplicate
// listener/callback combos are not registered again and return false.
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	for _, e := range eventState.registered[code].events {
		if e.listener == listener {
			return false
		}
	}
	eventState.registered[code].events = append(eventState.registered[code].events, &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// EventUnregister stops listening for events with the provided code. Returns
// false when no matching registration exists.
func EventUnregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()

	events := eventState.registered[code].events
	for i, e := range events {
		if e.listener == listener && e.callback != nil {
			eventState.registered[code].events = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire dispatches to listeners of the given code. A handler returning
// true consumes the event and stops propagation.
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	events := make([]*registeredEvent, len(eventState.registered[code].events))
	copy(events, eventState.registered[code].events)
	eventState.mu.Unlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}
