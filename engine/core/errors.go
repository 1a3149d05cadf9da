package core

import (
	"errors"
)

var (
	// ErrStaleFrameLists signals that per-frame lists still hold entries from a
	// previous frame when preparation begins. The frame-reset contract was
	// violated and all derived state is unsound.
	ErrStaleFrameLists = errors.New("per-frame lists not cleared since last frame")

	// ErrDegenerateFrustum signals that frustum extraction failed for a camera.
	// Recoverable: culling is disabled for that camera this frame.
	ErrDegenerateFrustum = errors.New("camera produced a degenerate frustum")

	// ErrResourceUnavailable signals that a mesh, texture or shader is not
	// resident yet. Recoverable: the affected renderable is skipped this frame
	// and retried on the next one.
	ErrResourceUnavailable = errors.New("resource not available this frame")

	ErrUnknown = errors.New("unknown")
)
