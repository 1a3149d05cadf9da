// Package passes holds the per-frame executors scheduled by frame
// preparation. Each pass receives the prepared lists it consumes and is
// otherwise opaque to the preparation logic; Release drops the frame data
// and is invoked both at frame reset and at destruction.
package passes

/** @brief A single scheduled render pass. */
type Pass interface {
	/** @brief A stable identifier used in diagnostics and tests. */
	Name() string
	/** @brief Drops all per-frame data held by the pass. */
	Release()
}
