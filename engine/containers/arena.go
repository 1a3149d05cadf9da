package containers

/**
 * @brief A typed bump allocator whose entire contents are invalidated at
 * once. Values handed out by Alloc stay valid until the next Reset call;
 * they are never individually freed. Storage grows in fixed-size blocks
 * that are kept and reused across resets, so a scene with a stable record
 * count allocates only during its first frame.
 *
 * Values must not own resources that need teardown: Reset recycles slots
 * by zeroing, nothing more.
 */
type FrameArena[T any] struct {
	blocks    [][]T
	blockSize int
	block     int
	used      int
}

const defaultArenaBlockSize = 256

func NewFrameArena[T any](blockSize int) *FrameArena[T] {
	if blockSize <= 0 {
		blockSize = defaultArenaBlockSize
	}
	return &FrameArena[T]{blockSize: blockSize}
}

/** @brief Returns a pointer to a zeroed slot valid until the next Reset. */
func (a *FrameArena[T]) Alloc() *T {
	if a.block >= len(a.blocks) {
		a.blocks = append(a.blocks, make([]T, a.blockSize))
	}
	blk := a.blocks[a.block]
	slot := &blk[a.used]
	var zero T
	*slot = zero
	a.used++
	if a.used == a.blockSize {
		a.block++
		a.used = 0
	}
	return slot
}

/** @brief Invalidates every value handed out so far. Blocks are kept. */
func (a *FrameArena[T]) Reset() {
	a.block = 0
	a.used = 0
}

/** @brief The number of live values allocated since the last Reset. */
func (a *FrameArena[T]) Live() int {
	return a.block*a.blockSize + a.used
}
