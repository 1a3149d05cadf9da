package containers

/**
 * @brief A list that persists across frames and amortizes allocation for
 * stable element counts: each frame the cursor rewinds to zero and
 * collected elements overwrite the previous frame's slots in place,
 * growing only when the frame collects more than any frame before it.
 *
 * A list collects either at the back (Collect) or at the front
 * (CollectFront, elements fill backward from the end so the most recently
 * collected element is first); the two must not be mixed within a frame.
 */
type FrameList[T any] struct {
	items  []T
	cursor int
	front  bool
}

/** @brief Places v in the next slot, reusing or appending as needed. */
func (l *FrameList[T]) Collect(v T) {
	if l.cursor < len(l.items) {
		l.items[l.cursor] = v
	} else {
		l.items = append(l.items, v)
	}
	l.cursor++
}

/**
 * @brief Places v ahead of everything collected so far this frame.
 * Slots are reused backward from the end of the retained storage.
 */
func (l *FrameList[T]) CollectFront(v T) {
	l.front = true
	if l.cursor < len(l.items) {
		l.items[len(l.items)-l.cursor-1] = v
	} else {
		l.items = append(l.items, v)
		copy(l.items[1:], l.items[:len(l.items)-1])
		l.items[0] = v
	}
	l.cursor++
}

/**
 * @brief Discards slots retained from previous frames that this frame did
 * not overwrite. Called once after collection; afterwards Len equals the
 * number of elements collected this frame.
 */
func (l *FrameList[T]) Trim() {
	if l.cursor >= len(l.items) {
		return
	}
	if l.front {
		// Stale slots sit at the front for front-collected lists.
		copy(l.items, l.items[len(l.items)-l.cursor:])
	}
	l.items = l.items[:l.cursor]
}

/** @brief Rewinds the cursor for a new frame. Capacity is retained. */
func (l *FrameList[T]) Reset() {
	l.cursor = 0
	l.front = false
}

/** @brief Drops all elements and retained capacity. */
func (l *FrameList[T]) Clear() {
	l.items = l.items[:0]
	l.cursor = 0
	l.front = false
}

/** @brief The number of elements collected this frame. */
func (l *FrameList[T]) Len() int {
	return l.cursor
}

/**
 * @brief A view over this frame's elements, in order. Valid until the
 * next Collect/Reset.
 */
func (l *FrameList[T]) Items() []T {
	if l.front && l.cursor < len(l.items) {
		return l.items[len(l.items)-l.cursor:]
	}
	return l.items[:l.cursor]
}

/** @brief The i-th element of this frame, in collection order. */
func (l *FrameList[T]) At(i int) T {
	return l.Items()[i]
}
