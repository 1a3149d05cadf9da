package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameListCollectAndTrim(t *testing.T) {
	l := &FrameList[int]{}

	l.Collect(1)
	l.Collect(2)
	l.Collect(3)
	l.Trim()
	assert.Equal(t, []int{1, 2, 3}, l.Items())

	// Next frame with fewer elements: slots reused, tail trimmed.
	l.Reset()
	l.Collect(7)
	l.Trim()
	require.Equal(t, 1, l.Len())
	assert.Equal(t, []int{7}, l.Items())

	// Growing again appends past the retained slot.
	l.Reset()
	l.Collect(10)
	l.Collect(11)
	l.Trim()
	assert.Equal(t, []int{10, 11}, l.Items())
}

func TestFrameListCollectFrontOrder(t *testing.T) {
	l := &FrameList[string]{}

	l.CollectFront("a")
	l.CollectFront("b")
	l.CollectFront("c")
	l.Trim()
	// Most recently collected element comes first.
	assert.Equal(t, []string{"c", "b", "a"}, l.Items())

	// Reuse path: same count, slots overwritten in place.
	l.Reset()
	l.CollectFront("x")
	l.CollectFront("y")
	l.CollectFront("z")
	l.Trim()
	assert.Equal(t, []string{"z", "y", "x"}, l.Items())

	// Shrinking frame: stale front slots must be dropped, not the
	// elements collected this frame.
	l.Reset()
	l.CollectFront("p")
	l.CollectFront("q")
	l.Trim()
	assert.Equal(t, []string{"q", "p"}, l.Items())
}

func TestFrameListItemsBeforeTrim(t *testing.T) {
	l := &FrameList[int]{}
	l.Collect(1)
	l.Collect(2)
	l.Collect(3)
	l.Trim()

	l.Reset()
	l.Collect(9)
	// Items must reflect only this frame's elements even before Trim.
	assert.Equal(t, []int{9}, l.Items())
	assert.Equal(t, 1, l.Len())
}

func TestFrameArenaRecyclesSlots(t *testing.T) {
	a := NewFrameArena[[4]float32](2)

	p1 := a.Alloc()
	p2 := a.Alloc()
	p3 := a.Alloc() // spills into a second block
	require.Equal(t, 3, a.Live())

	p1[0] = 1.5
	p2[0] = 2.5
	p3[0] = 3.5

	a.Reset()
	assert.Equal(t, 0, a.Live())

	// Same slots come back zeroed.
	q1 := a.Alloc()
	assert.Same(t, p1, q1)
	assert.Equal(t, float32(0), q1[0])

	q2 := a.Alloc()
	q3 := a.Alloc()
	assert.Same(t, p2, q2)
	assert.Same(t, p3, q3)
}
