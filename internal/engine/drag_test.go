package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragStartRecordsOffset(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl")

	home := HomeSlot(0)
	grab := home.Add(mgl64.Vec3{0.1, 0.2, 0})
	require.NoError(t, w.DragStart("HCl", grab))
	assert.Equal(t, []Cursor{CursorGrabbing}, rec.cursors)

	// pointer did not move: container stays where it is
	require.NoError(t, w.DragMove("HCl", grab))
	c, _ := w.Container("HCl")
	assert.True(t, c.Position.ApproxEqual(home))
	assert.True(t, c.Dragged)
}

func TestDragMoveSmoothsTowardPointer(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	home := HomeSlot(0)
	require.NoError(t, w.DragStart("HCl", home))
	target := mgl64.Vec3{0, 1.8, 0}
	require.NoError(t, w.DragMove("HCl", target))

	c, _ := w.Container("HCl")
	want := home.Add(target.Sub(home).Mul(DragRate))
	assert.True(t, c.Position.ApproxEqual(want), "got %v want %v", c.Position, want)
}

func TestDragIsClamped(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	for range 100 {
		require.NoError(t, w.DragMove("HCl", mgl64.Vec3{-10, -5, 8}))
	}
	c, _ := w.Container("HCl")
	assert.InDelta(t, BoundsMin[0], c.Position[0], 1e-9)
	assert.InDelta(t, BoundsMin[1], c.Position[1], 1e-9)
	assert.InDelta(t, BoundsMax[2], c.Position[2], 1e-9)
}

func TestDragErrors(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl", "NaOH")

	assert.ErrorIs(t, w.DragStart("CuSO4", mgl64.Vec3{}), ErrNotPlaced)
	assert.ErrorIs(t, w.DragMove("HCl", mgl64.Vec3{}), ErrNotDragging)
	assert.ErrorIs(t, w.DragEnd("HCl"), ErrNotDragging)

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	assert.ErrorIs(t, w.DragMove("NaOH", mgl64.Vec3{}), ErrNotDragging)
}

func TestDragEndFarAwaySnapsBack(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl")

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	for range 50 {
		require.NoError(t, w.DragMove("HCl", mgl64.Vec3{-2, 2.5, -1}))
	}
	require.NoError(t, w.DragEnd("HCl"))
	assert.Equal(t, CursorDefault, rec.cursors[len(rec.cursors)-1])

	c, _ := w.Container("HCl")
	assert.True(t, c.Returning)

	for range 9 {
		w.Tick(ReferenceTick)
	}
	c, _ = w.Container("HCl")
	assert.True(t, c.Returning)
	assert.False(t, c.Position.ApproxEqual(HomeSlot(0)))

	w.Tick(ReferenceTick)
	c, _ = w.Container("HCl")
	assert.False(t, c.Returning)
	assert.Equal(t, HomeSlot(0), c.Position)
}

func TestDragEndNearBeakerStaysPut(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	for range 50 {
		require.NoError(t, w.DragMove("HCl", PourPoint()))
	}
	released, _ := w.Container("HCl")
	require.NoError(t, w.DragEnd("HCl"))
	w.Tick(ReferenceTick)

	c, _ := w.Container("HCl")
	assert.False(t, c.Returning)
	assert.Equal(t, released.Position, c.Position)
}

func TestDragStartCancelsSnapBack(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	for range 50 {
		require.NoError(t, w.DragMove("HCl", mgl64.Vec3{-2, 2.5, -1}))
	}
	require.NoError(t, w.DragEnd("HCl"))
	w.Tick(ReferenceTick)

	c, _ := w.Container("HCl")
	require.NoError(t, w.DragStart("HCl", c.Position))
	c, _ = w.Container("HCl")
	assert.False(t, c.Returning)
}

func TestRemoveWhileDragging(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl")

	require.NoError(t, w.DragStart("HCl", HomeSlot(0)))
	require.NoError(t, w.Remove("HCl"))
	_, dragging := w.Dragged()
	assert.False(t, dragging)
	assert.Equal(t, CursorDefault, rec.cursors[len(rec.cursors)-1])
	assert.Empty(t, w.Placed())
}
