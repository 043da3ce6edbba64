package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DragRate is how far a dragged container moves toward the pointer per move event.
const DragRate = 0.3

// DragStart grabs a container. pointer is the pointer projected into the
// workspace; the offset to the container is kept for the whole drag.
func (w *Workspace) DragStart(id string, pointer mgl64.Vec3) error {
	c, ok := w.containers.Get(id)
	if !ok {
		return ErrNotPlaced
	}
	w.dragged = id
	w.dragOffset = pointer.Sub(c.Position)
	c.snap = nil
	w.presenter.SetCursor(CursorGrabbing)
	return nil
}

// DragMove eases the dragged container toward the pointer, clamped to the workspace.
func (w *Workspace) DragMove(id string, pointer mgl64.Vec3) error {
	if w.dragged == "" || w.dragged != id {
		return ErrNotDragging
	}
	c, ok := w.containers.Get(id)
	if !ok {
		return ErrNotPlaced
	}
	rate := DragRate
	if w.opts.ReducedMotion {
		rate = 1
	}
	target := ClampToWorkspace(pointer.Sub(w.dragOffset))
	c.Position = ClampToWorkspace(ApproachVec(c.Position, target, rate))
	return nil
}

// DragEnd releases the container. If it was dropped far from the beaker it
// glides back to its home slot over the next ticks, otherwise it stays put.
func (w *Workspace) DragEnd(id string) error {
	if w.dragged == "" || w.dragged != id {
		return ErrNotDragging
	}
	w.dragged = ""
	w.presenter.SetCursor(CursorDefault)

	c, ok := w.containers.Get(id)
	if !ok {
		return ErrNotPlaced
	}
	if c.Position.Sub(VesselPosition).Len() > SnapBackReach {
		c.snap = &snapBack{from: c.Position, to: c.Home}
		if w.opts.ReducedMotion {
			c.Position = c.Home
			c.snap = nil
		}
	}
	return nil
}

func (w *Workspace) stepSnapBack(c *Container, steps float64) {
	if c.snap == nil {
		return
	}
	c.snap.progress = math.Min(1, c.snap.progress+SnapBackRate*steps)
	c.Position = ApproachVec(c.snap.from, c.snap.to, c.snap.progress)
	if c.snap.progress >= 1-1e-9 {
		c.Position = c.snap.to
		c.snap = nil
	}
}

// PourPoint is a spot above and beside the beaker where any container pours.
func PourPoint() mgl64.Vec3 {
	return VesselPosition.Add(mgl64.Vec3{0.4, 0.7, 0})
}
