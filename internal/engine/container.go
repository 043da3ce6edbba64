package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tatianab/virtual-lab/internal/models"
)

// Workspace bounds. Containers can never be dragged outside this box.
var (
	BoundsMin = mgl64.Vec3{-2, 0.8, -1}
	BoundsMax = mgl64.Vec3{2, 3, 1}
)

// ClampToWorkspace clamps p to the workspace box.
func ClampToWorkspace(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], BoundsMin[0], BoundsMax[0]),
		mgl64.Clamp(p[1], BoundsMin[1], BoundsMax[1]),
		mgl64.Clamp(p[2], BoundsMin[2], BoundsMax[2]),
	}
}

// HomeSlot is the resting position of the i-th placed container.
func HomeSlot(i int) mgl64.Vec3 {
	return ClampToWorkspace(mgl64.Vec3{-1.5 + 3*float64(i), 0.8, 0})
}

// Container is one flask, dropper or litmus strip on the bench.
type Container struct {
	ChemicalID string
	Name       string
	Kind       models.ContainerKind
	// Known is false when the chemical is missing from the registry. Such
	// containers are drawn as placeholders and ignored by the mixer.
	Known bool

	Position  mgl64.Vec3
	Home      mgl64.Vec3
	Tilt      float64
	Remaining float64
	Squeezed  bool

	slot int
	snap *snapBack
}

type snapBack struct {
	from, to mgl64.Vec3
	progress float64
}

func (c *Container) restore() {
	c.Position = c.Home
	c.Tilt = 0
	c.Remaining = 1
	c.Squeezed = false
	c.snap = nil
}

// ContainerSnapshot is a read-only copy of a container for rendering.
type ContainerSnapshot struct {
	ChemicalID string
	Name       string
	Kind       models.ContainerKind
	Known      bool
	Position   mgl64.Vec3
	Tilt       float64
	Remaining  float64
	Squeezed   bool
	Dragged    bool
	Returning  bool
	InPourZone bool
}
