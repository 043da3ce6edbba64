package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is the fixed viewpoint of the mixing workspace. It turns pointer
// coordinates into points in the workspace.
type Camera struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	FOV    float64 // vertical, radians
	Aspect float64
}

// DefaultCamera looks down at the bench from in front of it.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl64.Vec3{0, 2, 4},
		Target: mgl64.Vec3{0, 1, 0},
		Up:     mgl64.Vec3{0, 1, 0},
		FOV:    mgl64.DegToRad(60),
		Aspect: 16.0 / 9.0,
	}
}

func (c Camera) basis() (forward, right, up mgl64.Vec3) {
	forward = c.Target.Sub(c.Eye).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the ray through a pointer in normalised device coordinates
// (x and y in [-1, 1], y up).
func (c Camera) Ray(x, y float64) (origin, dir mgl64.Vec3) {
	forward, right, up := c.basis()
	h := math.Tan(c.FOV / 2)
	dir = forward.Add(right.Mul(x * h * c.Aspect)).Add(up.Mul(y * h)).Normalize()
	return c.Eye, dir
}

// ProjectPointer intersects the pointer ray with the camera-facing plane
// through anchor. ok is false if the ray misses the plane.
func (c Camera) ProjectPointer(x, y float64, anchor mgl64.Vec3) (p mgl64.Vec3, ok bool) {
	origin, dir := c.Ray(x, y)
	normal, _, _ := c.basis()
	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-9 {
		return mgl64.Vec3{}, false
	}
	t := anchor.Sub(origin).Dot(normal) / denom
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// ToScreen is the inverse of Ray: it returns the normalised device
// coordinates of a workspace point.
func (c Camera) ToScreen(p mgl64.Vec3) (x, y float64) {
	forward, right, up := c.basis()
	v := p.Sub(c.Eye)
	depth := v.Dot(forward)
	if depth <= 0 {
		return 0, 0
	}
	h := math.Tan(c.FOV / 2)
	return v.Dot(right) / (depth * h * c.Aspect), v.Dot(up) / (depth * h)
}
