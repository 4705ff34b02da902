package riftplot

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera defaults.
const (
	DefaultFov  = 60.0
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// DefaultCameraPosition is where the camera starts, looking at the origin.
var DefaultCameraPosition = mgl64.Vec3{2, 2, 2}

// flyAnim holds the active FlyTo tweens, one per position component.
type flyAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// PerspectiveCamera is a right-handed perspective camera looking at Target.
// The projection is cached and only rebuilt by UpdateProjection; the view is
// rebuilt lazily whenever Position, Target or Up change through the setters.
type PerspectiveCamera struct {
	// Fov is the vertical field of view in degrees.
	Fov float64
	// Near and Far are the clip plane distances.
	Near, Far float64
	// Aspect is width / height. Set it through SetAspect and call
	// UpdateProjection to apply it.
	Aspect float64

	position mgl64.Vec3
	target   mgl64.Vec3
	up       mgl64.Vec3

	projection mgl64.Mat4
	view       mgl64.Mat4
	viewDirty  bool

	projectionUpdates int
	fly               *flyAnim
}

// NewPerspectiveCamera creates a camera with fov 60, near 0.1, far 1000,
// positioned at (2, 2, 2) and looking at the origin.
func NewPerspectiveCamera(aspect float64) *PerspectiveCamera {
	if aspect <= 0 {
		aspect = 1
	}
	c := &PerspectiveCamera{
		Fov:       DefaultFov,
		Near:      DefaultNear,
		Far:       DefaultFar,
		Aspect:    aspect,
		position:  DefaultCameraPosition,
		up:        mgl64.Vec3{0, 1, 0},
		viewDirty: true,
	}
	c.UpdateProjection()
	return c
}

// Position returns the camera position.
func (c *PerspectiveCamera) Position() mgl64.Vec3 { return c.position }

// Target returns the point the camera looks at.
func (c *PerspectiveCamera) Target() mgl64.Vec3 { return c.target }

// SetPosition moves the camera and cancels any FlyTo in progress.
func (c *PerspectiveCamera) SetPosition(p mgl64.Vec3) {
	c.fly = nil
	c.setPosition(p)
}

func (c *PerspectiveCamera) setPosition(p mgl64.Vec3) {
	if p == c.position {
		return
	}
	c.position = p
	c.viewDirty = true
}

// LookAt points the camera at target.
func (c *PerspectiveCamera) LookAt(target mgl64.Vec3) {
	if target == c.target {
		return
	}
	c.target = target
	c.viewDirty = true
}

// SetAspect stores a new aspect ratio. Non-positive values are ignored.
func (c *PerspectiveCamera) SetAspect(aspect float64) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// UpdateProjection rebuilds the projection matrix from Fov, Aspect, Near
// and Far.
func (c *PerspectiveCamera) UpdateProjection() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
	c.projectionUpdates++
}

// ProjectionUpdates returns how many times UpdateProjection has run.
func (c *PerspectiveCamera) ProjectionUpdates() int {
	return c.projectionUpdates
}

// Projection returns the cached projection matrix.
func (c *PerspectiveCamera) Projection() mgl64.Mat4 {
	return c.projection
}

// View returns the view matrix, recomputing it if dirty.
func (c *PerspectiveCamera) View() mgl64.Mat4 {
	if c.viewDirty {
		c.view = mgl64.LookAtV(c.position, c.target, c.up)
		c.viewDirty = false
	}
	return c.view
}

// ViewProjection returns Projection * View.
func (c *PerspectiveCamera) ViewProjection() mgl64.Mat4 {
	return c.projection.Mul4(c.View())
}

// Right returns the unit vector to the camera's right.
func (c *PerspectiveCamera) Right() mgl64.Vec3 {
	forward := c.target.Sub(c.position)
	if forward.Len() == 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	right := forward.Cross(c.up)
	if right.Len() == 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	return right.Normalize()
}

// EyeViewProjection returns the view-projection for an eye displaced by
// offset along the camera's right vector. projection is the per-eye
// projection, typically built for half the surface width.
func (c *PerspectiveCamera) EyeViewProjection(offset float64, projection mgl64.Mat4) mgl64.Mat4 {
	shift := c.Right().Mul(offset)
	view := mgl64.LookAtV(c.position.Add(shift), c.target.Add(shift), c.up)
	return projection.Mul4(view)
}

// FlyTo animates the camera position to p over duration seconds. A nil
// easing uses ease.InOutSine. A non-positive duration jumps immediately.
func (c *PerspectiveCamera) FlyTo(p mgl64.Vec3, duration float32, fn ease.TweenFunc) {
	if duration <= 0 {
		c.SetPosition(p)
		return
	}
	if fn == nil {
		fn = ease.InOutSine
	}
	a := &flyAnim{}
	for i := range 3 {
		a.tweens[i] = gween.New(float32(c.position[i]), float32(p[i]), duration, fn)
	}
	c.fly = a
}

// Flying reports whether a FlyTo animation is in progress.
func (c *PerspectiveCamera) Flying() bool {
	return c.fly != nil
}

// Advance steps the FlyTo animation.
func (c *PerspectiveCamera) Advance(dt float64) {
	if c.fly == nil {
		return
	}
	p := c.position
	for i := range 3 {
		if c.fly.done[i] {
			continue
		}
		v, done := c.fly.tweens[i].Update(float32(dt))
		p[i] = float64(v)
		c.fly.done[i] = done
	}
	c.setPosition(p)
	if c.fly.done[0] && c.fly.done[1] && c.fly.done[2] {
		c.fly = nil
	}
}

// project maps a world point through viewProj onto a w x h surface. ok is
// false for points behind the camera or outside the depth range.
func project(viewProj mgl64.Mat4, p mgl64.Vec3, w, h float64) (x, y float64, ok bool) {
	clip := viewProj.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-9 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, false
	}
	x = (ndc[0] + 1) * 0.5 * w
	y = (1 - ndc[1]) * 0.5 * h
	return x, y, true
}
