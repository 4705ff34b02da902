package riftplot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Controller is advanced once per frame by the Scheduler.
type Controller interface {
	Advance(dt float64) error
}

// PointerState is a snapshot of pointer input for one frame.
type PointerState struct {
	X, Y    float64
	Pressed bool    // primary button held
	Wheel   float64 // vertical wheel delta this frame
	// Captured is true while keyboard and pointer input belong to the
	// editor overlay; camera controls ignore the pointer then.
	Captured bool
}

// PointerSource supplies pointer input to OrbitControls.
type PointerSource interface {
	Pointer() PointerState
}

// Orbit defaults.
const (
	DefaultRotateSpeed = 1.0
	DefaultZoomSpeed   = 1.0
	DefaultDamping     = 0.15
)

// orbitRadiansPerPixel converts drag distance into rotation at speed 1.
const orbitRadiansPerPixel = 0.005

// OrbitControls rotates the camera around its target by dragging and zooms
// with the wheel. Motion is damped: drag adds angular velocity that decays
// by Damping every frame.
type OrbitControls struct {
	Enabled     bool
	RotateSpeed float64
	ZoomSpeed   float64
	// Damping in [0, 1]; 1 stops immediately.
	Damping     float64
	MinDistance float64
	MaxDistance float64

	cam *PerspectiveCamera
	src PointerSource

	velTheta, velPhi float64
	dragging         bool
	lastX, lastY     float64
}

// NewOrbitControls creates enabled orbit controls for cam. src may be nil,
// in which case only damping runs.
func NewOrbitControls(cam *PerspectiveCamera, src PointerSource) *OrbitControls {
	return &OrbitControls{
		Enabled:     true,
		RotateSpeed: DefaultRotateSpeed,
		ZoomSpeed:   DefaultZoomSpeed,
		Damping:     DefaultDamping,
		MinDistance: 0.1,
		MaxDistance: 500,
		cam:         cam,
		src:         src,
	}
}

// Advance reads the pointer and moves the camera.
func (o *OrbitControls) Advance(dt float64) error {
	if !o.Enabled || o.cam.Flying() {
		o.dragging = false
		o.velTheta, o.velPhi = 0, 0
		return nil
	}
	zoom := 0.0
	if o.src != nil {
		p := o.src.Pointer()
		switch {
		case p.Captured:
			o.dragging = false
		case p.Pressed && o.dragging:
			o.velTheta -= (p.X - o.lastX) * orbitRadiansPerPixel * o.RotateSpeed
			o.velPhi -= (p.Y - o.lastY) * orbitRadiansPerPixel * o.RotateSpeed
			o.lastX, o.lastY = p.X, p.Y
		case p.Pressed:
			o.dragging = true
			o.lastX, o.lastY = p.X, p.Y
		default:
			o.dragging = false
		}
		if !p.Captured {
			zoom = p.Wheel
		}
	}

	if o.velTheta == 0 && o.velPhi == 0 && zoom == 0 {
		return nil
	}
	scale := math.Pow(0.95, zoom*o.ZoomSpeed)
	o.cam.setPosition(orbitPosition(o.cam.Position(), o.cam.Target(), o.velTheta, o.velPhi, scale, o.MinDistance, o.MaxDistance))

	keep := 1 - clamp01(o.Damping)
	o.velTheta *= keep
	o.velPhi *= keep
	if math.Abs(o.velTheta) < 1e-5 {
		o.velTheta = 0
	}
	if math.Abs(o.velPhi) < 1e-5 {
		o.velPhi = 0
	}
	return nil
}

// orbitPosition rotates pos around target by dTheta (azimuth, around +Y)
// and dPhi (polar), scales its distance, and clamps the result.
func orbitPosition(pos, target mgl64.Vec3, dTheta, dPhi, scale, minDist, maxDist float64) mgl64.Vec3 {
	off := pos.Sub(target)
	radius := off.Len()
	if radius == 0 {
		return pos
	}
	theta := math.Atan2(off[0], off[2])
	phi := math.Acos(math.Max(-1, math.Min(1, off[1]/radius)))

	const eps = 1e-6
	theta += dTheta
	phi = math.Max(eps, math.Min(math.Pi-eps, phi+dPhi))
	radius *= scale
	if maxDist > 0 {
		radius = math.Min(radius, maxDist)
	}
	radius = math.Max(radius, minDist)

	sinPhi := math.Sin(phi)
	return target.Add(mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	})
}

// --- Head tracking ---

// Pose is a head orientation in radians.
type Pose struct {
	Yaw, Pitch float64
}

// PoseSource supplies head orientation. ok is false when no device is
// available this frame.
type PoseSource interface {
	Pose() (pose Pose, ok bool)
}

// HeadTracker turns the camera with the viewer's head. Only changes in pose
// are applied, so orbiting and head tracking combine.
type HeadTracker struct {
	Enabled bool

	cam  *PerspectiveCamera
	src  PoseSource
	last Pose
	have bool
}

// NewHeadTracker creates a tracker. A nil source makes Advance a no-op.
func NewHeadTracker(cam *PerspectiveCamera, src PoseSource) *HeadTracker {
	return &HeadTracker{Enabled: true, cam: cam, src: src}
}

// Supported reports whether a pose source is attached.
func (h *HeadTracker) Supported() bool {
	return h.src != nil
}

// Advance applies the pose change since the previous frame.
func (h *HeadTracker) Advance(dt float64) error {
	if !h.Enabled || h.src == nil {
		return nil
	}
	pose, ok := h.src.Pose()
	if !ok {
		h.have = false
		return nil
	}
	if h.have && !h.cam.Flying() {
		dYaw, dPitch := pose.Yaw-h.last.Yaw, pose.Pitch-h.last.Pitch
		if dYaw != 0 || dPitch != 0 {
			h.cam.setPosition(orbitPosition(h.cam.Position(), h.cam.Target(), -dYaw, dPitch, 1, 0, 0))
		}
	}
	h.last, h.have = pose, true
	return nil
}

// --- ebiten sources ---

// ebitenPointer reads the mouse through ebiten.
type ebitenPointer struct {
	captured func() bool
}

func (p ebitenPointer) Pointer() PointerState {
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	s := PointerState{
		X:       float64(x),
		Y:       float64(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Wheel:   wy,
	}
	if p.captured != nil {
		s.Captured = p.captured()
	}
	return s
}

// gamepadPose emulates head orientation with the right stick of the first
// standard gamepad, integrating stick deflection over time.
type gamepadPose struct {
	// Speed is radians per second at full deflection.
	Speed float64

	ids  []ebiten.GamepadID
	pose Pose
}

func newGamepadPose() *gamepadPose {
	return &gamepadPose{Speed: 1.5}
}

func (g *gamepadPose) Pose() (Pose, bool) {
	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	for _, id := range g.ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		const dt = 1.0 / 60
		g.pose.Yaw += ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal) * g.Speed * dt
		g.pose.Pitch += ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical) * g.Speed * dt
		return g.pose, true
	}
	return Pose{}, false
}
