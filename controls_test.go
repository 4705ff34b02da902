package riftplot

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type fakePointer struct {
	states []PointerState
	i      int
}

func (f *fakePointer) Pointer() PointerState {
	if f.i >= len(f.states) {
		return PointerState{}
	}
	s := f.states[f.i]
	f.i++
	return s
}

type fakePose struct {
	poses []Pose
	i     int
}

func (f *fakePose) Pose() (Pose, bool) {
	if f.i >= len(f.poses) {
		return Pose{}, false
	}
	p := f.poses[f.i]
	f.i++
	return p, true
}

func TestOrbitDragRotatesAroundTarget(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	start := cam.Position()
	ptr := &fakePointer{states: []PointerState{
		{X: 100, Y: 100, Pressed: true},
		{X: 140, Y: 100, Pressed: true},
	}}
	o := NewOrbitControls(cam, ptr)
	_ = o.Advance(1.0 / 60)
	if cam.Position() != start {
		t.Fatal("press alone should not move the camera")
	}
	_ = o.Advance(1.0 / 60)
	p := cam.Position()
	if p == start {
		t.Fatal("drag did not move the camera")
	}
	if !approxEqual(p.Len(), start.Len(), 1e-9) {
		t.Errorf("distance changed: %v -> %v", start.Len(), p.Len())
	}
	if !approxEqual(p[1], start[1], 1e-9) {
		t.Errorf("horizontal drag changed height: %v -> %v", start[1], p[1])
	}
}

func TestOrbitDampingDecays(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	ptr := &fakePointer{states: []PointerState{
		{X: 0, Y: 0, Pressed: true},
		{X: 50, Y: 0, Pressed: true},
	}}
	o := NewOrbitControls(cam, ptr)
	o.Damping = 0.5
	_ = o.Advance(0)
	_ = o.Advance(0)
	v := o.velTheta
	_ = o.Advance(0) // released
	if !approxEqual(o.velTheta, v*0.5, 1e-12) {
		t.Errorf("velTheta = %v, want %v", o.velTheta, v*0.5)
	}
}

func TestOrbitIgnoresCapturedPointer(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	start := cam.Position()
	ptr := &fakePointer{states: []PointerState{
		{X: 0, Y: 0, Pressed: true, Captured: true},
		{X: 80, Y: 40, Pressed: true, Captured: true, Wheel: 3},
	}}
	o := NewOrbitControls(cam, ptr)
	_ = o.Advance(0)
	_ = o.Advance(0)
	if cam.Position() != start {
		t.Errorf("captured input moved camera to %v", cam.Position())
	}
}

func TestOrbitWheelZoomsAndClamps(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	ptr := &fakePointer{states: []PointerState{{Wheel: 1}, {Wheel: 1000}}}
	o := NewOrbitControls(cam, ptr)
	o.MinDistance = 1
	before := cam.Position().Len()
	_ = o.Advance(0)
	if after := cam.Position().Len(); !approxEqual(after, before*0.95, 1e-9) {
		t.Errorf("distance = %v, want %v", after, before*0.95)
	}
	_ = o.Advance(0)
	if d := cam.Position().Len(); !approxEqual(d, 1, 1e-9) {
		t.Errorf("distance = %v, want clamp to 1", d)
	}
}

func TestOrbitDisabled(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	ptr := &fakePointer{states: []PointerState{{Wheel: 5}}}
	o := NewOrbitControls(cam, ptr)
	o.Enabled = false
	_ = o.Advance(0)
	if cam.Position() != DefaultCameraPosition {
		t.Error("disabled controls moved the camera")
	}
}

func TestOrbitPositionPolarClamp(t *testing.T) {
	p := orbitPosition(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{}, 0, -10, 1, 0, 0)
	if p[1] <= 0.99 || p[1] > 1 {
		t.Errorf("y = %v, want just below 1", p[1])
	}
}

func TestHeadTrackerAppliesDeltas(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	start := cam.Position()
	h := NewHeadTracker(cam, &fakePose{poses: []Pose{{Yaw: 0.3}, {Yaw: 0.3}, {Yaw: 0.5}}})
	_ = h.Advance(0)
	_ = h.Advance(0)
	if cam.Position() != start {
		t.Fatal("first pose and unchanged pose should not move the camera")
	}
	_ = h.Advance(0)
	if cam.Position() == start {
		t.Error("yaw change did not move the camera")
	}
}

func TestHeadTrackerWithoutSourceIsNoop(t *testing.T) {
	cam := NewPerspectiveCamera(1)
	h := NewHeadTracker(cam, nil)
	if h.Supported() {
		t.Error("Supported = true without a source")
	}
	if err := h.Advance(1); err != nil {
		t.Fatal(err)
	}
	if cam.Position() != DefaultCameraPosition {
		t.Error("camera moved")
	}
}
