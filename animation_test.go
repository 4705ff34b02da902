package riftplot

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	node := newNode(NodeTypeGroup)
	node.Position = mgl64.Vec3{10, 20, 0}

	g := TweenPosition(node, mgl64.Vec3{100, 200, 5}, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	want := mgl64.Vec3{100, 200, 5}
	for i := range want {
		if math.Abs(node.Position[i]-want[i]) > 0.5 {
			t.Errorf("Position[%d] = %f, want ~%f", i, node.Position[i], want[i])
		}
	}
}

func TestTweenOpacityMidpoint(t *testing.T) {
	node := newNode(NodeTypeLine)
	g := TweenOpacity(node, 0, 1.0, ease.Linear)
	g.Update(0.5)
	if g.Done {
		t.Fatal("should not be done at midpoint")
	}
	if math.Abs(node.Opacity-0.5) > 0.01 {
		t.Errorf("Opacity = %f, want ~0.5", node.Opacity)
	}
}

func TestTweenColorReachesTarget(t *testing.T) {
	node := newNode(NodeTypePoint)
	g := TweenColor(node, Color{1, 0.5, 0, 0.25}, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)
	if !g.Done {
		t.Fatal("expected Done")
	}
	if math.Abs(node.Color.G-0.5) > 0.01 || math.Abs(node.Color.A-0.25) > 0.01 {
		t.Errorf("Color = %+v", node.Color)
	}
}

func TestTweenStopsOnDisposedNode(t *testing.T) {
	node := newNode(NodeTypeGroup)
	g := TweenScale(node, mgl64.Vec3{3, 3, 3}, 1.0, ease.Linear)
	node.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("tween on disposed node should be Done")
	}
	if node.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("disposed node was written: %v", node.Scale)
	}
}

func TestTweenPropComponent(t *testing.T) {
	node := newNode(NodeTypeGroup)
	g, err := tweenProp(node, "rotation.z", math.Pi, 1, ease.Linear)
	if err != nil {
		t.Fatal(err)
	}
	g.Update(1)
	if math.Abs(node.Rotation[2]-math.Pi) > 1e-3 {
		t.Errorf("rotation.z = %f", node.Rotation[2])
	}
	if _, err := tweenProp(node, "text", "x", 1, ease.Linear); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("err = %v, want ErrUnknownProperty", err)
	}
}

func TestAnimateAdvancedByFrameStep(t *testing.T) {
	g := NewSceneGraph(nil)
	root := g.beginGeneration()
	grp := root.Group(nil).Animate("opacity", 0, 1, "linear")
	if err := root.Err(); err != nil {
		t.Fatal(err)
	}
	g.Commit()

	g.FrameStep(0.5)
	g.FrameStep(0.5)
	if math.Abs(grp.node.Opacity) > 0.01 {
		t.Errorf("Opacity = %f, want ~0", grp.node.Opacity)
	}
	if len(grp.node.tweens) != 0 {
		t.Errorf("%d finished tweens still attached", len(grp.node.tweens))
	}
}

func TestLookupEase(t *testing.T) {
	for _, name := range []string{"", "linear", "in-out-quad", "OutBounce", "in_sine"} {
		if _, err := lookupEase(name); err != nil {
			t.Errorf("lookupEase(%q): %v", name, err)
		}
	}
	if _, err := lookupEase("wobble"); !errors.Is(err, ErrBadValue) {
		t.Errorf("err = %v, want ErrBadValue", err)
	}
}

func TestAnimateRejectsNonPositiveDuration(t *testing.T) {
	g := NewSceneGraph(nil)
	root := g.beginGeneration()
	root.Group(nil).Animate("opacity", 0, 0, "")
	if !errors.Is(root.Err(), ErrBadValue) {
		t.Errorf("Err = %v, want ErrBadValue", root.Err())
	}
}
