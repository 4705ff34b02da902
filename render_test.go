package riftplot

import (
	"math"
	"testing"
)

// buildTestScene builds and commits a cartesian with the given children.
func buildTestScene(t *testing.T, build func(cart *Builder)) *SceneGraph {
	t.Helper()
	g := NewSceneGraph(nil)
	root := g.beginGeneration()
	cart := root.Cartesian(Props{"range": [][]float64{{-2, 2}, {-2, 2}, {-2, 2}}})
	build(cart)
	if err := root.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}
	g.Commit()
	return g
}

func countKind(cmds []drawCommand, kind drawKind) int {
	n := 0
	for _, c := range cmds {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func TestBuildCommandsUncommittedIsEmpty(t *testing.T) {
	g := NewSceneGraph(nil)
	g.beginGeneration().Axis(Props{"axis": 1})
	cam := NewPerspectiveCamera(1)
	cmds, _ := buildCommands(nil, g, cam.ViewProjection(), 100, 100)
	if len(cmds) != 0 {
		t.Errorf("commands = %d, want 0 before commit", len(cmds))
	}
}

func TestBuildCommandsPrimitives(t *testing.T) {
	g := buildTestScene(t, func(c *Builder) {
		c.Axis(Props{"axis": "x"})
		c.Points([][]float64{{0, 0, 0}, {1, 1, 1}}, nil)
		c.Line([][]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, nil)
		c.Label("origin", nil)
	})
	cam := NewPerspectiveCamera(1)
	cmds, culled := buildCommands(nil, g, cam.ViewProjection(), 200, 200)
	if culled != 0 {
		t.Errorf("culled = %d, want 0", culled)
	}
	if got := countKind(cmds, drawLine); got != 3 {
		t.Errorf("lines = %d, want 3 (axis + 2 segments)", got)
	}
	if got := countKind(cmds, drawPoint); got != 2 {
		t.Errorf("points = %d, want 2", got)
	}
	if got := countKind(cmds, drawLabel); got != 1 {
		t.Errorf("labels = %d, want 1", got)
	}
}

func TestBuildCommandsCurveSkipsNonFinite(t *testing.T) {
	g := buildTestScene(t, func(c *Builder) {
		c.Curve(func(x float64) float64 {
			if x > 0 {
				return math.NaN()
			}
			return x
		}, Props{"samples": 5})
	})
	cam := NewPerspectiveCamera(1)
	cmds, _ := buildCommands(nil, g, cam.ViewProjection(), 200, 200)
	// Samples at -2, -1, 0 are finite: two segments.
	if got := countKind(cmds, drawLine); got != 2 {
		t.Errorf("curve segments = %d, want 2", got)
	}
}

func TestBuildCommandsInvisibleSubtreeSkipped(t *testing.T) {
	g := buildTestScene(t, func(c *Builder) {
		grp := c.Group(Props{"visible": false})
		grp.Axis(Props{"axis": 2})
	})
	cam := NewPerspectiveCamera(1)
	cmds, _ := buildCommands(nil, g, cam.ViewProjection(), 200, 200)
	if len(cmds) != 0 {
		t.Errorf("commands = %d, want 0", len(cmds))
	}
}

func TestBuildCommandsOpacityMultiplies(t *testing.T) {
	g := buildTestScene(t, func(c *Builder) {
		grp := c.Group(Props{"opacity": 0.5})
		grp.Points([][]float64{{0, 0, 0}}, Props{"opacity": 0.5, "color": "#ff0000"})
	})
	cam := NewPerspectiveCamera(1)
	cmds, _ := buildCommands(nil, g, cam.ViewProjection(), 100, 100)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	if a := cmds[0].color.A; a < 62 || a > 65 {
		t.Errorf("alpha = %d, want ~64", a)
	}
}

func TestGridEmitsTwoLinesPerDivision(t *testing.T) {
	g := buildTestScene(t, func(c *Builder) {
		c.Grid(Props{"divisions": 4})
	})
	cam := NewPerspectiveCamera(1)
	cmds, culled := buildCommands(nil, g, cam.ViewProjection(), 200, 200)
	if got := countKind(cmds, drawLine) + culled; got != 10 {
		t.Errorf("grid lines = %d, want 10", got)
	}
}

func TestStandardRendererNilTarget(t *testing.T) {
	r := NewStandardRenderer(DefaultRenderStyle())
	r.SetSize(640, 480)
	g := buildTestScene(t, func(c *Builder) { c.Axis(nil) })
	if err := r.Render(nil, g, NewPerspectiveCamera(1)); err != nil {
		t.Fatal(err)
	}
	st := r.Stats()
	if st.Skipped != 1 || st.Frames != 0 {
		t.Errorf("stats = %+v, want one skipped frame", st)
	}
	if w, h := r.Size(); w != 640 || h != 480 {
		t.Errorf("Size = %dx%d", w, h)
	}
}

func TestStereoRendererEyeSize(t *testing.T) {
	r := NewStereoRenderer(DefaultRenderStyle())
	r.SetSize(800, 600)
	if w, h := r.Size(); w != 800 || h != 600 {
		t.Errorf("Size = %dx%d, want 800x600", w, h)
	}
	if w, h := r.EyeSize(); w != 400 || h != 600 {
		t.Errorf("EyeSize = %dx%d, want 400x600", w, h)
	}
	if r.EyeSeparation != DefaultEyeSeparation {
		t.Errorf("EyeSeparation = %v", r.EyeSeparation)
	}
}

func TestStereoEyeProjectionUsesHalfWidth(t *testing.T) {
	r := NewStereoRenderer(DefaultRenderStyle())
	r.SetSize(800, 600)
	cam := NewPerspectiveCamera(800.0 / 600.0)
	cam.UpdateProjection()
	proj := r.eyeProjection(cam)
	// m[0] = f / aspect, m[5] = f; their ratio is the aspect.
	if got := proj[5] / proj[0]; !approxEqual(got, 400.0/600.0, 1e-9) {
		t.Errorf("eye aspect = %v, want %v", got, 400.0/600.0)
	}
}

func TestDefaultRenderStyleIsWhite(t *testing.T) {
	if DefaultRenderStyle().ClearColor != ColorWhite {
		t.Error("default clear color is not white")
	}
}
