package riftplot

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSetPropVectors(t *testing.T) {
	n := newNode(NodeTypeVector)
	if err := setProp(n, "end", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if n.End != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("End = %v", n.End)
	}
	if err := setProp(n, "Scale", 2); err != nil {
		t.Fatal(err)
	}
	if n.Scale != (mgl64.Vec3{2, 2, 2}) {
		t.Errorf("Scale = %v", n.Scale)
	}
	if err := setProp(n, "position.y", 4.5); err != nil {
		t.Fatal(err)
	}
	if n.Position[1] != 4.5 {
		t.Errorf("Position = %v", n.Position)
	}
	if err := setProp(n, "origin", []any{1, 2.5}); err != nil {
		t.Fatal(err)
	}
	if n.Origin != (mgl64.Vec3{1, 2.5, 0}) {
		t.Errorf("Origin = %v", n.Origin)
	}
}

func TestSetPropRangeAndAxis(t *testing.T) {
	n := newNode(NodeTypeCartesian)
	if err := setProp(n, "range", [][]float64{{-3, 3}, {0, 1}}); err != nil {
		t.Fatal(err)
	}
	if n.Range[0] != (Range{-3, 3}) || n.Range[1] != (Range{0, 1}) || n.Range[2] != (Range{-1, 1}) {
		t.Errorf("Range = %v", n.Range)
	}
	if err := setProp(n, "range", []float64{0, 1, 2}); !errors.Is(err, ErrBadValue) {
		t.Errorf("odd flat range err = %v", err)
	}

	a := newNode(NodeTypeAxis)
	if err := setProp(a, "axis", 2); err != nil || a.Axis != 1 {
		t.Errorf("axis 2 -> %d (%v)", a.Axis, err)
	}
	if err := setProp(a, "axis", "z"); err != nil || a.Axis != 2 {
		t.Errorf("axis z -> %d (%v)", a.Axis, err)
	}
	if err := setProp(a, "axis", 4); !errors.Is(err, ErrBadValue) {
		t.Errorf("axis 4 err = %v", err)
	}

	g := newNode(NodeTypeGrid)
	if err := setProp(g, "axes", []int{1, 3}); err != nil || g.Axes != [2]int{0, 2} {
		t.Errorf("axes = %v (%v)", g.Axes, err)
	}
	if err := setProp(g, "axes", []int{1, 1}); !errors.Is(err, ErrBadValue) {
		t.Errorf("duplicate axes err = %v", err)
	}
}

func TestSetPropColor(t *testing.T) {
	n := newNode(NodeTypePoint)
	tests := []struct {
		value any
		want  Color
	}{
		{"#3090ff", Color{0x30 / 255.0, 0x90 / 255.0, 1, 1}},
		{[]float64{1, 0, 0}, Color{1, 0, 0, 1}},
		{[]float64{0, 1, 0, 0.5}, Color{0, 1, 0, 0.5}},
		{Color{0, 0, 1, 1}, Color{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		if err := setProp(n, "color", tt.value); err != nil {
			t.Fatalf("color %v: %v", tt.value, err)
		}
		for i, pair := range [][2]float64{{n.Color.R, tt.want.R}, {n.Color.G, tt.want.G}, {n.Color.B, tt.want.B}, {n.Color.A, tt.want.A}} {
			if !approxEqual(pair[0], pair[1], 1e-3) {
				t.Errorf("color %v component %d = %v, want %v", tt.value, i, pair[0], pair[1])
			}
		}
	}
	if err := setProp(n, "color", "chartreuse"); !errors.Is(err, ErrBadValue) {
		t.Errorf("named color err = %v", err)
	}
}

func TestSetPropErrors(t *testing.T) {
	n := newNode(NodeTypeLabel)
	tests := []struct {
		prop  string
		value any
		want  error
	}{
		{"unknown", 1, ErrUnknownProperty},
		{"position.w", 1, ErrUnknownProperty},
		{"opacity", "half", ErrBadValue},
		{"visible", 1, ErrBadValue},
		{"id", 7, ErrBadValue},
		{"samples", 0, ErrBadValue},
		{"data", "nope", ErrBadValue},
		{"end", []float64{1}, ErrBadValue},
	}
	for _, tt := range tests {
		if err := setProp(n, tt.prop, tt.value); !errors.Is(err, tt.want) {
			t.Errorf("setProp(%q, %v) err = %v, want %v", tt.prop, tt.value, err, tt.want)
		}
	}
}

func TestSetPropClasses(t *testing.T) {
	n := newNode(NodeTypeLine)
	if err := setProp(n, "classes", "a  b"); err != nil {
		t.Fatal(err)
	}
	if len(n.Classes) != 2 || !n.HasClass("b") {
		t.Errorf("Classes = %v", n.Classes)
	}
}
