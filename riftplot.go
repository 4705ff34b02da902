package riftplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default clear color.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is the default stroke color for plot primitives.
var ColorBlack = Color{0, 0, 0, 1}

// RGBA converts the color to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// ParseColor parses a "#rrggbb" / "#rgb" hex string into an opaque Color.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrBadValue, s)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Range is a general-purpose min/max range. Cartesian nodes carry one per axis.
type Range struct {
	Min, Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Lerp maps t in [0, 1] into the range.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// AxisCorrection is the rotation applied to every cartesian node after a
// successful evaluation. It maps the plot's Z-up convention onto the
// renderer's Y-up world (XYZ Euler, radians).
var AxisCorrection = mgl64.Vec3{-math.Pi / 2, 0, math.Pi / 2}

// PresentationMode selects the active render path.
type PresentationMode uint8

const (
	ModeDesktop PresentationMode = iota // single view, standard renderer
	ModeStereo                          // side-by-side two-eye composite
)

// String returns "desktop" or "stereo".
func (m PresentationMode) String() string {
	switch m {
	case ModeDesktop:
		return "desktop"
	case ModeStereo:
		return "stereo"
	default:
		return fmt.Sprintf("PresentationMode(%d)", uint8(m))
	}
}

// ViewportDimensions is the size of the display surface in pixels.
type ViewportDimensions struct {
	Width, Height int
}

// Aspect returns Width/Height, or 1 for a degenerate surface.
func (v ViewportDimensions) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeBase      NodeType = iota // the scene's fixed base container
	NodeTypeGroup                     // group node with no visual output
	NodeTypeCartesian                 // coordinate-system root with per-axis ranges
	NodeTypeAxis                      // a single axis line with tick marks
	NodeTypeGrid                      // a grid plane spanned by two axes
	NodeTypePoint                     // one or more points
	NodeTypeLine                      // a polyline through data points
	NodeTypeCurve                     // y = f(x) sampled over the x range
	NodeTypeSurface                   // z = f(x, y) sampled as a wireframe
	NodeTypeVector                    // an arrow from origin to end
	NodeTypeLabel                     // a text label at a point
)

var nodeTypeNames = [...]string{
	NodeTypeBase:      "base",
	NodeTypeGroup:     "group",
	NodeTypeCartesian: "cartesian",
	NodeTypeAxis:      "axis",
	NodeTypeGrid:      "grid",
	NodeTypePoint:     "point",
	NodeTypeLine:      "line",
	NodeTypeCurve:     "curve",
	NodeTypeSurface:   "surface",
	NodeTypeVector:    "vector",
	NodeTypeLabel:     "label",
}

// String returns the selector name of the type, e.g. "cartesian".
func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

// parseNodeType maps a selector name back to its NodeType.
func parseNodeType(name string) (NodeType, bool) {
	for i, n := range nodeTypeNames {
		if n == name {
			return NodeType(i), true
		}
	}
	return 0, false
}
