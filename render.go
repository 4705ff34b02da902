package riftplot

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Renderer draws the committed scene through a camera onto a target image.
// A nil target renders nothing, which is how headless runs tick.
type Renderer interface {
	SetSize(width, height int)
	Size() (width, height int)
	Render(target *ebiten.Image, graph *SceneGraph, cam *PerspectiveCamera) error
}

// RenderStyle holds drawing defaults shared by both renderers.
type RenderStyle struct {
	ClearColor Color
	// Antialias enables antialiased strokes and points.
	Antialias bool
	// LabelSize is the label font size in pixels.
	LabelSize float64
}

// DefaultRenderStyle is a white background with antialiasing.
func DefaultRenderStyle() RenderStyle {
	return RenderStyle{ClearColor: ColorWhite, Antialias: true, LabelSize: 14}
}

// RenderStats counts work done by a renderer in its last frame and overall.
type RenderStats struct {
	Frames   int // frames drawn to a real target
	Skipped  int // frames with a nil target
	Commands int // draw commands of the last frame
	Culled   int // primitives of the last frame that fell outside the depth range
}

// --- Draw commands ---

// drawKind identifies the kind of draw command.
type drawKind uint8

const (
	drawLine drawKind = iota
	drawPoint
	drawLabel
)

// drawCommand is a single screen-space draw instruction emitted during scene
// traversal. Coordinates are surface pixels.
type drawCommand struct {
	kind   drawKind
	x0, y0 float32
	x1, y1 float32
	width  float32 // stroke width or point diameter
	color  color.RGBA
	text   string
}

// commandBuilder projects scene primitives into draw commands.
type commandBuilder struct {
	viewProj mgl64.Mat4
	w, h     float64
	commands []drawCommand
	culled   int
}

// collect walks the tree below base, emitting commands for visible nodes.
func (cb *commandBuilder) collect(base *Node) {
	for _, child := range base.children {
		cb.traverse(child, 1)
	}
}

func (cb *commandBuilder) traverse(n *Node, parentAlpha float64) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Opacity
	cb.emit(n, alpha)
	for _, child := range n.children {
		cb.traverse(child, alpha)
	}
}

func (cb *commandBuilder) emit(n *Node, alpha float64) {
	clr := n.Color.WithAlpha(alpha).RGBA()
	world := n.worldTransform
	width := float32(n.Width)

	switch n.Type {
	case NodeTypeAxis:
		r := enclosingRange(n)[n.Axis]
		var a, b mgl64.Vec3
		a[n.Axis], b[n.Axis] = r.Min, r.Max
		cb.line(world, a, b, width, clr)
	case NodeTypeGrid:
		ranges := enclosingRange(n)
		u, v := n.Axes[0], n.Axes[1]
		div := max(n.Divisions, 1)
		for i := 0; i <= div; i++ {
			t := float64(i) / float64(div)
			var a, b mgl64.Vec3
			a[u], b[u] = ranges[u].Lerp(t), ranges[u].Lerp(t)
			a[v], b[v] = ranges[v].Min, ranges[v].Max
			cb.line(world, a, b, width, clr)
			var c, d mgl64.Vec3
			c[v], d[v] = ranges[v].Lerp(t), ranges[v].Lerp(t)
			c[u], d[u] = ranges[u].Min, ranges[u].Max
			cb.line(world, c, d, width, clr)
		}
	case NodeTypePoint:
		for _, p := range n.Data {
			cb.point(world, p, float32(n.Size), clr)
		}
	case NodeTypeLine:
		for i := 1; i < len(n.Data); i++ {
			cb.line(world, n.Data[i-1], n.Data[i], width, clr)
		}
	case NodeTypeCurve:
		if n.Fn == nil {
			return
		}
		xr := enclosingRange(n)[0]
		samples := max(n.Samples, 2)
		var prev mgl64.Vec3
		havePrev := false
		for i := 0; i < samples; i++ {
			x := xr.Lerp(float64(i) / float64(samples-1))
			y := n.Fn(x)
			if !finite(y) {
				havePrev = false
				continue
			}
			p := mgl64.Vec3{x, y, 0}
			if havePrev {
				cb.line(world, prev, p, width, clr)
			}
			prev, havePrev = p, true
		}
	case NodeTypeSurface:
		if n.Fn2 == nil {
			return
		}
		cb.surface(n, world, width, clr)
	case NodeTypeVector:
		cb.line(world, n.Origin, n.End, width, clr)
		cb.arrowHead(world, n.Origin, n.End, width, clr)
	case NodeTypeLabel:
		if n.Text == "" {
			return
		}
		x, y, ok := cb.project(world, mgl64.Vec3{})
		if !ok {
			cb.culled++
			return
		}
		cb.commands = append(cb.commands, drawCommand{kind: drawLabel, x0: x, y0: y, color: clr, text: n.Text})
	}
}

// surface emits a wireframe of z = fn(x, y) over the enclosing x and y
// ranges, one polyline per row and per column.
func (cb *commandBuilder) surface(n *Node, world mgl64.Mat4, width float32, clr color.RGBA) {
	ranges := enclosingRange(n)
	res := min(max(n.Samples/4, 2), 64)
	grid := make([]mgl64.Vec3, res*res)
	valid := make([]bool, res*res)
	for j := 0; j < res; j++ {
		y := ranges[1].Lerp(float64(j) / float64(res-1))
		for i := 0; i < res; i++ {
			x := ranges[0].Lerp(float64(i) / float64(res-1))
			z := n.Fn2(x, y)
			grid[j*res+i] = mgl64.Vec3{x, y, z}
			valid[j*res+i] = finite(z)
		}
	}
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			k := j*res + i
			if !valid[k] {
				continue
			}
			if i+1 < res && valid[k+1] {
				cb.line(world, grid[k], grid[k+1], width, clr)
			}
			if j+1 < res && valid[k+res] {
				cb.line(world, grid[k], grid[k+res], width, clr)
			}
		}
	}
}

// arrowHead draws two short strokes at the tip of a vector, in screen space.
func (cb *commandBuilder) arrowHead(world mgl64.Mat4, from, to mgl64.Vec3, width float32, clr color.RGBA) {
	x0, y0, ok0 := cb.project(world, from)
	x1, y1, ok1 := cb.project(world, to)
	if !ok0 || !ok1 {
		return
	}
	dx, dy := float64(x1-x0), float64(y1-y0)
	l := math.Hypot(dx, dy)
	if l < 1e-6 {
		return
	}
	dx, dy = dx/l, dy/l
	head := math.Min(12, l/3)
	for _, s := range [2]float64{1, -1} {
		// Rotate the reversed direction by +-25 degrees.
		c, sn := math.Cos(s*0.436), math.Sin(s*0.436)
		hx := -dx*c + dy*sn
		hy := -dx*sn - dy*c
		cb.commands = append(cb.commands, drawCommand{
			kind:  drawLine,
			x0:    x1,
			y0:    y1,
			x1:    x1 + float32(hx*head),
			y1:    y1 + float32(hy*head),
			width: width,
			color: clr,
		})
	}
}

func (cb *commandBuilder) project(world mgl64.Mat4, p mgl64.Vec3) (float32, float32, bool) {
	wp := world.Mul4x1(p.Vec4(1)).Vec3()
	x, y, ok := project(cb.viewProj, wp, cb.w, cb.h)
	return float32(x), float32(y), ok
}

func (cb *commandBuilder) line(world mgl64.Mat4, a, b mgl64.Vec3, width float32, clr color.RGBA) {
	x0, y0, ok0 := cb.project(world, a)
	x1, y1, ok1 := cb.project(world, b)
	if !ok0 || !ok1 {
		cb.culled++
		return
	}
	cb.commands = append(cb.commands, drawCommand{kind: drawLine, x0: x0, y0: y0, x1: x1, y1: y1, width: width, color: clr})
}

func (cb *commandBuilder) point(world mgl64.Mat4, p mgl64.Vec3, size float32, clr color.RGBA) {
	x, y, ok := cb.project(world, p)
	if !ok {
		cb.culled++
		return
	}
	cb.commands = append(cb.commands, drawCommand{kind: drawPoint, x0: x, y0: y, width: size, color: clr})
}

// enclosingRange returns the range of the nearest cartesian ancestor, or the
// unit range when the node is not inside one.
func enclosingRange(n *Node) [3]Range {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == NodeTypeCartesian {
			return p.Range
		}
	}
	return [3]Range{{-1, 1}, {-1, 1}, {-1, 1}}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// --- Submission ---

// painter submits draw commands to an ebiten image.
type painter struct {
	antialias bool
	face      *text.GoTextFace
}

func newPainter(style RenderStyle) (*painter, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	size := style.LabelSize
	if size <= 0 {
		size = 14
	}
	return &painter{antialias: style.Antialias, face: &text.GoTextFace{Source: src, Size: size}}, nil
}

func (p *painter) submit(dst *ebiten.Image, commands []drawCommand) {
	for i := range commands {
		cmd := &commands[i]
		switch cmd.kind {
		case drawLine:
			vector.StrokeLine(dst, cmd.x0, cmd.y0, cmd.x1, cmd.y1, cmd.width, cmd.color, p.antialias)
		case drawPoint:
			vector.DrawFilledCircle(dst, cmd.x0, cmd.y0, cmd.width/2, cmd.color, p.antialias)
		case drawLabel:
			op := &text.DrawOptions{}
			op.GeoM.Translate(float64(cmd.x0)+4, float64(cmd.y0)-p.face.Size-2)
			op.ColorScale.ScaleWithColor(cmd.color)
			text.Draw(dst, cmd.text, p.face, op)
		}
	}
}

// --- StandardRenderer ---

// StandardRenderer draws a single full-surface view.
type StandardRenderer struct {
	Style RenderStyle

	width, height int
	commands      []drawCommand
	painter       *painter
	stats         RenderStats
}

// NewStandardRenderer creates a renderer with the given style.
func NewStandardRenderer(style RenderStyle) *StandardRenderer {
	return &StandardRenderer{Style: style}
}

// SetSize sets the drawing surface size.
func (r *StandardRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

// Size returns the drawing surface size.
func (r *StandardRenderer) Size() (int, int) {
	return r.width, r.height
}

// Stats returns render counters.
func (r *StandardRenderer) Stats() RenderStats {
	return r.stats
}

// Render clears target and draws the committed scene.
func (r *StandardRenderer) Render(target *ebiten.Image, graph *SceneGraph, cam *PerspectiveCamera) error {
	if target == nil {
		r.stats.Skipped++
		return nil
	}
	if r.painter == nil {
		p, err := newPainter(r.Style)
		if err != nil {
			return err
		}
		r.painter = p
	}
	target.Fill(r.Style.ClearColor.RGBA())
	r.commands, r.stats.Culled = buildCommands(r.commands[:0], graph, cam.ViewProjection(), r.width, r.height)
	r.painter.submit(target, r.commands)
	r.stats.Commands = len(r.commands)
	r.stats.Frames++
	return nil
}

// buildCommands projects the committed scene for a w x h surface. An
// uncommitted scene yields no commands.
func buildCommands(dst []drawCommand, graph *SceneGraph, viewProj mgl64.Mat4, w, h int) ([]drawCommand, int) {
	if graph == nil || !graph.Committed() || w <= 0 || h <= 0 {
		return dst, 0
	}
	cb := commandBuilder{viewProj: viewProj, w: float64(w), h: float64(h), commands: dst}
	cb.collect(graph.Base())
	return cb.commands, cb.culled
}

// --- StereoRenderer ---

// DefaultEyeSeparation is the interpupillary distance in world units.
const DefaultEyeSeparation = 0.064

// StereoRenderer draws a side-by-side two-eye composite. Each eye has its
// own buffer of half the surface width.
type StereoRenderer struct {
	Style RenderStyle
	// EyeSeparation is the distance between the two eye positions.
	EyeSeparation float64

	width, height int
	eyes          [2]*ebiten.Image
	commands      []drawCommand
	painter       *painter
	stats         RenderStats
}

// NewStereoRenderer creates a stereo renderer with the default eye
// separation.
func NewStereoRenderer(style RenderStyle) *StereoRenderer {
	return &StereoRenderer{Style: style, EyeSeparation: DefaultEyeSeparation}
}

// SetSize sets the composite size. Eye buffers are reallocated on the next
// frame at width/2 x height.
func (r *StereoRenderer) SetSize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	for i, eye := range r.eyes {
		if eye != nil {
			eye.Deallocate()
			r.eyes[i] = nil
		}
	}
}

// Size returns the composite size.
func (r *StereoRenderer) Size() (int, int) {
	return r.width, r.height
}

// EyeSize returns the size of each eye buffer.
func (r *StereoRenderer) EyeSize() (int, int) {
	return r.width / 2, r.height
}

// Stats returns render counters.
func (r *StereoRenderer) Stats() RenderStats {
	return r.stats
}

// eyeProjection is the camera projection with the aspect of one eye.
func (r *StereoRenderer) eyeProjection(cam *PerspectiveCamera) mgl64.Mat4 {
	ew, eh := r.EyeSize()
	aspect := cam.Aspect
	if ew > 0 && eh > 0 {
		aspect = float64(ew) / float64(eh)
	}
	return mgl64.Perspective(mgl64.DegToRad(cam.Fov), aspect, cam.Near, cam.Far)
}

// Render draws the left and right eye views and composites them side by
// side onto target.
func (r *StereoRenderer) Render(target *ebiten.Image, graph *SceneGraph, cam *PerspectiveCamera) error {
	if target == nil {
		r.stats.Skipped++
		return nil
	}
	ew, eh := r.EyeSize()
	if ew <= 0 || eh <= 0 {
		return nil
	}
	if r.painter == nil {
		p, err := newPainter(r.Style)
		if err != nil {
			return err
		}
		r.painter = p
	}
	proj := r.eyeProjection(cam)
	offsets := [2]float64{-r.EyeSeparation / 2, r.EyeSeparation / 2}
	target.Fill(r.Style.ClearColor.RGBA())
	total, culled := 0, 0
	for i := range r.eyes {
		if r.eyes[i] == nil {
			r.eyes[i] = ebiten.NewImage(ew, eh)
		}
		eye := r.eyes[i]
		eye.Fill(r.Style.ClearColor.RGBA())
		var c int
		r.commands, c = buildCommands(r.commands[:0], graph, cam.EyeViewProjection(offsets[i], proj), ew, eh)
		r.painter.submit(eye, r.commands)
		total += len(r.commands)
		culled += c

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(i*ew), 0)
		target.DrawImage(eye, op)
	}
	r.stats.Commands = total
	r.stats.Culled = culled
	r.stats.Frames++
	return nil
}
