package riftplot

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// Builder is the node-construction API handed to scene source as `mathbox`.
// Every primitive returns a Builder focused on the new node so calls can be
// chained; adding to a leaf node adds a sibling, as leaves cannot have
// children. Errors are sticky: the first failure is kept, later calls still
// run, and the evaluation fails once the source returns.
type Builder struct {
	graph *SceneGraph
	node  *Node
}

// isContainer reports whether nodes of this type accept children.
func isContainer(t NodeType) bool {
	return t == NodeTypeBase || t == NodeTypeGroup || t == NodeTypeCartesian
}

func (b *Builder) fail(err error) {
	b.graph.buildErr = multierr.Append(b.graph.buildErr, err)
}

// Err returns the accumulated build errors of the current generation.
func (b *Builder) Err() error {
	return b.graph.buildErr
}

// container returns the node new children are added to.
func (b *Builder) container() *Node {
	if isContainer(b.node.Type) || b.node.Parent == nil {
		return b.node
	}
	return b.node.Parent
}

func (b *Builder) add(typ NodeType, props Props) *Builder {
	n := newNode(typ)
	b.graph.attach(b.container(), n)
	child := &Builder{graph: b.graph, node: n}
	child.apply(props)
	return child
}

// apply sets props in a fixed order so that errors are deterministic.
func (b *Builder) apply(props Props) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := setProp(b.node, k, props[k]); err != nil {
			b.fail(fmt.Errorf("%s: %w", nodeLabel(b.node), err))
		}
	}
}

// Cartesian adds a coordinate-system root. Its "range" maps data
// coordinates of its children onto the [-1, 1] cube.
func (b *Builder) Cartesian(props Props) *Builder {
	return b.add(NodeTypeCartesian, props)
}

// Group adds a plain container.
func (b *Builder) Group(props Props) *Builder {
	return b.add(NodeTypeGroup, props)
}

// Axis adds an axis line along "axis" (1, 2, 3 or "x", "y", "z") spanning
// the enclosing cartesian range.
func (b *Builder) Axis(props Props) *Builder {
	return b.add(NodeTypeAxis, props)
}

// Grid adds a grid plane spanned by "axes" with "divisions" lines per axis.
func (b *Builder) Grid(props Props) *Builder {
	return b.add(NodeTypeGrid, props)
}

// Points adds a point cloud.
func (b *Builder) Points(data [][]float64, props Props) *Builder {
	p := b.add(NodeTypePoint, props)
	if err := setProp(p.node, "data", data); err != nil {
		p.fail(err)
	}
	return p
}

// Point adds a single point at (x, y, z).
func (b *Builder) Point(x, y, z float64, props Props) *Builder {
	return b.Points([][]float64{{x, y, z}}, props)
}

// Line adds a polyline through data.
func (b *Builder) Line(data [][]float64, props Props) *Builder {
	l := b.add(NodeTypeLine, props)
	if err := setProp(l.node, "data", data); err != nil {
		l.fail(err)
	}
	return l
}

// Curve adds y = fn(x), sampled across the enclosing x range.
func (b *Builder) Curve(fn func(x float64) float64, props Props) *Builder {
	c := b.add(NodeTypeCurve, props)
	if fn == nil {
		c.fail(fmt.Errorf("curve: %w: nil function", ErrBadValue))
	}
	c.node.Fn = fn
	return c
}

// Surface adds z = fn(x, y) as a wireframe across the enclosing x and y
// ranges.
func (b *Builder) Surface(fn func(x, y float64) float64, props Props) *Builder {
	s := b.add(NodeTypeSurface, props)
	if fn == nil {
		s.fail(fmt.Errorf("surface: %w: nil function", ErrBadValue))
	}
	s.node.Fn2 = fn
	return s
}

// Vector adds an arrow from "origin" to "end".
func (b *Builder) Vector(props Props) *Builder {
	return b.add(NodeTypeVector, props)
}

// Label adds text anchored at "position".
func (b *Builder) Label(text string, props Props) *Builder {
	l := b.add(NodeTypeLabel, props)
	l.node.Text = text
	return l
}

// Set assigns a property on the focused node.
func (b *Builder) Set(prop string, value any) *Builder {
	if err := setProp(b.node, prop, value); err != nil {
		b.fail(fmt.Errorf("%s: %w", nodeLabel(b.node), err))
	}
	return b
}

// Animate tweens a property of the focused node once the scene is
// committed.
func (b *Builder) Animate(prop string, to any, seconds float64, easing string) *Builder {
	s := &Selection{graph: b.graph, nodes: []*Node{b.node}}
	if err := s.Animate(prop, to, seconds, easing); err != nil {
		b.fail(err)
	}
	return b
}

// Bind drives a scalar property of the focused node from fn(t).
func (b *Builder) Bind(prop string, fn func(t float64) float64) *Builder {
	s := &Selection{graph: b.graph, nodes: []*Node{b.node}}
	if err := s.Bind(prop, fn); err != nil {
		b.fail(err)
	}
	return b
}

// End returns a Builder focused on the parent of the focused node.
func (b *Builder) End() *Builder {
	if b.node.Parent == nil {
		return b
	}
	return &Builder{graph: b.graph, node: b.node.Parent}
}

// Select returns the nodes of the whole scene matched by selector. An
// invalid selector is recorded as a build error and yields an empty
// selection.
func (b *Builder) Select(selector string) *Selection {
	s, err := b.graph.Select(selector)
	if err != nil {
		b.fail(err)
		return &Selection{graph: b.graph}
	}
	return s
}
