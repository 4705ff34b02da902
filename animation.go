package riftplot

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenRotation,
// TweenColor, ...) or Selection.Animate. Groups attached to a node are
// advanced by SceneGraph.FrameStep; detached groups are advanced by calling
// Update(dt) directly. If the target node is disposed, the group stops
// immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
}

// newTweenGroup tweens each field from its current value to the matching
// entry of to.
func newTweenGroup(node *Node, fields []*float64, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: len(fields), target: node}
	for i, f := range fields {
		g.tweens[i] = gween.New(float32(*f), float32(to[i]), duration, fn)
		g.fields[i] = f
	}
	return g
}

// TweenPosition creates a TweenGroup that animates node.Position to the
// given target over the specified duration using the easing function.
func TweenPosition(node *Node, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(node, &node.Position, to, duration, fn)
}

// TweenRotation creates a TweenGroup that animates node.Rotation (XYZ Euler)
// to the target angles.
func TweenRotation(node *Node, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(node, &node.Rotation, to, duration, fn)
}

// TweenScale creates a TweenGroup that animates node.Scale to the target.
func TweenScale(node *Node, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenVec3(node, &node.Scale, to, duration, fn)
}

// TweenColor creates a TweenGroup that animates all four components of
// node.Color (R, G, B, A) to the target color over the specified duration.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := &node.Color
	return newTweenGroup(node,
		[]*float64{&c.R, &c.G, &c.B, &c.A},
		[]float64{to.R, to.G, to.B, to.A},
		duration, fn)
}

// TweenOpacity creates a TweenGroup that animates node.Opacity.
func TweenOpacity(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, []*float64{&node.Opacity}, []float64{to}, duration, fn)
}

func tweenVec3(node *Node, v *mgl64.Vec3, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node,
		[]*float64{&v[0], &v[1], &v[2]},
		[]float64{to[0], to[1], to[2]},
		duration, fn)
}

// tweenProp builds a TweenGroup for a named property (see setProp for
// names). Vector properties take a Vec3-shaped value, scalar and component
// properties a number, "color" a color value.
func tweenProp(n *Node, prop string, to any, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	if field, ok := scalarField(n, prop); ok {
		f, err := toFloat(to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prop, err)
		}
		return newTweenGroup(n, []*float64{field}, []float64{f}, duration, fn), nil
	}
	if get, ok := vectorProps[prop]; ok {
		v, err := toVec3(to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prop, err)
		}
		return tweenVec3(n, get(n), v, duration, fn), nil
	}
	if prop == "color" {
		c, err := toColor(to)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		return TweenColor(n, c, duration, fn), nil
	}
	return nil, fmt.Errorf("%w: %q cannot be animated", ErrUnknownProperty, prop)
}

// binding drives one float field from a function of scene time.
type binding struct {
	prop  string
	field *float64
	fn    func(t float64) float64
}

// easeFuncs maps the easing names accepted by Animate to gween functions.
var easeFuncs = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"outbounce":    ease.OutBounce,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
}

// lookupEase resolves an easing name, defaulting to InOutSine for "".
func lookupEase(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.InOutSine, nil
	}
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	fn, ok := easeFuncs[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrBadValue, name)
	}
	return fn, nil
}
