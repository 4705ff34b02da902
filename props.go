package riftplot

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Props is a set of property values passed to Builder primitives.
type Props map[string]any

// vectorProps are properties holding an mgl64.Vec3 that accept component
// paths such as "rotation.z".
var vectorProps = map[string]func(*Node) *mgl64.Vec3{
	"position": func(n *Node) *mgl64.Vec3 { return &n.Position },
	"rotation": func(n *Node) *mgl64.Vec3 { return &n.Rotation },
	"scale":    func(n *Node) *mgl64.Vec3 { return &n.Scale },
	"origin":   func(n *Node) *mgl64.Vec3 { return &n.Origin },
	"end":      func(n *Node) *mgl64.Vec3 { return &n.End },
}

// scalarProps are float properties that can be animated or bound.
var scalarProps = map[string]func(*Node) *float64{
	"opacity": func(n *Node) *float64 { return &n.Opacity },
	"width":   func(n *Node) *float64 { return &n.Width },
	"size":    func(n *Node) *float64 { return &n.Size },
}

// setProp assigns a property value on a node. Names are case-insensitive.
func setProp(n *Node, name string, value any) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if field, ok := scalarField(n, name); ok {
		f, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = f
		n.MarkDirty()
		return nil
	}
	if get, ok := vectorProps[name]; ok {
		v, err := toVec3(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*get(n) = v
		n.MarkDirty()
		return nil
	}

	switch name {
	case "id":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("id: %w: want string, got %T", ErrBadValue, value)
		}
		n.Name = s
	case "classes":
		switch v := value.(type) {
		case string:
			n.Classes = strings.Fields(v)
		case []string:
			n.Classes = append([]string(nil), v...)
		default:
			return fmt.Errorf("classes: %w: want string or []string, got %T", ErrBadValue, value)
		}
	case "visible":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("visible: %w: want bool, got %T", ErrBadValue, value)
		}
		n.Visible = b
	case "color":
		c, err := toColor(value)
		if err != nil {
			return fmt.Errorf("color: %w", err)
		}
		n.Color = c
	case "range":
		r, err := toRanges(value)
		if err != nil {
			return fmt.Errorf("range: %w", err)
		}
		n.Range = r
		n.MarkDirty()
	case "axis":
		a, err := toAxis(value)
		if err != nil {
			return fmt.Errorf("axis: %w", err)
		}
		n.Axis = a
	case "axes":
		s, err := toFloats(value)
		if err != nil || len(s) != 2 {
			return fmt.Errorf("axes: %w: want two axis indices", ErrBadValue)
		}
		a0, err0 := toAxis(s[0])
		a1, err1 := toAxis(s[1])
		if err0 != nil || err1 != nil || a0 == a1 {
			return fmt.Errorf("axes: %w: want two distinct axes", ErrBadValue)
		}
		n.Axes = [2]int{a0, a1}
	case "divisions", "samples":
		f, err := toFloat(value)
		if err != nil || f < 1 {
			return fmt.Errorf("%s: %w: want a positive count", name, ErrBadValue)
		}
		if name == "divisions" {
			n.Divisions = int(f)
		} else {
			n.Samples = int(f)
		}
	case "data":
		d, err := toPoints(value)
		if err != nil {
			return fmt.Errorf("data: %w", err)
		}
		n.Data = d
	case "text":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("text: %w: want string, got %T", ErrBadValue, value)
		}
		n.Text = s
	default:
		return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, name, n.Type)
	}
	return nil
}

// scalarField resolves a float-valued property, including vector component
// paths like "position.x".
func scalarField(n *Node, name string) (*float64, bool) {
	if get, ok := scalarProps[name]; ok {
		return get(n), true
	}
	base, comp, ok := strings.Cut(name, ".")
	if !ok {
		return nil, false
	}
	get, ok := vectorProps[base]
	if !ok {
		return nil, false
	}
	i := strings.Index("xyz", comp)
	if len(comp) != 1 || i < 0 {
		return nil, false
	}
	return &get(n)[i], true
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: want number, got %T", ErrBadValue, v)
	}
}

func toFloats(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case mgl64.Vec3:
		return x[:], nil
	case []int:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: want number list, got %T", ErrBadValue, v)
	}
}

func toVec3(v any) (mgl64.Vec3, error) {
	if f, err := toFloat(v); err == nil {
		return mgl64.Vec3{f, f, f}, nil
	}
	s, err := toFloats(v)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	var out mgl64.Vec3
	switch len(s) {
	case 2:
		out = mgl64.Vec3{s[0], s[1], 0}
	case 3:
		out = mgl64.Vec3{s[0], s[1], s[2]}
	default:
		return mgl64.Vec3{}, fmt.Errorf("%w: want 2 or 3 components, got %d", ErrBadValue, len(s))
	}
	return out, nil
}

func toColor(v any) (Color, error) {
	switch x := v.(type) {
	case Color:
		return x, nil
	case string:
		return ParseColor(x)
	}
	s, err := toFloats(v)
	if err != nil {
		return Color{}, err
	}
	switch len(s) {
	case 3:
		return Color{s[0], s[1], s[2], 1}, nil
	case 4:
		return Color{s[0], s[1], s[2], s[3]}, nil
	default:
		return Color{}, fmt.Errorf("%w: want 3 or 4 color components, got %d", ErrBadValue, len(s))
	}
}

// toRanges accepts [][]float64{{min, max}, ...} or a flat list of pairs.
func toRanges(v any) ([3]Range, error) {
	out := [3]Range{{-1, 1}, {-1, 1}, {-1, 1}}
	var pairs [][]float64
	switch x := v.(type) {
	case []Range:
		pairs = make([][]float64, len(x))
		for i, r := range x {
			pairs[i] = []float64{r.Min, r.Max}
		}
	case [][]float64:
		pairs = x
	default:
		flat, err := toFloats(v)
		if err != nil || len(flat)%2 != 0 {
			return out, fmt.Errorf("%w: want [min, max] pairs", ErrBadValue)
		}
		for i := 0; i < len(flat); i += 2 {
			pairs = append(pairs, flat[i:i+2])
		}
	}
	if len(pairs) == 0 || len(pairs) > 3 {
		return out, fmt.Errorf("%w: want 1 to 3 ranges, got %d", ErrBadValue, len(pairs))
	}
	for i, p := range pairs {
		if len(p) != 2 {
			return out, fmt.Errorf("%w: range %d needs 2 values", ErrBadValue, i)
		}
		out[i] = Range{Min: p[0], Max: p[1]}
	}
	return out, nil
}

func toAxis(v any) (int, error) {
	if s, ok := v.(string); ok {
		i := strings.Index("xyz", strings.ToLower(s))
		if len(s) != 1 || i < 0 {
			return 0, fmt.Errorf("%w: axis %q", ErrBadValue, s)
		}
		return i, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	// Axes are 1-based in scene source, as in "axis: 1" for x.
	a := int(f) - 1
	if a < 0 || a > 2 {
		return 0, fmt.Errorf("%w: axis %v out of range 1..3", ErrBadValue, f)
	}
	return a, nil
}

func toPoints(v any) ([]mgl64.Vec3, error) {
	switch x := v.(type) {
	case []mgl64.Vec3:
		return append([]mgl64.Vec3(nil), x...), nil
	case [][]float64:
		out := make([]mgl64.Vec3, len(x))
		for i, p := range x {
			vec, err := toVec3(p)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			out[i] = vec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: want [][]float64, got %T", ErrBadValue, v)
	}
}
