package riftplot

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types; fields that do not apply to a type are ignored.
type Node struct {
	// Identity
	ID         uint32
	Name       string // the "id" property, addressed with "#name"
	Classes    []string
	Type       NodeType
	Generation uint64 // scene generation that built this node

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Rotation is XYZ Euler in radians.
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3

	worldTransform mgl64.Mat4
	transformDirty bool

	// Appearance
	Visible bool
	Opacity float64
	Color   Color
	Width   float64 // stroke width in pixels
	Size    float64 // point size in pixels

	// Cartesian: data range per axis, mapped onto [-1, 1].
	Range [3]Range

	// Axis and grid
	Axis      int    // 0, 1, 2 for x, y, z (axis nodes)
	Axes      [2]int // spanning axes (grid nodes)
	Divisions int

	// Geometry
	Data    []mgl64.Vec3 // points and lines
	Origin  mgl64.Vec3   // vectors
	End     mgl64.Vec3   // vectors
	Samples int          // curves and surfaces
	Fn      func(x float64) float64
	Fn2     func(x, y float64) float64
	Text    string // labels

	// Time-dependent state advanced by SceneGraph.FrameStep.
	tweens   []*TweenGroup
	bindings []binding

	disposed bool
}

// nodeDefaults sets the common default field values shared by all node types.
func nodeDefaults(n *Node) {
	n.Scale = mgl64.Vec3{1, 1, 1}
	n.Opacity = 1
	n.Color = ColorBlack
	n.Visible = true
	n.Width = 2
	n.Size = 4
	n.Divisions = 10
	n.Samples = 64
	n.Range = [3]Range{{-1, 1}, {-1, 1}, {-1, 1}}
	n.Axes = [2]int{0, 1}
	n.transformDirty = true
	n.worldTransform = mgl64.Ident4()
}

// newNode creates a detached node of the given type. IDs and generations are
// assigned by the SceneGraph when the node is attached through a Builder.
func newNode(typ NodeType) *Node {
	n := &Node{Type: typ}
	nodeDefaults(n)
	return n
}

// HasClass reports whether the node carries the given class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// MarkDirty flags the node's world transform (and its subtree) for
// recomputation.
func (n *Node) MarkDirty() {
	markSubtreeDirty(n)
}

// WorldTransform returns the node's world matrix as of the last
// updateWorldTransforms pass.
func (n *Node) WorldTransform() mgl64.Mat4 {
	return n.worldTransform
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("riftplot: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("riftplot: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("riftplot: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Data = nil
	n.Fn = nil
	n.Fn2 = nil
	n.tweens = nil
	n.bindings = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Transforms ---

// computeLocalTransform returns Translate * Rotate(XYZ) * Scale, followed for
// cartesian nodes by the mapping of the data range onto [-1, 1].
func computeLocalTransform(n *Node) mgl64.Mat4 {
	m := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	m = m.Mul4(eulerXYZ(n.Rotation))
	m = m.Mul4(mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
	if n.Type == NodeTypeCartesian {
		m = m.Mul4(rangeTransform(n.Range))
	}
	return m
}

// eulerXYZ builds Rx * Ry * Rz.
func eulerXYZ(r mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(r[0]).
		Mul4(mgl64.HomogRotate3DY(r[1])).
		Mul4(mgl64.HomogRotate3DZ(r[2]))
}

// rangeTransform maps each axis range onto [-1, 1]. Empty ranges collapse to
// the origin instead of dividing by zero.
func rangeTransform(r [3]Range) mgl64.Mat4 {
	var s, t [3]float64
	for i, ax := range r {
		span := ax.Span()
		if span == 0 {
			continue
		}
		s[i] = 2 / span
		t[i] = -(ax.Min + ax.Max) / span
	}
	return mgl64.Translate3D(t[0], t[1], t[2]).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// updateWorldTransforms refreshes world matrices for dirty subtrees.
func updateWorldTransforms(n *Node, parent mgl64.Mat4, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parent.Mul4(computeLocalTransform(n))
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransforms(child, n.worldTransform, recompute)
	}
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// walk visits n and its descendants depth-first, parents before children.
func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		walk(child, fn)
	}
}
