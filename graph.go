package riftplot

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// GraphStats counts scene lifecycle operations since the graph was created.
type GraphStats struct {
	Teardowns int // RemoveAll("*") calls
	Commits   int
	Discards  int // failed generations rolled back
}

// SceneGraph is the live tree of declarative plot nodes. It owns a fixed
// base container; everything user code builds hangs below it. At most one
// generation is current: a generation is started after a full teardown,
// built through a Builder, and becomes visible to FrameStep once committed.
type SceneGraph struct {
	base       *Node
	generation uint64
	committed  bool
	nextID     uint32
	elapsed    float64 // seconds since the current generation was committed
	buildErr   error   // sticky Builder errors of the current generation
	debug      bool

	stats  GraphStats
	logger *zap.Logger
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph(logger *zap.Logger) *SceneGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := newNode(NodeTypeBase)
	base.Name = "base"
	return &SceneGraph{base: base, logger: logger}
}

// Base returns the base container node.
func (g *SceneGraph) Base() *Node {
	return g.base
}

// Generation returns the number of the most recently started generation.
func (g *SceneGraph) Generation() uint64 {
	return g.generation
}

// Committed reports whether the current generation has been committed.
func (g *SceneGraph) Committed() bool {
	return g.committed
}

// Elapsed returns the scene time in seconds since the last commit.
func (g *SceneGraph) Elapsed() float64 {
	return g.elapsed
}

// Stats returns lifecycle counters.
func (g *SceneGraph) Stats() GraphStats {
	return g.stats
}

// SetDebug enables tree sanity warnings on commit.
func (g *SceneGraph) SetDebug(enabled bool) {
	g.debug = enabled
}

// RemoveAll disposes every node matched by the selector together with its
// subtree and returns the number of nodes removed. "*" is a full teardown:
// the base container is emptied and the graph becomes uncommitted.
func (g *SceneGraph) RemoveAll(selector string) (int, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return 0, err
	}
	var matched []*Node
	g.collectTopmost(g.base, sel, &matched)
	removed := 0
	for _, n := range matched {
		walk(n, func(*Node) { removed++ })
		n.Dispose()
	}
	if strings.TrimSpace(selector) == "*" {
		g.committed = false
		g.elapsed = 0
		g.stats.Teardowns++
	}
	return removed, nil
}

// collectTopmost gathers matched nodes, skipping descendants of a match since
// they go away with it.
func (g *SceneGraph) collectTopmost(n *Node, sel selector, out *[]*Node) {
	for _, child := range n.children {
		if sel.matches(child) {
			*out = append(*out, child)
			continue
		}
		g.collectTopmost(child, sel, out)
	}
}

// beginGeneration starts a new generation and returns a Builder rooted at
// the base container.
func (g *SceneGraph) beginGeneration() *Builder {
	g.generation++
	g.committed = false
	g.buildErr = nil
	return &Builder{graph: g, node: g.base}
}

// attach adds a new node of the current generation under parent.
func (g *SceneGraph) attach(parent *Node, n *Node) {
	g.nextID++
	n.ID = g.nextID
	n.Generation = g.generation
	parent.AddChild(n)
}

// discard rolls back the current, uncommitted generation.
func (g *SceneGraph) discard() int {
	removed, _ := g.RemoveAllGeneration(g.generation)
	g.committed = false
	g.stats.Discards++
	return removed
}

// RemoveAllGeneration disposes every top-level node built by generation gen.
func (g *SceneGraph) RemoveAllGeneration(gen uint64) (int, error) {
	removed := 0
	for _, child := range append([]*Node(nil), g.base.children...) {
		if child.Generation != gen {
			continue
		}
		walk(child, func(*Node) { removed++ })
		child.Dispose()
	}
	return removed, nil
}

// Select returns the nodes matched by selector, in tree order.
func (g *SceneGraph) Select(selector string) (*Selection, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	s := &Selection{graph: g}
	walk(g.base, func(n *Node) {
		if sel.matches(n) {
			s.nodes = append(s.nodes, n)
		}
	})
	return s, nil
}

// Commit makes the current generation visible to FrameStep and resets scene
// time. The tree is logged at debug level.
func (g *SceneGraph) Commit() {
	g.committed = true
	g.elapsed = 0
	g.stats.Commits++
	updateWorldTransforms(g.base, mgl64.Ident4(), false)
	if g.debug {
		debugCheckTree(g.base, g.logger)
	}
	if ce := g.logger.Check(zap.DebugLevel, "scene committed"); ce != nil {
		ce.Write(
			zap.Uint64("generation", g.generation),
			zap.Int("nodes", g.NodeCount()),
			zap.String("tree", g.Dump()),
		)
	}
}

// FrameStep advances tweens and time bindings of the committed generation
// and refreshes world transforms. It is a no-op before the first commit.
// A failing binding does not stop the others; all failures are returned
// combined.
func (g *SceneGraph) FrameStep(dt float64) error {
	if !g.committed {
		return nil
	}
	g.elapsed += dt
	var errs error
	walk(g.base, func(n *Node) {
		if len(n.tweens) > 0 {
			live := n.tweens[:0]
			for _, tw := range n.tweens {
				tw.Update(float32(dt))
				if !tw.Done {
					live = append(live, tw)
				}
			}
			clear(n.tweens[len(live):])
			n.tweens = live
		}
		for i := range n.bindings {
			if err := g.applyBinding(n, &n.bindings[i]); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	})
	updateWorldTransforms(g.base, mgl64.Ident4(), false)
	return errs
}

func (g *SceneGraph) applyBinding(n *Node, b *binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("binding %s on %s: %w", b.prop, nodeLabel(n), recoveredError(r))
		}
	}()
	*b.field = b.fn(g.elapsed)
	n.MarkDirty()
	return nil
}

// NodeCount returns the number of nodes below the base container.
func (g *SceneGraph) NodeCount() int {
	count := -1
	walk(g.base, func(*Node) { count++ })
	return count
}

// CountGeneration returns the number of live nodes built by generation gen.
func (g *SceneGraph) CountGeneration(gen uint64) int {
	count := 0
	walk(g.base, func(n *Node) {
		if n.Type != NodeTypeBase && n.Generation == gen {
			count++
		}
	})
	return count
}

// Dump returns an indented, XML-like listing of the tree below the base.
func (g *SceneGraph) Dump() string {
	var b strings.Builder
	for _, child := range g.base.children {
		dumpNode(&b, child, 0)
	}
	return b.String()
}

func dumpNode(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteByte('<')
	b.WriteString(n.Type.String())
	if n.Name != "" {
		fmt.Fprintf(b, " id=%q", n.Name)
	}
	if len(n.Classes) > 0 {
		fmt.Fprintf(b, " classes=%q", strings.Join(n.Classes, " "))
	}
	if n.Rotation != (mgl64.Vec3{}) {
		fmt.Fprintf(b, " rotation=\"%.4g,%.4g,%.4g\"", n.Rotation[0], n.Rotation[1], n.Rotation[2])
	}
	if len(n.children) == 0 {
		b.WriteString(" />\n")
		return
	}
	b.WriteString(">\n")
	for _, child := range n.children {
		dumpNode(b, child, depth+1)
	}
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "</%s>\n", n.Type)
}

func nodeLabel(n *Node) string {
	if n.Name != "" {
		return n.Type.String() + "#" + n.Name
	}
	return fmt.Sprintf("%s(%d)", n.Type, n.ID)
}

// Selection is a set of nodes returned by SceneGraph.Select or
// Builder.Select.
type Selection struct {
	graph *SceneGraph
	nodes []*Node
}

// Nodes returns the selected nodes. The returned slice MUST NOT be mutated.
func (s *Selection) Nodes() []*Node {
	return s.nodes
}

// Len returns the number of selected nodes.
func (s *Selection) Len() int {
	return len(s.nodes)
}

// Set assigns a property on every selected node.
func (s *Selection) Set(prop string, value any) error {
	var errs error
	for _, n := range s.nodes {
		if err := setProp(n, prop, value); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", nodeLabel(n), err))
		}
	}
	return errs
}

// Animate tweens a property on every selected node from its current value to
// `to` over `seconds`, using the named easing ("" for inOutSine).
func (s *Selection) Animate(prop string, to any, seconds float64, easing string) error {
	fn, err := lookupEase(easing)
	if err != nil {
		return err
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: animation duration must be positive", ErrBadValue)
	}
	var errs error
	for _, n := range s.nodes {
		tw, err := tweenProp(n, prop, to, float32(seconds), fn)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", nodeLabel(n), err))
			continue
		}
		n.tweens = append(n.tweens, tw)
	}
	return errs
}

// Bind drives a scalar property (or vector component such as "rotation.z")
// of every selected node from fn(t), t being seconds since commit. Bindings
// are evaluated on every FrameStep.
func (s *Selection) Bind(prop string, fn func(t float64) float64) error {
	if fn == nil {
		return fmt.Errorf("%w: nil binding function", ErrBadValue)
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	var errs error
	for _, n := range s.nodes {
		field, ok := scalarField(n, prop)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w: %q cannot be bound", nodeLabel(n), ErrUnknownProperty, prop))
			continue
		}
		n.bindings = append(n.bindings, binding{prop: prop, field: field, fn: fn})
	}
	return errs
}
