// Package riftplot is a live-coding sandbox for 3D math plots on
// [Ebitengine].
//
// Scene source is Go, interpreted with [yaegi], and builds a declarative
// tree of plot primitives (cartesian spaces, axes, grids, points, lines,
// curves, surfaces, vectors and labels) through a chaining builder called
// mathbox. Edits are debounced and every evaluation replaces the whole
// scene. The view can be presented on the desktop or as a side-by-side
// stereo pair.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and a
// frame loop for you:
//
//	riftplot.Run(ctx, riftplot.RunConfig{
//		InitialSource: `mathbox.Cartesian(nil).Curve(math.Sin, nil)`,
//	})
//
// For headless use, build a [Sandbox] and drive it with [RunHeadless], or
// call [Sandbox.Update] and [Sandbox.Tick] directly:
//
//	s, _ := riftplot.NewSandbox(riftplot.Options{})
//	s.Edit(source)
//	for {
//		s.Update()
//		s.Tick(nil)
//	}
//
// # Scene source
//
// Source is either a function body with mathbox in scope or a complete
// package main file that calls plot.Root(). Only "math" and "riftplot/plot"
// may be imported and go statements are rejected.
//
//	view := mathbox.Cartesian(plot.Props{"range": [][]float64{{-3, 3}, {-1, 1}, {-1, 1}}})
//	view.Axis(plot.Props{"axis": 1})
//	view.Curve(func(x float64) float64 { return math.Sin(x) }, plot.Props{"color": "#3090ff"})
//
// Nodes can be found again with CSS-like selectors ("curve", "#id",
// ".class") and animated with tweens (via [gween]) or bound to scene time.
// Cartesian nodes are rotated by [AxisCorrection] after each successful
// evaluation so that the plot's z axis points up.
//
// # Frame loop
//
// Every frame the [Scheduler] advances camera animation and orbit
// controls, head tracking, scene animations, then renders with the
// renderer of the current [PresentationMode]. A failing phase is logged and
// counted; the loop keeps running.
//
// [Ebitengine]: https://ebitengine.org
// [yaegi]: https://github.com/traefik/yaegi
// [gween]: https://github.com/tanema/gween
package riftplot
