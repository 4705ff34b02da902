package riftplot

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when debug mode is on.
type debugStats struct {
	phaseTimes [4]time.Duration
	nodeCount  int
	commands   int
	culled     int
}

// debugLog writes timing and draw stats at debug level.
func (s *Scheduler) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	ce := s.logger.Check(zap.DebugLevel, "frame")
	if ce == nil {
		return
	}
	var total time.Duration
	for _, d := range stats.phaseTimes {
		total += d
	}
	ce.Write(
		zap.Uint64("frame", s.stats.Frames),
		zap.Duration("orbit", stats.phaseTimes[PhaseOrbit]),
		zap.Duration("head", stats.phaseTimes[PhaseHead]),
		zap.Duration("step", stats.phaseTimes[PhaseStep]),
		zap.Duration("render", stats.phaseTimes[PhaseRender]),
		zap.Duration("total", total),
		zap.Int("nodes", stats.nodeCount),
		zap.Int("commands", stats.commands),
		zap.Int("culled", stats.culled),
	)
}

// debugMaxTreeDepth and debugMaxChildCount are the thresholds above which a
// committed scene is reported as suspicious.
const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree warns about very deep trees and very wide nodes. Returns
// the number of warnings written.
func debugCheckTree(base *Node, logger *zap.Logger) int {
	warnings := 0
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if depth == debugMaxTreeDepth+1 {
			logger.Warn("scene tree too deep",
				zap.Int("depth", depth),
				zap.Int("threshold", debugMaxTreeDepth),
				zap.String("node", nodeLabel(n)),
			)
			warnings++
		}
		if len(n.children) > debugMaxChildCount {
			logger.Warn("node has many children",
				zap.String("node", nodeLabel(n)),
				zap.Int("children", len(n.children)),
				zap.Int("threshold", debugMaxChildCount),
			)
			warnings++
		}
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	visit(base, 0)
	return warnings
}

// commandStats reports the command count of the last frame of r, when r
// exposes it.
func commandStats(r Renderer) (commands, culled int) {
	type statser interface{ Stats() RenderStats }
	if s, ok := r.(statser); ok {
		st := s.Stats()
		return st.Commands, st.Culled
	}
	return 0, 0
}
