package riftplot

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FrameStats counts scheduler work since creation.
type FrameStats struct {
	Frames       uint64
	Errors       int    // frame errors across all phases
	PhaseErrors  [4]int // indexed by FramePhase
	StepsSkipped int    // ticks with no committed scene
	Renders      [2]int // indexed by PresentationMode
	LastTick     time.Duration
}

// errorLogEvery throttles logging of an error that repeats every frame.
const errorLogEvery = 120

// Scheduler runs the per-frame tick. Phases run in a fixed order and each
// is isolated: an error or panic in one phase is recorded and the remaining
// phases still run. A tick never stops the loop.
type Scheduler struct {
	// OnFrameError, if set, receives every frame error.
	OnFrameError func(*FrameError)

	graph   *SceneGraph
	cam     *PerspectiveCamera
	orbit   Controller
	head    Controller
	modes   *ModeMachine
	desktop Renderer
	stereo  Renderer
	logger  *zap.Logger

	debug   bool
	stats   FrameStats
	lastMsg string
	repeats int
}

// SchedulerConfig wires the scheduler to its collaborators. Orbit and Head
// may be nil.
type SchedulerConfig struct {
	Graph   *SceneGraph
	Camera  *PerspectiveCamera
	Orbit   Controller
	Head    Controller
	Modes   *ModeMachine
	Desktop Renderer
	Stereo  Renderer
	Logger  *zap.Logger
}

// NewScheduler creates a scheduler from cfg.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		graph:   cfg.Graph,
		cam:     cfg.Camera,
		orbit:   cfg.Orbit,
		head:    cfg.Head,
		modes:   cfg.Modes,
		desktop: cfg.Desktop,
		stereo:  cfg.Stereo,
		logger:  logger,
	}
}

// SetDebugMode enables per-frame stats logging.
func (s *Scheduler) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Stats returns frame counters.
func (s *Scheduler) Stats() FrameStats {
	return s.stats
}

// Tick runs one frame: camera animation and orbit controls, head tracking,
// the scene frame step when a scene is committed, then rendering with the
// renderer of the current mode. It returns the frame's errors combined, or
// nil.
func (s *Scheduler) Tick(target *ebiten.Image, dt float64) error {
	start := time.Now()
	s.stats.Frames++
	var dbg debugStats
	var errs error

	run := func(phase FramePhase, fn func() error) {
		t0 := time.Now()
		if err := s.guard(fn); err != nil {
			fe := &FrameError{Frame: s.stats.Frames, Phase: phase, Err: err}
			s.record(fe)
			errs = multierr.Append(errs, fe)
		}
		dbg.phaseTimes[phase] = time.Since(t0)
	}

	run(PhaseOrbit, func() error {
		s.cam.Advance(dt)
		if s.orbit == nil {
			return nil
		}
		return s.orbit.Advance(dt)
	})
	run(PhaseHead, func() error {
		if s.head == nil {
			return nil
		}
		return s.head.Advance(dt)
	})
	if s.graph.Committed() {
		run(PhaseStep, func() error { return s.graph.FrameStep(dt) })
	} else {
		s.stats.StepsSkipped++
	}

	mode := ModeDesktop
	if s.modes != nil {
		mode = s.modes.Mode()
	}
	renderer := s.desktop
	if mode == ModeStereo {
		renderer = s.stereo
	}
	if renderer != nil {
		run(PhaseRender, func() error { return renderer.Render(target, s.graph, s.cam) })
		s.stats.Renders[mode]++
	}

	s.stats.LastTick = time.Since(start)
	if s.debug {
		dbg.nodeCount = s.graph.NodeCount()
		dbg.commands, dbg.culled = commandStats(renderer)
		s.debugLog(dbg)
	}
	return errs
}

// guard runs fn, converting a panic into an error.
func (s *Scheduler) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return fn()
}

// record counts, logs and reports a frame error. Identical consecutive
// messages are logged once every errorLogEvery frames.
func (s *Scheduler) record(fe *FrameError) {
	s.stats.Errors++
	s.stats.PhaseErrors[fe.Phase]++

	msg := fe.Err.Error()
	if msg == s.lastMsg {
		s.repeats++
	} else {
		s.lastMsg, s.repeats = msg, 0
	}
	if s.repeats%errorLogEvery == 0 {
		s.logger.Warn("frame phase failed",
			zap.Uint64("frame", fe.Frame),
			zap.Stringer("phase", fe.Phase),
			zap.Error(fe.Err),
			zap.Int("repeats", s.repeats),
		)
	}
	if s.OnFrameError != nil {
		s.OnFrameError(fe)
	}
}
