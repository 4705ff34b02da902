package riftplot

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// maxFrameDelta caps the time step handed to the scheduler after a stall.
const maxFrameDelta = 250 * time.Millisecond

// Options configures a Sandbox. Every field is optional.
type Options struct {
	Config   *Config
	Logger   *zap.Logger
	Clock    Clock
	Platform Platform
	// Pointer feeds the orbit controls. Nil disables pointer input.
	Pointer PointerSource
	// Pose feeds head tracking. Nil disables it.
	Pose PoseSource
	// OnEvaluated is called after every evaluation with its result.
	OnEvaluated func(error)
}

// Sandbox is the render context: it owns the camera, the scene graph, both
// renderers, the controls and the orchestration components, and is created
// once per window. Only the scene graph contents are rebuilt on each
// evaluation.
//
// All methods except the event methods (Edit, RunNow, ToggleMode,
// FullscreenExited, Resize) must be called from the frame loop goroutine.
type Sandbox struct {
	cfg      *Config
	logger   *zap.Logger
	clock    Clock
	platform Platform

	graph     *SceneGraph
	evaluator *Evaluator
	debouncer *Debouncer
	modes     *ModeMachine
	camera    *PerspectiveCamera
	orbit     *OrbitControls
	head      *HeadTracker
	desktop   *StandardRenderer
	stereo    *StereoRenderer
	resizer   *Resizer
	scheduler *Scheduler
	hud       *hud
	script    *ScriptRunner

	events eventQueue
	batch  []event

	buffer      string
	lastErr     error
	lastTick    time.Time
	onEvaluated func(error)
	captured    bool

	screenshots []string
	written     []string
}

// NewSandbox wires a sandbox from opts. It fails only on invalid
// configuration.
func NewSandbox(opts Options) (*Sandbox, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	platform := opts.Platform
	if platform == nil {
		platform = &headlessPlatform{width: cfg.Window.Width, height: cfg.Window.Height, stereo: cfg.Stereo.Enabled}
	}

	s := &Sandbox{
		cfg:         cfg,
		logger:      logger,
		clock:       clock,
		platform:    platform,
		onEvaluated: opts.OnEvaluated,
		hud:         newHUD(cfg.Render.HUD),
	}

	w, h := platform.SurfaceSize()
	s.camera = NewPerspectiveCamera(ViewportDimensions{Width: w, Height: h}.Aspect())
	s.camera.Fov, s.camera.Near, s.camera.Far = cfg.Camera.Fov, cfg.Camera.Near, cfg.Camera.Far
	s.camera.SetPosition(mgl64.Vec3(cfg.Camera.Position))
	s.camera.UpdateProjection()

	s.graph = NewSceneGraph(logger.Named("scene"))
	s.evaluator = NewEvaluator(s.graph, logger.Named("eval"))
	s.debouncer = NewDebouncer(cfg.DebounceWindow(), clock, s.evaluate)

	stereo := cfg.Stereo.Enabled && platform.SupportsStereo()
	s.modes = NewModeMachine(stereo, platform.Fullscreen(), logger.Named("mode"))

	style := cfg.RenderStyle()
	s.desktop = NewStandardRenderer(style)
	s.stereo = NewStereoRenderer(style)
	s.stereo.EyeSeparation = cfg.Stereo.EyeSeparation

	s.orbit = NewOrbitControls(s.camera, opts.Pointer)
	s.orbit.RotateSpeed = cfg.Controls.RotateSpeed
	s.orbit.ZoomSpeed = cfg.Controls.ZoomSpeed
	s.orbit.Damping = cfg.Controls.Damping
	var pose PoseSource
	if cfg.Controls.HeadTracking {
		pose = opts.Pose
	}
	s.head = NewHeadTracker(s.camera, pose)

	s.resizer = NewResizer(s.camera, s.modes, platform, s.desktop, s.stereo, logger.Named("resize"))
	s.modes.OnChange(s.resizer.OnModeChanged)
	s.resizer.OnResize(w, h)

	s.scheduler = NewScheduler(SchedulerConfig{
		Graph:   s.graph,
		Camera:  s.camera,
		Orbit:   s.orbit,
		Head:    s.head,
		Modes:   s.modes,
		Desktop: s.desktop,
		Stereo:  s.stereo,
		Logger:  logger.Named("frame"),
	})
	return s, nil
}

// Config returns the sandbox configuration.
func (s *Sandbox) Config() *Config { return s.cfg }

// Graph returns the scene graph.
func (s *Sandbox) Graph() *SceneGraph { return s.graph }

// Camera returns the camera.
func (s *Sandbox) Camera() *PerspectiveCamera { return s.camera }

// Evaluator returns the scene evaluator.
func (s *Sandbox) Evaluator() *Evaluator { return s.evaluator }

// Debouncer returns the edit debouncer.
func (s *Sandbox) Debouncer() *Debouncer { return s.debouncer }

// Modes returns the presentation mode state machine.
func (s *Sandbox) Modes() *ModeMachine { return s.modes }

// Resizer returns the viewport coordinator.
func (s *Sandbox) Resizer() *Resizer { return s.resizer }

// Scheduler returns the frame scheduler.
func (s *Sandbox) Scheduler() *Scheduler { return s.scheduler }

// Orbit returns the orbit controls.
func (s *Sandbox) Orbit() *OrbitControls { return s.orbit }

// Mode returns the current presentation mode.
func (s *Sandbox) Mode() PresentationMode { return s.modes.Mode() }

// Buffer returns the editor buffer as of the last processed edit.
func (s *Sandbox) Buffer() string { return s.buffer }

// LastError returns the error of the most recent evaluation, or nil.
func (s *Sandbox) LastError() error { return s.lastErr }

// SetDebugMode enables per-frame stats and tree warnings.
func (s *Sandbox) SetDebugMode(enabled bool) {
	s.scheduler.SetDebugMode(enabled)
	s.graph.SetDebug(enabled)
}

// SetInputCaptured marks keyboard and pointer input as owned by an editor
// overlay. Camera controls ignore the pointer while captured.
func (s *Sandbox) SetInputCaptured(captured bool) {
	s.captured = captured
}

// InputCaptured reports whether input is captured by an editor overlay.
func (s *Sandbox) InputCaptured() bool {
	return s.captured
}

// EditFile reads path and queues its content as an edit.
func (s *Sandbox) EditFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene source: %w", err)
	}
	s.Edit(string(data))
	return nil
}

// Evaluate sets the buffer and evaluates it immediately, cancelling any
// pending debounced evaluation.
func (s *Sandbox) Evaluate(source string) error {
	s.buffer = source
	s.debouncer.Cancel()
	s.evaluate()
	return s.lastErr
}

func (s *Sandbox) evaluate() {
	s.lastErr = s.evaluator.Evaluate(s.buffer)
	if s.onEvaluated != nil {
		s.onEvaluated(s.lastErr)
	}
}

// Update processes queued events in posting order, advances an attached
// script by one step, and fires the debounced evaluation when it is due.
func (s *Sandbox) Update() error {
	s.batch = s.events.drain(s.batch[:0])
	for _, e := range s.batch {
		s.handle(e)
	}
	clear(s.batch)

	if s.script != nil {
		if err := s.script.step(s); err != nil {
			return err
		}
	}
	s.debouncer.Poll(s.clock.Now())
	return nil
}

func (s *Sandbox) handle(e event) {
	switch e.kind {
	case eventEdit:
		s.buffer = e.text
		s.debouncer.OnEdit()
	case eventRunNow:
		s.debouncer.Cancel()
		s.evaluate()
	case eventToggleMode:
		// Unsupported stereo is logged by the mode machine and leaves the
		// mode unchanged.
		_ = s.modes.Toggle()
	case eventFullscreenExited:
		s.modes.FullscreenExited()
	case eventResize:
		s.resizer.OnResize(e.width, e.height)
	}
}

// Tick runs one frame onto target; target may be nil. The time step is
// measured with the sandbox clock and capped. Frame errors are recorded by
// the scheduler and returned, but never stop later ticks.
func (s *Sandbox) Tick(target *ebiten.Image) error {
	now := s.clock.Now()
	var dt time.Duration
	if !s.lastTick.IsZero() {
		dt = min(now.Sub(s.lastTick), maxFrameDelta)
	}
	s.lastTick = now
	return s.TickDelta(target, dt.Seconds())
}

// TickDelta runs one frame with an explicit time step in seconds.
func (s *Sandbox) TickDelta(target *ebiten.Image, dt float64) error {
	err := s.scheduler.Tick(target, dt)
	s.hud.update(dt, hudInfo{
		mode:       s.modes.Mode(),
		fps:        ebiten.ActualFPS(),
		tps:        ebiten.ActualTPS(),
		nodes:      s.graph.NodeCount(),
		generation: s.graph.Generation(),
		pending:    s.debouncer.Pending() != nil,
		lastErr:    s.lastErr,
	})
	s.hud.draw(target)
	s.flushScreenshots(target)
	return err
}
