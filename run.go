package riftplot

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// RunConfig configures Run.
type RunConfig struct {
	Config *Config
	Logger *zap.Logger
	// Source is the scene file to load; it is followed for changes when
	// Config.Editor.Watch is set. Empty starts with InitialSource.
	Source        string
	InitialSource string
	Script        *ScriptRunner
	Debug         bool
	// OnReady is called with the sandbox before the window opens.
	OnReady func(*Sandbox)
}

// game adapts a Sandbox to ebiten.Game.
type game struct {
	ctx           context.Context
	sandbox       *Sandbox
	platform      *ebitenPlatform
	width, height int
	wasFullscreen bool
	script        *ScriptRunner
}

// Run opens a window and drives a new Sandbox from ebiten's loop until ctx
// is cancelled, the window is closed, or an attached script finishes. The
// frame tick runs on every display refresh.
//
// Keys: F5 or Ctrl+Enter evaluates now, F2 toggles Desktop/Stereo, Escape
// leaves fullscreen.
func Run(ctx context.Context, rc RunConfig) error {
	cfg := rc.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := newEbitenPlatform(cfg.Window.Width, cfg.Window.Height, cfg.Stereo.Enabled)
	var s *Sandbox
	pointer := ebitenPointer{captured: func() bool { return s != nil && s.InputCaptured() }}
	s, err := NewSandbox(Options{
		Config:   cfg,
		Logger:   logger,
		Platform: platform,
		Pointer:  pointer,
		Pose:     newGamepadPose(),
	})
	if err != nil {
		return err
	}
	s.SetDebugMode(rc.Debug)
	if rc.Script != nil {
		s.SetScriptRunner(rc.Script)
	}

	source := rc.Source
	if source == "" {
		source = cfg.Editor.Source
	}
	switch {
	case source != "" && cfg.Editor.Watch:
		w, err := NewSourceWatcher(source, s.Edit, logger.Named("watch"))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	case source != "":
		if err := s.EditFile(source); err != nil {
			return err
		}
	case rc.InitialSource != "":
		s.Edit(rc.InitialSource)
	}
	if rc.OnReady != nil {
		rc.OnReady(s)
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	g := &game{ctx: ctx, sandbox: s, platform: platform, script: rc.Script}
	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.handleKeys()

	fs := ebiten.IsFullscreen()
	if g.wasFullscreen && !fs {
		g.sandbox.FullscreenExited()
	}
	g.wasFullscreen = fs

	if err := g.sandbox.Update(); err != nil {
		return err
	}
	if g.script != nil && g.script.Done() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) || (ctrl && inpututil.IsKeyJustPressed(ebiten.KeyEnter)) {
		g.sandbox.RunNow()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.sandbox.ToggleMode()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	// Frame errors are logged and counted by the scheduler.
	_ = g.sandbox.Tick(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.platform.setSurfaceSize(outsideWidth, outsideHeight)
		g.sandbox.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
