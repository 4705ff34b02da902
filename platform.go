package riftplot

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Platform is what the sandbox needs from its host surface.
type Platform interface {
	SurfaceSize() (width, height int)
	// SupportsStereo reports whether a stereo presentation can be shown.
	SupportsStereo() bool
	// Fullscreen returns the fullscreen capability, or nil if there is none.
	Fullscreen() Fullscreen
}

// ebitenPlatform is the windowed ebiten host. The surface size is the last
// size seen by Layout.
type ebitenPlatform struct {
	mu     sync.Mutex
	width  int
	height int
	stereo bool
}

func newEbitenPlatform(width, height int, stereo bool) *ebitenPlatform {
	return &ebitenPlatform{width: width, height: height, stereo: stereo}
}

func (p *ebitenPlatform) setSurfaceSize(w, h int) {
	p.mu.Lock()
	p.width, p.height = w, h
	p.mu.Unlock()
}

func (p *ebitenPlatform) SurfaceSize() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

func (p *ebitenPlatform) SupportsStereo() bool { return p.stereo }

func (p *ebitenPlatform) Fullscreen() Fullscreen { return ebitenFullscreen{} }

// ebitenFullscreen toggles the ebiten window's fullscreen state.
type ebitenFullscreen struct{}

func (ebitenFullscreen) Enter() error {
	ebiten.SetFullscreen(true)
	return nil
}

func (ebitenFullscreen) Exit() error {
	ebiten.SetFullscreen(false)
	return nil
}

func (ebitenFullscreen) IsActive() bool { return ebiten.IsFullscreen() }

// headlessPlatform is a fixed-size surface without fullscreen.
type headlessPlatform struct {
	width, height int
	stereo        bool
}

func (p *headlessPlatform) SurfaceSize() (int, int) { return p.width, p.height }
func (p *headlessPlatform) SupportsStereo() bool    { return p.stereo }
func (p *headlessPlatform) Fullscreen() Fullscreen  { return nil }
