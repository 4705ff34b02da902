package riftplot

import "go.uber.org/zap"

// SurfaceSizer reports the current drawing surface size.
type SurfaceSizer interface {
	SurfaceSize() (width, height int)
}

// Resizer keeps the camera aspect and the active renderer's size in step
// with the surface. Only the renderer of the current mode is resized; the
// other one is brought up to date when the mode changes.
type Resizer struct {
	cam     *PerspectiveCamera
	modes   *ModeMachine
	surface SurfaceSizer
	desktop Renderer
	stereo  Renderer
	logger  *zap.Logger

	dims    ViewportDimensions
	applied int
}

// NewResizer creates a coordinator. surface may be nil, in which case mode
// changes reuse the last dimensions passed to OnResize.
func NewResizer(cam *PerspectiveCamera, modes *ModeMachine, surface SurfaceSizer, desktop, stereo Renderer, logger *zap.Logger) *Resizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resizer{cam: cam, modes: modes, surface: surface, desktop: desktop, stereo: stereo, logger: logger}
}

// Dimensions returns the last applied surface size.
func (r *Resizer) Dimensions() ViewportDimensions {
	return r.dims
}

// Applied returns how many times dimensions were applied.
func (r *Resizer) Applied() int {
	return r.applied
}

// OnResize records a new surface size and applies it. Non-positive sizes are
// ignored.
func (r *Resizer) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		r.logger.Debug("resize ignored", zap.Int("width", width), zap.Int("height", height))
		return
	}
	r.dims = ViewportDimensions{Width: width, Height: height}
	r.apply()
}

// OnModeChanged re-reads the surface size and applies it for the new mode.
func (r *Resizer) OnModeChanged(PresentationMode) {
	if r.surface != nil {
		w, h := r.surface.SurfaceSize()
		if w > 0 && h > 0 {
			r.dims = ViewportDimensions{Width: w, Height: h}
		}
	}
	if r.dims.Width <= 0 || r.dims.Height <= 0 {
		return
	}
	r.apply()
}

// Active returns the renderer of the current mode.
func (r *Resizer) Active() Renderer {
	if r.modes != nil && r.modes.Mode() == ModeStereo {
		return r.stereo
	}
	return r.desktop
}

func (r *Resizer) apply() {
	w, h := r.dims.Width, r.dims.Height
	r.cam.SetAspect(r.dims.Aspect())
	r.cam.UpdateProjection()
	if active := r.Active(); active != nil {
		active.SetSize(w, h)
	}
	r.applied++
	r.logger.Debug("viewport applied",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float64("aspect", r.cam.Aspect),
	)
}
