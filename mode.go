package riftplot

import (
	"go.uber.org/zap"
)

// Fullscreen is the platform's fullscreen capability.
type Fullscreen interface {
	Enter() error
	Exit() error
	IsActive() bool
}

// ModeMachine tracks the presentation mode. Transitions are driven by
// explicit events only: Toggle from the user and FullscreenExited from the
// platform.
//
//	Desktop --Toggle--> Stereo   (requests fullscreen)
//	Stereo  --Toggle--> Desktop  (fullscreen is left as is)
//	Stereo  --FullscreenExited--> Desktop
type ModeMachine struct {
	mode       PresentationMode
	stereo     bool
	fullscreen Fullscreen
	listeners  []func(PresentationMode)
	logger     *zap.Logger

	fullscreenRequests int
}

// NewModeMachine creates a machine in ModeDesktop. supportsStereo is the
// platform's capability answer; fullscreen may be nil when the platform has
// no fullscreen support.
func NewModeMachine(supportsStereo bool, fullscreen Fullscreen, logger *zap.Logger) *ModeMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModeMachine{stereo: supportsStereo, fullscreen: fullscreen, logger: logger}
}

// Mode returns the current mode.
func (m *ModeMachine) Mode() PresentationMode {
	return m.mode
}

// OnChange registers fn to be called after every mode transition.
func (m *ModeMachine) OnChange(fn func(PresentationMode)) {
	m.listeners = append(m.listeners, fn)
}

// FullscreenRequests returns how many times fullscreen has been requested.
func (m *ModeMachine) FullscreenRequests() int {
	return m.fullscreenRequests
}

// Toggle flips the mode. Entering Stereo requests fullscreen first; a failed
// or unavailable fullscreen is logged and does not block the switch.
// Toggle returns ErrStereoUnsupported, and stays in Desktop, when the
// platform cannot present stereo.
func (m *ModeMachine) Toggle() error {
	switch m.mode {
	case ModeDesktop:
		if !m.stereo {
			m.logger.Info("stereo toggle ignored", zap.Error(ErrStereoUnsupported))
			return ErrStereoUnsupported
		}
		m.requestFullscreen()
		m.set(ModeStereo)
	case ModeStereo:
		m.set(ModeDesktop)
	}
	return nil
}

// FullscreenExited forces Desktop. It never enters Stereo.
func (m *ModeMachine) FullscreenExited() {
	if m.mode == ModeDesktop {
		return
	}
	m.logger.Debug("fullscreen exited")
	m.set(ModeDesktop)
}

func (m *ModeMachine) requestFullscreen() {
	m.fullscreenRequests++
	if m.fullscreen == nil {
		m.logger.Info("fullscreen request skipped", zap.Error(ErrFullscreenUnsupported))
		return
	}
	if err := m.fullscreen.Enter(); err != nil {
		m.logger.Warn("fullscreen request failed", zap.Error(err))
	}
}

func (m *ModeMachine) set(mode PresentationMode) {
	if m.mode == mode {
		return
	}
	m.mode = mode
	m.logger.Info("presentation mode changed", zap.Stringer("mode", mode))
	for _, fn := range m.listeners {
		fn(mode)
	}
}
