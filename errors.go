package riftplot

import (
	"errors"
	"fmt"
)

var (
	// ErrStereoUnsupported is returned by ModeMachine.Toggle when the
	// platform cannot present a stereo view.
	ErrStereoUnsupported = errors.New("riftplot: stereo presentation not supported")
	// ErrFullscreenUnsupported is returned when the platform has no
	// fullscreen capability.
	ErrFullscreenUnsupported = errors.New("riftplot: fullscreen not supported")

	// ErrForbiddenImport is returned when scene source imports a package
	// outside the allowlist.
	ErrForbiddenImport = errors.New("riftplot: forbidden import")
	// ErrGoroutine is returned when scene source contains a go statement.
	ErrGoroutine = errors.New("riftplot: go statements are not allowed in scene source")

	// ErrUnknownProperty is returned when setting a property a node type
	// does not have.
	ErrUnknownProperty = errors.New("riftplot: unknown property")
	// ErrBadValue is returned when a property value has the wrong shape.
	ErrBadValue = errors.New("riftplot: bad property value")
	// ErrBadSelector is returned for selectors that cannot be parsed.
	ErrBadSelector = errors.New("riftplot: bad selector")
)

// EvaluationError reports a failed scene evaluation. The scene graph is left
// empty when one is returned.
type EvaluationError struct {
	// EvalID identifies the evaluation in logs.
	EvalID string
	// Generation is the scene generation the evaluation tried to build.
	Generation uint64
	// Line is the 1-based line in the user source, or 0 if unknown.
	Line int
	Err  error
}

func (e *EvaluationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("evaluation failed at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// FramePhase names a step of the per-frame tick.
type FramePhase uint8

const (
	PhaseOrbit FramePhase = iota
	PhaseHead
	PhaseStep
	PhaseRender
)

var framePhaseNames = [...]string{"orbit", "head", "step", "render"}

func (p FramePhase) String() string {
	if int(p) < len(framePhaseNames) {
		return framePhaseNames[p]
	}
	return fmt.Sprintf("FramePhase(%d)", uint8(p))
}

// FrameError reports a failure inside one phase of a tick. The scheduler
// recovers it and keeps ticking.
type FrameError struct {
	Frame uint64
	Phase FramePhase
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Phase, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// recoveredError converts a recovered panic value into an error.
func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
