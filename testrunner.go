package riftplot

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in an automation script.
type scriptStep struct {
	Action string `yaml:"action"`
	Label  string `yaml:"label,omitempty"`
	Text   string `yaml:"text,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Frames int    `yaml:"frames,omitempty"`

	// expect
	Nodes *int    `yaml:"nodes,omitempty"`
	Error *bool   `yaml:"error,omitempty"`
	Mode  *string `yaml:"mode,omitempty"`
}

// script is the top-level structure of an automation script. JSON scripts
// parse as well, JSON being valid YAML.
type script struct {
	Steps []scriptStep `yaml:"steps"`
}

var scriptActions = map[string]bool{
	"edit": true, "edit_file": true, "run": true, "toggle": true,
	"fullscreen_exit": true, "resize": true, "wait": true, "settle": true,
	"screenshot": true, "expect": true,
}

// ErrExpectation is returned when an expect step does not hold.
var ErrExpectation = errors.New("riftplot: script expectation failed")

// ScriptRunner plays a scripted sequence of sandbox events, one step per
// Update, for automated and headless runs. Attach it with
// Sandbox.SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	settling  bool
	done      bool
}

// LoadScript parses a YAML or JSON script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches a runner. Its steps run from Update, after queued
// events are processed.
func (s *Sandbox) SetScriptRunner(r *ScriptRunner) {
	s.script = r
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Remaining returns the number of steps not yet started.
func (r *ScriptRunner) Remaining() int {
	return len(r.steps) - r.cursor
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(s *Sandbox) error {
	if r.done {
		return nil
	}
	// Let events posted by the previous step drain first.
	if s.events.len() > 0 {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.settling {
		if s.debouncer.Pending() != nil {
			return nil
		}
		r.settling = false
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "edit":
		s.Edit(st.Text)
	case "edit_file":
		if err := s.EditFile(st.Path); err != nil {
			return fmt.Errorf("script step %d: %w", r.cursor-1, err)
		}
	case "run":
		s.RunNow()
	case "toggle":
		s.ToggleMode()
	case "fullscreen_exit":
		s.FullscreenExited()
	case "resize":
		s.Resize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "settle":
		r.settling = true
	case "screenshot":
		s.Screenshot(st.Label)
	case "expect":
		if err := r.expect(s, st); err != nil {
			return fmt.Errorf("script step %d: %w", r.cursor-1, err)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !r.settling && s.events.len() == 0 {
		r.done = true
	}
	return nil
}

func (r *ScriptRunner) expect(s *Sandbox, st scriptStep) error {
	var failed []string
	if st.Nodes != nil {
		if got := s.graph.NodeCount(); got != *st.Nodes {
			failed = append(failed, fmt.Sprintf("nodes = %d, want %d", got, *st.Nodes))
		}
	}
	if st.Error != nil {
		if got := s.lastErr != nil; got != *st.Error {
			failed = append(failed, fmt.Sprintf("error = %v (%v), want %v", got, s.lastErr, *st.Error))
		}
	}
	if st.Mode != nil {
		if got := s.modes.Mode().String(); got != *st.Mode {
			failed = append(failed, fmt.Sprintf("mode = %s, want %s", got, *st.Mode))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(failed, "; "))
	}
	return nil
}
