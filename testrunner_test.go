package riftplot

import (
	"errors"
	"testing"
	"time"
)

func TestLoadScript(t *testing.T) {
	data := []byte(`
steps:
  - action: edit_file
    path: testdata/sine.go
  - action: settle
  - action: screenshot
    label: initial
  - action: wait
    frames: 3
  - action: expect
    nodes: 6
    error: false
`)
	runner, err := LoadScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Path != "testdata/sine.go" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[3].Frames != 3 {
		t.Error("step 3 mismatch")
	}
	if st := runner.steps[4]; st.Nodes == nil || *st.Nodes != 6 || st.Error == nil || *st.Error {
		t.Error("step 4 mismatch")
	}
	if runner.Remaining() != 5 || runner.Done() {
		t.Error("fresh runner should have every step remaining")
	}
}

func TestLoadScriptJSON(t *testing.T) {
	runner, err := LoadScript([]byte(`{"steps": [{"action": "toggle"}, {"action": "expect", "mode": "stereo"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(runner.steps) != 2 || *runner.steps[1].Mode != "stereo" {
		t.Error("JSON script mismatch")
	}
}

func TestLoadScriptErrors(t *testing.T) {
	tests := map[string]string{
		"empty":   `steps: []`,
		"unknown": `steps: [{action: click}]`,
		"invalid": `steps: [`,
	}
	for name, data := range tests {
		if _, err := LoadScript([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// runScript updates s until the script finishes, advancing the clock 100ms
// per frame.
func runScript(t *testing.T, s *Sandbox, clock *manualClock, r *ScriptRunner) error {
	t.Helper()
	s.SetScriptRunner(r)
	for i := 0; i < 200 && !r.Done(); i++ {
		clock.Advance(100 * time.Millisecond)
		if err := s.Update(); err != nil {
			return err
		}
		if err := s.TickDelta(nil, 0.1); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if !r.Done() {
		t.Fatal("script did not finish")
	}
	return nil
}

func TestScriptRunnerFlow(t *testing.T) {
	s, clock := newTestSandbox(t)
	r, err := LoadScript([]byte(`
steps:
  - action: edit_file
    path: testdata/sine.go
  - action: settle
  - action: expect
    nodes: 6
    error: false
  - action: toggle
  - action: expect
    mode: stereo
  - action: fullscreen_exit
  - action: expect
    mode: desktop
  - action: edit
    text: "broken("
  - action: run
  - action: expect
    nodes: 0
    error: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := runScript(t, s, clock, r); err != nil {
		t.Fatalf("script: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d", r.Remaining())
	}
}

func TestScriptRunnerExpectationFails(t *testing.T) {
	s, clock := newTestSandbox(t)
	r, err := LoadScript([]byte(`
steps:
  - action: edit
    text: "mathbox.Group(nil)"
  - action: settle
  - action: expect
    nodes: 5
`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(r)
	var stepErr error
	for i := 0; i < 100 && stepErr == nil; i++ {
		clock.Advance(100 * time.Millisecond)
		stepErr = s.Update()
	}
	if !errors.Is(stepErr, ErrExpectation) {
		t.Fatalf("err = %v, want ErrExpectation", stepErr)
	}
}

func TestScriptRunnerWaitFrames(t *testing.T) {
	s, _ := newTestSandbox(t)
	r, err := LoadScript([]byte(`steps: [{action: wait, frames: 3}]`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(r)
	updates := 0
	for !r.Done() && updates < 10 {
		if err := s.Update(); err != nil {
			t.Fatal(err)
		}
		updates++
	}
	if updates != 4 {
		t.Errorf("updates = %d, want 4 (3 waiting frames plus completion)", updates)
	}
}
