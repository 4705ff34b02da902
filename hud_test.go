package riftplot

import (
	"errors"
	"strings"
	"testing"
)

func TestHUDTextShowsError(t *testing.T) {
	text := hudText(hudInfo{
		mode:       ModeStereo,
		fps:        59.9,
		tps:        60,
		nodes:      12,
		generation: 3,
		lastErr:    errors.New("evaluation failed at line 2: undefined: foo"),
	})
	for _, want := range []string{"mode: stereo", "FPS: 59.9", "nodes: 12", "gen: 3", "line 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("HUD text %q missing %q", text, want)
		}
	}
}

func TestHUDTextTruncatesLongErrors(t *testing.T) {
	text := hudText(hudInfo{lastErr: errors.New(strings.Repeat("x", 500))})
	last := text[strings.LastIndex(text, "\n")+1:]
	if len(last) > len("error: ")+120 {
		t.Errorf("error line is %d bytes", len(last))
	}
}

func TestHUDRefreshThrottled(t *testing.T) {
	h := newHUD(true)
	h.update(0.016, hudInfo{nodes: 1})
	if !strings.Contains(h.text, "nodes: 1") {
		t.Fatalf("first update not applied: %q", h.text)
	}
	h.update(0.016, hudInfo{nodes: 2})
	if !strings.Contains(h.text, "nodes: 1") {
		t.Errorf("HUD refreshed before %vs: %q", hudRefresh, h.text)
	}
	h.update(hudRefresh, hudInfo{nodes: 2})
	if !strings.Contains(h.text, "nodes: 2") {
		t.Errorf("HUD not refreshed: %q", h.text)
	}
}

func TestHUDDisabled(t *testing.T) {
	h := newHUD(false)
	h.update(1, hudInfo{nodes: 5})
	if h.text != "" {
		t.Errorf("disabled HUD text = %q", h.text)
	}
}
