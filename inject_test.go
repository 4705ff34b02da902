package riftplot

import (
	"sync"
	"testing"
)

func TestEventQueueDrainOrder(t *testing.T) {
	var q eventQueue
	q.post(event{kind: eventEdit, text: "a"})
	q.post(event{kind: eventResize, width: 10, height: 20})
	q.post(event{kind: eventRunNow})

	got := q.drain(nil)
	if len(got) != 3 {
		t.Fatalf("drained %d events, want 3", len(got))
	}
	want := []eventKind{eventEdit, eventResize, eventRunNow}
	for i, k := range want {
		if got[i].kind != k {
			t.Errorf("event %d = %v, want %v", i, got[i].kind, k)
		}
	}
	if got[1].width != 10 || got[1].height != 20 {
		t.Errorf("resize payload = %dx%d", got[1].width, got[1].height)
	}
	if q.len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.len())
	}
}

func TestEventQueueConcurrentPost(t *testing.T) {
	var q eventQueue
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.post(event{kind: eventEdit})
			}
		}()
	}
	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		total += len(q.drain(nil))
		select {
		case <-done:
			total += len(q.drain(nil))
			if total != 800 {
				t.Errorf("drained %d events, want 800", total)
			}
			return
		default:
		}
	}
}

func TestEventKindString(t *testing.T) {
	if eventToggleMode.String() != "toggle_mode" {
		t.Errorf("String = %q", eventToggleMode.String())
	}
	if eventKind(99).String() != "unknown" {
		t.Errorf("String = %q", eventKind(99).String())
	}
}
