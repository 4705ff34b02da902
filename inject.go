package riftplot

import "sync"

// eventKind identifies a queued sandbox event.
type eventKind uint8

const (
	eventEdit eventKind = iota
	eventRunNow
	eventToggleMode
	eventFullscreenExited
	eventResize
)

var eventKindNames = [...]string{"edit", "run_now", "toggle_mode", "fullscreen_exited", "resize"}

func (k eventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// event is a single queued input to the sandbox.
type event struct {
	kind          eventKind
	text          string // eventEdit
	width, height int    // eventResize
}

// eventQueue is the only part of the sandbox touched from other goroutines.
// Producers append under the lock; the frame loop takes the whole batch at
// the start of Update.
type eventQueue struct {
	mu     sync.Mutex
	events []event
}

func (q *eventQueue) post(e event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// drain moves every queued event into dst, in posting order, and returns it.
func (q *eventQueue) drain(dst []event) []event {
	q.mu.Lock()
	dst = append(dst, q.events...)
	clear(q.events)
	q.events = q.events[:0]
	q.mu.Unlock()
	return dst
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Edit queues new editor content. The scene is re-evaluated once edits have
// been quiet for the debounce window.
func (s *Sandbox) Edit(text string) {
	s.events.post(event{kind: eventEdit, text: text})
}

// RunNow queues an immediate evaluation of the current buffer, bypassing
// the debounce window.
func (s *Sandbox) RunNow() {
	s.events.post(event{kind: eventRunNow})
}

// ToggleMode queues a Desktop/Stereo toggle.
func (s *Sandbox) ToggleMode() {
	s.events.post(event{kind: eventToggleMode})
}

// FullscreenExited queues the platform's fullscreen-exit notification.
func (s *Sandbox) FullscreenExited() {
	s.events.post(event{kind: eventFullscreenExited})
}

// Resize queues a surface size change.
func (s *Sandbox) Resize(width, height int) {
	s.events.post(event{kind: eventResize, width: width, height: height})
}

// PendingEvents returns the number of queued, unprocessed events.
func (s *Sandbox) PendingEvents() int {
	return s.events.len()
}
