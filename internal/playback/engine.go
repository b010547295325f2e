package playback

import (
	"time"

	"github.com/catatanku/backend/internal/models"
)

// State is the engine's lifecycle position within one tray session.
type State string

const (
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateAdvancing State = "advancing"
	StateClosed    State = "closed"
)

const (
	// ImageDuration is how long an image item plays.
	ImageDuration = 5 * time.Second
	// ResumeGrace is the delay between releasing a hold and resuming
	// playback, so a tap that follows the release is not mistaken for
	// navigation on a moving item.
	ResumeGrace = 250 * time.Millisecond
)

// Engine plays one author's tray of stories as a single session. It is a
// tick-driven state machine: callers feed it input events and periodic
// Tick calls with the current time, and it never schedules its own timers.
// All progress lives in the per-item timer, so pausing an item and resuming
// it continues from the same position instead of restarting.
//
// Engine is not safe for concurrent use; drive it from one goroutine.
type Engine struct {
	items []models.Story
	index int
	state State
	timer itemTimer
	muted bool

	pendingResume bool
	resumeAt      time.Time

	allViewedFired bool
	onAllViewed    func(authorID string)
	onClose        func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnAllViewed sets the callback fired exactly once when the last item
// in the tray finishes.
func WithOnAllViewed(fn func(authorID string)) Option {
	return func(e *Engine) { e.onAllViewed = fn }
}

// WithOnClose sets the callback fired when the session ends.
func WithOnClose(fn func()) Option {
	return func(e *Engine) { e.onClose = fn }
}

// NewEngine starts a session over the given items, playing the first one
// immediately. Items must be non-empty and belong to one author.
func NewEngine(items []models.Story, now time.Time, opts ...Option) *Engine {
	e := &Engine{
		items: items,
		muted: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.items) == 0 {
		e.close()
		return e
	}
	e.startItem(now)
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Index returns the position of the current item in the tray.
func (e *Engine) Index() int { return e.index }

// Current returns the item being played, or nil after the session closed.
func (e *Engine) Current() *models.Story {
	if e.state == StateClosed || e.index >= len(e.items) {
		return nil
	}
	return &e.items[e.index]
}

// Progress returns the current item's progress in percent, 0-100.
func (e *Engine) Progress() float64 {
	if e.timer == nil {
		return 0
	}
	return e.timer.progress()
}

// Muted reports the audio state. Sessions start muted.
func (e *Engine) Muted() bool { return e.muted }

// ToggleMute flips the audio state and returns the new value. Mute is
// session-wide, not per item.
func (e *Engine) ToggleMute() bool {
	e.muted = !e.muted
	return e.muted
}

// Tick advances the engine to now. It resumes a released hold once the
// grace delay has passed and advances to the next item when the current
// one finishes. Call it on every frame or timer fire.
func (e *Engine) Tick(now time.Time) State {
	switch e.state {
	case StateClosed:
		return StateClosed
	case StatePaused:
		if e.pendingResume && !now.Before(e.resumeAt) {
			e.pendingResume = false
			e.timer.resume(now)
			e.state = StatePlaying
		}
		return e.state
	}

	e.timer.tick(now)
	if e.timer.done() {
		e.advance(now)
	}
	return e.state
}

// Next skips to the next item. Taps are suppressed while paused: a hold
// that drifted onto a tap zone must not navigate.
func (e *Engine) Next(now time.Time) {
	if e.state != StatePlaying {
		return
	}
	e.advance(now)
}

// Prev restarts the previous item, or the first item from the beginning.
// Suppressed while paused, like Next.
func (e *Engine) Prev(now time.Time) {
	if e.state != StatePlaying {
		return
	}
	if e.index > 0 {
		e.index--
	}
	e.startItem(now)
}

// Press begins a hold: playback pauses and the item's progress freezes.
// Pressing again during a release grace window cancels the pending resume.
func (e *Engine) Press(now time.Time) {
	if e.state == StateClosed {
		return
	}
	e.pendingResume = false
	if e.state == StatePaused {
		return
	}
	e.timer.pause(now)
	e.state = StatePaused
}

// Release ends a hold. Playback resumes from the frozen position after the
// grace delay elapses, on a subsequent Tick.
func (e *Engine) Release(now time.Time) {
	if e.state != StatePaused {
		return
	}
	e.pendingResume = true
	e.resumeAt = now.Add(ResumeGrace)
}

// SetVideoPosition reports the media element's playback position for the
// current video item. Ignored for images and while paused.
func (e *Engine) SetVideoPosition(now time.Time, position, duration float64) {
	vt, ok := e.timer.(*videoTimer)
	if !ok || e.state != StatePlaying {
		return
	}
	vt.setPosition(position, duration)
	if vt.done() {
		e.advance(now)
	}
}

// VideoEnded reports that the media element reached the end of the current
// video item.
func (e *Engine) VideoEnded(now time.Time) {
	vt, ok := e.timer.(*videoTimer)
	if !ok || e.state != StatePlaying {
		return
	}
	vt.end()
	e.advance(now)
}

// DeleteCurrent removes the current item from the session after the author
// deleted it, and returns the removed item. Playback moves to the item
// that slid into its place; deleting the last item ends the session.
func (e *Engine) DeleteCurrent(now time.Time) *models.Story {
	if e.state == StateClosed || e.index >= len(e.items) {
		return nil
	}
	removed := e.items[e.index]
	e.items = append(e.items[:e.index], e.items[e.index+1:]...)
	if e.index >= len(e.items) {
		e.finish()
	} else {
		e.startItem(now)
	}
	return &removed
}

// Close ends the session immediately, as when the viewer swipes it away.
func (e *Engine) Close() {
	if e.state == StateClosed {
		return
	}
	e.close()
}

// advance moves past the current item: to the next one, or to the end of
// the session when none remain.
func (e *Engine) advance(now time.Time) {
	e.state = StateAdvancing
	e.index++
	if e.index >= len(e.items) {
		e.finish()
		return
	}
	e.startItem(now)
}

// startItem begins the item at the current index with a fresh timer.
func (e *Engine) startItem(now time.Time) {
	item := e.items[e.index]
	if item.MediaType == models.MediaVideo {
		e.timer = newVideoTimer()
	} else {
		e.timer = newImageTimer(now, ImageDuration)
	}
	e.pendingResume = false
	e.state = StatePlaying
}

// finish ends the session because every item played through. The
// all-viewed callback fires exactly once per session.
func (e *Engine) finish() {
	if !e.allViewedFired && e.onAllViewed != nil && len(e.items) > 0 {
		e.allViewedFired = true
		e.onAllViewed(e.items[0].AuthorID)
	}
	e.close()
}

func (e *Engine) close() {
	e.state = StateClosed
	e.timer = nil
	if e.onClose != nil {
		e.onClose()
		e.onClose = nil
	}
}
