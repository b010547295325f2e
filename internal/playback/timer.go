package playback

import "time"

// itemTimer is the single source of truth for one item's elapsed progress.
// Image and video items share the same pause/resume contract; only the
// clock driving them differs.
type itemTimer interface {
	// tick advances elapsed time up to now while running.
	tick(now time.Time)
	// pause freezes elapsed time at now.
	pause(now time.Time)
	// resume continues from the frozen position.
	resume(now time.Time)
	// progress is the percent of the item's duration elapsed, 0-100.
	progress() float64
	// done reports whether the item has fully played.
	done() bool
}

// imageTimer drives an image item off the wall clock for a fixed duration.
type imageTimer struct {
	duration time.Duration
	elapsed  time.Duration
	last     time.Time
	running  bool
}

func newImageTimer(now time.Time, duration time.Duration) *imageTimer {
	return &imageTimer{duration: duration, last: now, running: true}
}

func (t *imageTimer) tick(now time.Time) {
	if !t.running {
		return
	}
	if now.After(t.last) {
		t.elapsed += now.Sub(t.last)
	}
	t.last = now
}

func (t *imageTimer) pause(now time.Time) {
	if !t.running {
		return
	}
	t.tick(now)
	t.running = false
}

func (t *imageTimer) resume(now time.Time) {
	if t.running {
		return
	}
	t.last = now
	t.running = true
}

func (t *imageTimer) progress() float64 {
	p := float64(t.elapsed) / float64(t.duration) * 100
	if p > 100 {
		return 100
	}
	return p
}

func (t *imageTimer) done() bool {
	return t.elapsed >= t.duration
}

// videoTimer mirrors the media element's own playback position. The engine
// never advances it from the wall clock; the player reports positions and
// the end-of-media event.
type videoTimer struct {
	fraction float64
	ended    bool
	frozen   bool
}

func newVideoTimer() *videoTimer {
	return &videoTimer{}
}

func (t *videoTimer) tick(time.Time) {}

func (t *videoTimer) pause(time.Time) { t.frozen = true }

func (t *videoTimer) resume(time.Time) { t.frozen = false }

// setPosition records the media position as a fraction of its duration.
// Positions reported while frozen are dropped so a straggling update cannot
// move a paused item.
func (t *videoTimer) setPosition(position, duration float64) {
	if t.frozen || duration <= 0 {
		return
	}
	f := position / duration
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	t.fraction = f
}

func (t *videoTimer) end() {
	if !t.frozen {
		t.ended = true
	}
}

func (t *videoTimer) progress() float64 {
	return t.fraction * 100
}

func (t *videoTimer) done() bool {
	return t.ended || t.fraction >= 1
}
