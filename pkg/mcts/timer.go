package mcts

import "time"

// Decision timer, counts from the last Reset
type timer struct {
	start    time.Time
	duration time.Duration
}

func newTimer() *timer {
	return &timer{start: time.Now(), duration: -1}
}

// In milliseconds, negative disables the deadline
func (t *timer) SetMovetime(movetime int) {
	if movetime < 0 {
		t.duration = -1
	} else {
		t.duration = time.Duration(movetime) * time.Millisecond
	}
}

func (t *timer) Reset() {
	t.start = time.Now()
}

func (t *timer) Expired() bool {
	return t.duration > 0 && time.Since(t.start) >= t.duration
}

func (t *timer) ElapsedMs() int {
	return int(time.Since(t.start).Milliseconds())
}
