package mcts

import (
	"context"
	"sync/atomic"
)

type StopReason int

const (
	StopNone      StopReason = iota
	StopInterrupt            = 1 // Stopped by calling .SetStop(true) or context cancellation
	StopMovetime             = 2 // Time limit reached
	StopCycles               = 4 // Rollout budget used up
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopCycles, "Cycles"},
	}

	var result string
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			if result != "" {
				result += "|"
			}
			result += r.name
		}
	}

	return result
}

type LimiterLike interface {
	SetContext(ctx context.Context)
	SetLimits(*Limits)
	Limits() *Limits
	// Elapsed time in ms since the last Reset
	Elapsed() int
	// Set the stop signal, the search exits at the next check
	SetStop(bool)
	Stop() bool
	// Called on search setup
	Reset()
	// Whether another rollout may run, given how many already did
	Ok(cycles int) bool
	// Valid after the search ends
	StopReason() StopReason
	// Work out and store why the search stopped
	EvaluateStopReason(cycles int)
}

type Limiter struct {
	limits *Limits
	timer  *timer
	stop   atomic.Bool
	reason StopReason
	ctx    context.Context
}

var _ LimiterLike = (*Limiter)(nil)

func NewLimiter() *Limiter {
	return &Limiter{
		limits: DefaultLimits(),
		timer:  newTimer(),
		ctx:    context.Background(),
	}
}

func (l *Limiter) Reset() {
	l.timer.SetMovetime(l.limits.Movetime)
	l.timer.Reset()
	l.stop.Store(false)
	l.reason = StopNone
}

func (l *Limiter) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx = ctx
}

func (l *Limiter) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

func (l *Limiter) Elapsed() int {
	return l.timer.ElapsedMs()
}

func (l *Limiter) SetStop(v bool) {
	l.stop.Store(v)
}

func (l *Limiter) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

func (l *Limiter) mask(cycles int) StopReason {
	reason := StopNone
	if l.Stop() {
		reason |= StopInterrupt
	}
	if l.timer.Expired() {
		reason |= StopMovetime
	}
	if cycles >= l.limits.Cycles {
		reason |= StopCycles
	}
	return reason
}

func (l *Limiter) Ok(cycles int) bool {
	return l.mask(cycles) == StopNone
}

func (l *Limiter) EvaluateStopReason(cycles int) {
	l.reason = l.mask(cycles)
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}
