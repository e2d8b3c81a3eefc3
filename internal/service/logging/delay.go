package logging

import "time"

// Delayer schedules a follow-up after a UI-phase delay. The delays exist
// only to sequence presentation transitions; tests use SyncDelayer so every
// transition settles immediately.
type Delayer interface {
	After(d time.Duration, fn func())
}

// TimerDelayer schedules on real timers.
type TimerDelayer struct{}

// After runs fn once d has elapsed.
func (TimerDelayer) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// SyncDelayer runs the follow-up immediately, collapsing every transition
// to its settled phase.
type SyncDelayer struct{}

// After ignores the delay and runs fn now.
func (SyncDelayer) After(_ time.Duration, fn func()) {
	fn()
}
