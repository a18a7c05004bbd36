package clock

import "time"

// Clock abstracts time and delayed execution so that reservation and
// inactivity timers can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run after d and returns a handle that can
	// cancel the pending call.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable handle for a scheduled call.
type Timer interface {
	// Stop cancels the pending call. It reports whether the call was still
	// pending; false means it already fired or was stopped before.
	Stop() bool
}

// System returns a Clock backed by the time package.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{timer: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	timer *time.Timer
}

func (t systemTimer) Stop() bool { return t.timer.Stop() }
