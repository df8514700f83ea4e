package coordinator

import "time"

// Timer is a stoppable delayed callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall-clock time and timer scheduling so tests can
// advance virtual time deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
