package timeslot

import "time"

// Clock supplies "now" so the engine's time-window rules are testable.
type Clock interface {
	Now() time.Time
}

type kstClock struct{}

// NewKSTClock returns the production clock: wall time in the fixed +9h zone.
func NewKSTClock() Clock {
	return kstClock{}
}

func (kstClock) Now() time.Time {
	return time.Now().In(KST)
}
