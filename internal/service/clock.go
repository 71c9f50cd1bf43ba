package service

import "time"

// Clock supplies the InstalledAt stamp of registry records.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock in UTC. It is the default Clock.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always reports the same instant, so registry records written
// in tests compare equal.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
