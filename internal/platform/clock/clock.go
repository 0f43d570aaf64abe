package clock

import "time"

// Clock supplies the current instant. Booking validation depends on "now",
// so the service takes a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// System is the production clock. All instants are UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant. Test use only.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
