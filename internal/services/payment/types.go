package payment

import "time"

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// stuckAfter is how long an initiated payment may wait for a
	// callback before the sweeper queries the gateway directly.
	stuckAfter = 10 * time.Minute
)

// ListFilter narrows payment listings. BusinessID zero means every
// business the caller can see.
type ListFilter struct {
	BusinessID uint
	Status     string
	Limit      int
	Offset     int
}

func (f *ListFilter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
