package deontic

import "errors"

// Deontic range errors.
var (
	// ErrConfiguration is returned for invalid range or mapper setups:
	// unknown range type, static range without boundaries, or inner
	// boundaries requested from a mapper that has none.
	ErrConfiguration = errors.New("configuration error")

	// ErrMemoryUpdate is returned when a range update receives a
	// non-finite or saturated valence, or the range type is unknown.
	ErrMemoryUpdate = errors.New("memory update failure")
)
