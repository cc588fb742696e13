// Package system provides the wall clock used outside of tests.
package system

import "time"

// Clock implements scraper.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC. Cache expiries are compared in epoch
// milliseconds, so the location only matters for logging.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
