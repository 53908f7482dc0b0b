package services

import (
	"time"

	portssvc "github.com/agencyops/travel_ledger_app/internal/core/ports/services"
)

// realClock is the production Clock backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock returns the production clock.
func NewRealClock() portssvc.Clock {
	return realClock{}
}
