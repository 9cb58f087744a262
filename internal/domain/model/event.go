// Package model contains domain models passed between layers.
package model

import "time"

// Event is a club tournament day. Bouts are scheduled relative to Date.
type Event struct {
	ID   int64
	Name string
	Date time.Time
}

// RegistrationStatus tracks a competitor's entry into an event.
type RegistrationStatus string

// Registration statuses. Only RegistrationRegistered entrants are paired.
const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationWithdrawn  RegistrationStatus = "withdrawn"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// Registration links a competitor to an event.
type Registration struct {
	ID           int64
	EventID      int64
	CompetitorID int64
	Status       RegistrationStatus
	RegisteredAt time.Time
}

// Active reports whether the entrant is still in the event.
func (r Registration) Active() bool { return r.Status == RegistrationRegistered }
