package domain

import "time"

// Event represents a ticketed event. Capacity is the remaining number of
// ticket units; it is mutated only through the capacity ledger.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Category    string
	StartsAt    time.Time
	Capacity    int
	TicketPrice int64 // price per ticket unit, in cents
	OrganizerID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Upcoming reports whether the event starts after the given instant.
func (e Event) Upcoming(now time.Time) bool {
	return e.StartsAt.After(now)
}
