package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ValidPaymentStatus reports whether s is one of the known payment states.
// Any state may follow any other: the payment gateway has authority to
// report whatever it observed, so no transition rules are enforced.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "registered"
	AttendanceCheckedIn  AttendanceStatus = "checked-in"
	AttendanceNoShow     AttendanceStatus = "no-show"
)

// Ticket represents a reservation of capacity units against one event.
// TotalPrice is frozen at reservation time; later price changes to the
// event do not alter it.
type Ticket struct {
	ID               string
	EventID          string
	HolderID         string
	Quantity         int
	TotalPrice       int64 // cents
	PaymentStatus    PaymentStatus
	PaymentMethod    string
	TransactionID    string
	AttendanceStatus AttendanceStatus
	ReservedAt       time.Time
	UpdatedAt        time.Time
}

// EventTicketStats aggregates the non-voided tickets of one event.
type EventTicketStats struct {
	TotalRegistrations int
	TotalTickets       int
	Revenue            int64
}

// TicketStats sums registrations, ticket units and revenue over tickets.
func TicketStats(tickets []Ticket) EventTicketStats {
	stats := EventTicketStats{TotalRegistrations: len(tickets)}
	for _, t := range tickets {
		stats.TotalTickets += t.Quantity
		stats.Revenue += t.TotalPrice
	}
	return stats
}
