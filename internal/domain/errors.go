package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrPastEvent       = errors.New("cannot register for past events")
	ErrForbidden       = errors.New("forbidden")
	ErrWindowClosed    = errors.New("cannot cancel tickets within 24 hours of event")

	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	ErrTitleRequired   = errors.New("event title is required")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidPrice    = errors.New("ticket price must not be negative")
	ErrInvalidStartsAt = errors.New("event start time is required")

	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrBadCredentials   = errors.New("invalid email or password")

	ErrInvalidID = errors.New("invalid id")
)

// CapacityError reports a rejected reservation along with the number of
// units still available, so callers can retry with a smaller quantity.
type CapacityError struct {
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("only %d tickets available", e.Available)
}
