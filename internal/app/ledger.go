package app

import (
	"context"

	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

// LedgerRepository is the storage contract for capacity accounting. Both
// capacity operations must be atomic at the storage layer: ReserveCapacity
// is a guarded decrement that either consumes the full quantity or fails
// with *domain.CapacityError carrying the remaining count.
type LedgerRepository interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ReserveCapacity(ctx context.Context, eventID string, quantity int) (remaining int, err error)
	ReleaseCapacity(ctx context.Context, eventID string, quantity int) error
}

// Ledger owns the authoritative remaining-capacity count per event.
type Ledger struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedger(repo LedgerRepository, clk clock.Clock) *Ledger {
	return &Ledger{repo: repo, clock: clk}
}

// TryReserve atomically consumes quantity units of the event's capacity.
// On success it returns the event with Capacity set to the count remaining
// after the decrement. No state is changed on failure.
func (l *Ledger) TryReserve(ctx context.Context, eventID string, quantity int) (domain.Event, error) {
	if quantity <= 0 {
		return domain.Event{}, domain.ErrInvalidQuantity
	}

	event, err := l.repo.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if !event.Upcoming(l.clock.Now()) {
		return domain.Event{}, domain.ErrPastEvent
	}

	remaining, err := l.repo.ReserveCapacity(ctx, eventID, quantity)
	if err != nil {
		return domain.Event{}, err
	}
	event.Capacity = remaining
	return event, nil
}

// Release returns previously reserved units to the pool. The protocol
// layer guarantees at most one release per reservation.
func (l *Ledger) Release(ctx context.Context, eventID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return l.repo.ReleaseCapacity(ctx, eventID, quantity)
}
