package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stagedoor/api/internal/domain"
)

// fakeEventStore is an in-memory EventRepository / LedgerRepository with
// the same atomicity guarantee as the real storage: capacity checks and
// decrements happen under one lock.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]domain.Event

	failRelease error
}

func newFakeEventStore(events ...domain.Event) *fakeEventStore {
	store := &fakeEventStore{events: make(map[string]domain.Event)}
	for _, e := range events {
		store.events[e.ID] = e
	}
	return store
}

func (f *fakeEventStore) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeEventStore) ReserveCapacity(_ context.Context, eventID string, quantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return 0, domain.ErrEventNotFound
	}
	if event.Capacity < quantity {
		return 0, &domain.CapacityError{Available: event.Capacity}
	}
	event.Capacity -= quantity
	f.events[eventID] = event
	return event.Capacity, nil
}

func (f *fakeEventStore) ReleaseCapacity(_ context.Context, eventID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRelease != nil {
		return f.failRelease
	}
	event, ok := f.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.Capacity += quantity
	f.events[eventID] = event
	return nil
}

func (f *fakeEventStore) capacity(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[eventID].Capacity
}

func (f *fakeEventStore) Create(_ context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) List(_ context.Context, filter EventFilter) ([]domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []domain.Event
	for _, e := range f.events {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.StartsAfter != nil && e.StartsAt.Before(*filter.StartsAfter) {
			continue
		}
		if filter.StartsBefore != nil && e.StartsAt.After(*filter.StartsBefore) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartsAt.Before(matched[j].StartsAt) })

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset > total {
		offset = total
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeEventStore) ListByOrganizer(_ context.Context, organizerID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) Update(_ context.Context, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) Delete(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	delete(f.events, eventID)
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository with per-operation
// error injection.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket

	failCreate error
	failVoid   error

	// beforeVoid runs once ahead of the next Void, outside the lock, so
	// tests can interleave a competing operation at that point.
	beforeVoid func()
}

func newFakeTicketRepo(tickets ...domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Get(_ context.Context, ticketID string) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeTicketRepo) ListByHolder(_ context.Context, holderID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.HolderID == holderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) UpdatePayment(_ context.Context, ticketID string, status domain.PaymentStatus, method, transactionID string, now time.Time) (domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	ticket.PaymentStatus = status
	if method != "" {
		ticket.PaymentMethod = method
	}
	if transactionID != "" {
		ticket.TransactionID = transactionID
	}
	ticket.UpdatedAt = now
	f.tickets[ticketID] = ticket
	return ticket, nil
}

func (f *fakeTicketRepo) Void(_ context.Context, ticketID string) error {
	if hook := f.beforeVoid; hook != nil {
		f.beforeVoid = nil
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failVoid != nil {
		return f.failVoid
	}
	if _, ok := f.tickets[ticketID]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(f.tickets, ticketID)
	return nil
}

// activeQuantity sums ticket units held against an event.
func (f *fakeTicketRepo) activeQuantity(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, t := range f.tickets {
		if t.EventID == eventID {
			total += t.Quantity
		}
	}
	return total
}
