package app

import (
	"context"
	"time"

	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

// EventFilter narrows and pages an event listing.
type EventFilter struct {
	Category     string
	StartsAfter  *time.Time
	StartsBefore *time.Time
	Search       string // case-insensitive title match
	Page         int
	Limit        int
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Normalize clamps paging values to sane bounds.
func (f EventFilter) Normalize() EventFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	return f
}

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) error
	Delete(ctx context.Context, eventID string) error
}

// EventService manages event metadata. Remaining capacity is owned by the
// ledger and is not editable here.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{repo: repo, clock: clk}
}

type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	Category    string
	StartsAt    time.Time
	Capacity    int
	TicketPrice int64
}

func (s *EventService) CreateEvent(ctx context.Context, caller domain.Identity, in CreateEventInput) (domain.Event, error) {
	if !caller.CanPublishEvents() {
		return domain.Event{}, domain.ErrForbidden
	}
	if in.Title == "" {
		return domain.Event{}, domain.ErrTitleRequired
	}
	if in.StartsAt.IsZero() {
		return domain.Event{}, domain.ErrInvalidStartsAt
	}
	if in.Capacity <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if in.TicketPrice < 0 {
		return domain.Event{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Category:    in.Category,
		StartsAt:    in.StartsAt,
		Capacity:    in.Capacity,
		TicketPrice: in.TicketPrice,
		OrganizerID: caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return s.repo.GetEvent(ctx, eventID)
}

// EventPage is one page of an event listing.
type EventPage struct {
	Events []domain.Event
	Page   int
	Pages  int
	Total  int
}

func (s *EventService) ListEvents(ctx context.Context, filter EventFilter) (EventPage, error) {
	filter = filter.Normalize()
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return EventPage{}, err
	}
	pages := (total + filter.Limit - 1) / filter.Limit
	return EventPage{Events: events, Page: filter.Page, Pages: pages, Total: total}, nil
}

func (s *EventService) MyEvents(ctx context.Context, caller domain.Identity) ([]domain.Event, error) {
	return s.repo.ListByOrganizer(ctx, caller.UserID)
}

// UpdateEventInput carries optional metadata changes; nil fields are left
// untouched. Capacity is deliberately absent.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	Category    *string
	StartsAt    *time.Time
	TicketPrice *int64
}

func (s *EventService) UpdateEvent(ctx context.Context, caller domain.Identity, eventID string, in UpdateEventInput) (domain.Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.OrganizerID != caller.UserID && !caller.IsAdmin() {
		return domain.Event{}, domain.ErrForbidden
	}

	if in.Title != nil {
		if *in.Title == "" {
			return domain.Event{}, domain.ErrTitleRequired
		}
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Location != nil {
		event.Location = *in.Location
	}
	if in.Category != nil {
		event.Category = *in.Category
	}
	if in.StartsAt != nil {
		if in.StartsAt.IsZero() {
			return domain.Event{}, domain.ErrInvalidStartsAt
		}
		event.StartsAt = *in.StartsAt
	}
	if in.TicketPrice != nil {
		// Existing tickets keep their frozen totals.
		if *in.TicketPrice < 0 {
			return domain.Event{}, domain.ErrInvalidPrice
		}
		event.TicketPrice = *in.TicketPrice
	}
	event.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, caller domain.Identity, eventID string) error {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != caller.UserID && !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, eventID)
}
