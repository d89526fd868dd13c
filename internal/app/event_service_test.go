package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	organizer := domain.Identity{UserID: "org-1", Role: domain.RoleOrganizer}

	validInput := CreateEventInput{
		Title:       "Jazz Evening",
		Location:    "Blue Note",
		Category:    "music",
		StartsAt:    testNow.Add(72 * time.Hour),
		Capacity:    50,
		TicketPrice: 3500,
	}

	t.Run("organizer creates event", func(t *testing.T) {
		store := newFakeEventStore()
		svc := NewEventService(store, clock.NewFixed(testNow))

		event, err := svc.CreateEvent(ctx, organizer, validInput)
		if err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
		if event.ID == "" {
			t.Error("event ID is empty")
		}
		if event.OrganizerID != "org-1" {
			t.Errorf("OrganizerID = %q, want org-1", event.OrganizerID)
		}
		if event.Capacity != 50 {
			t.Errorf("Capacity = %d, want 50", event.Capacity)
		}
		if !event.CreatedAt.Equal(testNow) {
			t.Errorf("CreatedAt = %v, want %v", event.CreatedAt, testNow)
		}
	})

	t.Run("plain user cannot publish", func(t *testing.T) {
		svc := NewEventService(newFakeEventStore(), clock.NewFixed(testNow))
		user := domain.Identity{UserID: "user-1", Role: domain.RoleUser}
		if _, err := svc.CreateEvent(ctx, user, validInput); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("CreateEvent() error = %v, want %v", err, domain.ErrForbidden)
		}
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewEventService(newFakeEventStore(), clock.NewFixed(testNow))

		tests := []struct {
			name    string
			mutate  func(*CreateEventInput)
			wantErr error
		}{
			{"missing title", func(in *CreateEventInput) { in.Title = "" }, domain.ErrTitleRequired},
			{"zero start time", func(in *CreateEventInput) { in.StartsAt = time.Time{} }, domain.ErrInvalidStartsAt},
			{"zero capacity", func(in *CreateEventInput) { in.Capacity = 0 }, domain.ErrInvalidCapacity},
			{"negative capacity", func(in *CreateEventInput) { in.Capacity = -5 }, domain.ErrInvalidCapacity},
			{"negative price", func(in *CreateEventInput) { in.TicketPrice = -1 }, domain.ErrInvalidPrice},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				in := validInput
				tc.mutate(&in)
				if _, err := svc.CreateEvent(ctx, organizer, in); !errors.Is(err, tc.wantErr) {
					t.Errorf("CreateEvent() error = %v, want %v", err, tc.wantErr)
				}
			})
		}
	})

	t.Run("free event is allowed", func(t *testing.T) {
		svc := NewEventService(newFakeEventStore(), clock.NewFixed(testNow))
		in := validInput
		in.TicketPrice = 0
		if _, err := svc.CreateEvent(ctx, organizer, in); err != nil {
			t.Errorf("CreateEvent() error = %v", err)
		}
	})
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()

	makeEvent := func(id, title, category string, offset time.Duration) domain.Event {
		e := testEvent(id, 10)
		e.Title = title
		e.Category = category
		e.StartsAt = testNow.Add(offset)
		return e
	}
	store := newFakeEventStore(
		makeEvent("ev-1", "Jazz Evening", "music", 24*time.Hour),
		makeEvent("ev-2", "Rock Night", "music", 48*time.Hour),
		makeEvent("ev-3", "Go Meetup", "tech", 72*time.Hour),
	)
	svc := NewEventService(store, clock.NewFixed(testNow))

	t.Run("unfiltered", func(t *testing.T) {
		page, err := svc.ListEvents(ctx, EventFilter{})
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if page.Total != 3 || len(page.Events) != 3 {
			t.Errorf("Total = %d, len(Events) = %d, want 3 and 3", page.Total, len(page.Events))
		}
		if page.Page != 1 || page.Pages != 1 {
			t.Errorf("Page = %d, Pages = %d, want 1 and 1", page.Page, page.Pages)
		}
	})

	t.Run("category filter", func(t *testing.T) {
		page, err := svc.ListEvents(ctx, EventFilter{Category: "tech"})
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if page.Total != 1 || page.Events[0].ID != "ev-3" {
			t.Errorf("ListEvents(tech) = %+v, want only ev-3", page.Events)
		}
	})

	t.Run("title search is case-insensitive", func(t *testing.T) {
		page, err := svc.ListEvents(ctx, EventFilter{Search: "jazz"})
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if page.Total != 1 || page.Events[0].ID != "ev-1" {
			t.Errorf("ListEvents(jazz) = %+v, want only ev-1", page.Events)
		}
	})

	t.Run("paging", func(t *testing.T) {
		page, err := svc.ListEvents(ctx, EventFilter{Page: 2, Limit: 2})
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if page.Total != 3 || page.Pages != 2 || len(page.Events) != 1 {
			t.Errorf("Total = %d, Pages = %d, len(Events) = %d, want 3, 2, 1", page.Total, page.Pages, len(page.Events))
		}
	})

	t.Run("time window filter", func(t *testing.T) {
		after := testNow.Add(36 * time.Hour)
		page, err := svc.ListEvents(ctx, EventFilter{StartsAfter: &after})
		if err != nil {
			t.Fatalf("ListEvents() error = %v", err)
		}
		if page.Total != 2 {
			t.Errorf("Total = %d, want 2", page.Total)
		}
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	organizer := domain.Identity{UserID: "org-1", Role: domain.RoleOrganizer}

	newStore := func() *fakeEventStore {
		return newFakeEventStore(testEvent("ev-1", 10))
	}

	t.Run("merges provided fields only", func(t *testing.T) {
		store := newStore()
		svc := NewEventService(store, clock.NewFixed(testNow))

		title := "Closing Night"
		price := int64(2500)
		event, err := svc.UpdateEvent(ctx, organizer, "ev-1", UpdateEventInput{Title: &title, TicketPrice: &price})
		if err != nil {
			t.Fatalf("UpdateEvent() error = %v", err)
		}
		if event.Title != "Closing Night" {
			t.Errorf("Title = %q, want Closing Night", event.Title)
		}
		if event.TicketPrice != 2500 {
			t.Errorf("TicketPrice = %d, want 2500", event.TicketPrice)
		}
		if event.Category != "music" {
			t.Errorf("Category = %q, want music (untouched)", event.Category)
		}
		if event.Capacity != 10 {
			t.Errorf("Capacity = %d, want 10 (not editable)", event.Capacity)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc := NewEventService(newStore(), clock.NewFixed(testNow))
		other := domain.Identity{UserID: "org-2", Role: domain.RoleOrganizer}
		title := "Hijacked"
		if _, err := svc.UpdateEvent(ctx, other, "ev-1", UpdateEventInput{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("UpdateEvent() error = %v, want %v", err, domain.ErrForbidden)
		}
	})

	t.Run("admin may update any event", func(t *testing.T) {
		svc := NewEventService(newStore(), clock.NewFixed(testNow))
		admin := domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}
		title := "Renamed"
		if _, err := svc.UpdateEvent(ctx, admin, "ev-1", UpdateEventInput{Title: &title}); err != nil {
			t.Errorf("UpdateEvent() error = %v", err)
		}
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		svc := NewEventService(newStore(), clock.NewFixed(testNow))
		title := ""
		if _, err := svc.UpdateEvent(ctx, organizer, "ev-1", UpdateEventInput{Title: &title}); !errors.Is(err, domain.ErrTitleRequired) {
			t.Errorf("UpdateEvent() error = %v, want %v", err, domain.ErrTitleRequired)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := NewEventService(newStore(), clock.NewFixed(testNow))
		if _, err := svc.UpdateEvent(ctx, organizer, "nope", UpdateEventInput{}); !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("UpdateEvent() error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		store := newFakeEventStore(testEvent("ev-1", 10))
		svc := NewEventService(store, clock.NewFixed(testNow))
		organizer := domain.Identity{UserID: "org-1", Role: domain.RoleOrganizer}

		if err := svc.DeleteEvent(ctx, organizer, "ev-1"); err != nil {
			t.Fatalf("DeleteEvent() error = %v", err)
		}
		if _, err := svc.GetEvent(ctx, "ev-1"); !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("GetEvent() after delete error = %v, want %v", err, domain.ErrEventNotFound)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		store := newFakeEventStore(testEvent("ev-1", 10))
		svc := NewEventService(store, clock.NewFixed(testNow))
		other := domain.Identity{UserID: "user-2", Role: domain.RoleUser}

		if err := svc.DeleteEvent(ctx, other, "ev-1"); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("DeleteEvent() error = %v, want %v", err, domain.ErrForbidden)
		}
	})
}

func TestMyEvents(t *testing.T) {
	ctx := context.Background()
	mine := testEvent("ev-1", 10)
	theirs := testEvent("ev-2", 10)
	theirs.OrganizerID = "org-2"
	store := newFakeEventStore(mine, theirs)
	svc := NewEventService(store, clock.NewFixed(testNow))

	events, err := svc.MyEvents(ctx, domain.Identity{UserID: "org-1", Role: domain.RoleOrganizer})
	if err != nil {
		t.Fatalf("MyEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-1" {
		t.Errorf("MyEvents() = %+v, want only ev-1", events)
	}
}

func TestEventFilterNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        EventFilter
		wantPage  int
		wantLimit int
	}{
		{"zero values", EventFilter{}, 1, 10},
		{"negative page", EventFilter{Page: -3, Limit: 20}, 1, 20},
		{"limit above maximum", EventFilter{Page: 2, Limit: 500}, 2, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Errorf("Normalize() = page %d limit %d, want page %d limit %d", got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
