package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stagedoor/api/internal/domain"
)

func seedTicket(t *testing.T, ctx context.Context, pool *pgxpool.Pool, eventID, holderID string, quantity int) domain.Ticket {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	ticket := domain.Ticket{
		ID:               uuid.NewString(),
		EventID:          eventID,
		HolderID:         holderID,
		Quantity:         quantity,
		TotalPrice:       int64(quantity) * 2000,
		PaymentStatus:    domain.PaymentPending,
		PaymentMethod:    "card",
		AttendanceStatus: domain.AttendanceRegistered,
		ReservedAt:       now,
		UpdatedAt:        now,
	}
	if err := NewTicketRepository(pool).Create(ctx, ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func TestTicketRepository(t *testing.T) {
	ctx, pool := setupDB(t)
	repo := NewTicketRepository(pool)
	organizer := seedUser(t, ctx, pool, domain.RoleOrganizer)
	holder := seedUser(t, ctx, pool, domain.RoleUser)
	event := seedEvent(t, ctx, pool, organizer.ID, 10)

	t.Run("create and get round trip", func(t *testing.T) {
		ticket := seedTicket(t, ctx, pool, event.ID, holder.ID, 2)

		got, err := repo.Get(ctx, ticket.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Quantity != 2 || got.TotalPrice != 4000 {
			t.Errorf("ticket = %+v", got)
		}
		if got.PaymentStatus != domain.PaymentPending {
			t.Errorf("PaymentStatus = %q, want %q", got.PaymentStatus, domain.PaymentPending)
		}
	})

	t.Run("list by holder and event", func(t *testing.T) {
		byHolder, err := repo.ListByHolder(ctx, holder.ID)
		if err != nil {
			t.Fatalf("ListByHolder() error = %v", err)
		}
		byEvent, err := repo.ListByEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListByEvent() error = %v", err)
		}
		if len(byHolder) == 0 || len(byHolder) != len(byEvent) {
			t.Errorf("len(byHolder) = %d, len(byEvent) = %d, want equal and non-zero", len(byHolder), len(byEvent))
		}
	})

	t.Run("payment update merges detail fields", func(t *testing.T) {
		ticket := seedTicket(t, ctx, pool, event.ID, holder.ID, 1)
		now := time.Now().UTC().Truncate(time.Microsecond)

		updated, err := repo.UpdatePayment(ctx, ticket.ID, domain.PaymentPaid, "", "txn-42", now)
		if err != nil {
			t.Fatalf("UpdatePayment() error = %v", err)
		}
		if updated.PaymentStatus != domain.PaymentPaid {
			t.Errorf("PaymentStatus = %q, want %q", updated.PaymentStatus, domain.PaymentPaid)
		}
		if updated.PaymentMethod != "card" {
			t.Errorf("PaymentMethod = %q, want card (kept when empty)", updated.PaymentMethod)
		}
		if updated.TransactionID != "txn-42" {
			t.Errorf("TransactionID = %q, want txn-42", updated.TransactionID)
		}
	})

	t.Run("void removes the record exactly once", func(t *testing.T) {
		ticket := seedTicket(t, ctx, pool, event.ID, holder.ID, 1)

		if err := repo.Void(ctx, ticket.ID); err != nil {
			t.Fatalf("Void() error = %v", err)
		}
		if err := repo.Void(ctx, ticket.ID); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Errorf("second Void() error = %v, want %v", err, domain.ErrTicketNotFound)
		}
		if _, err := repo.Get(ctx, ticket.ID); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Errorf("Get() after void error = %v, want %v", err, domain.ErrTicketNotFound)
		}
	})

	t.Run("malformed id reads as not found", func(t *testing.T) {
		if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Errorf("Get() error = %v, want %v", err, domain.ErrTicketNotFound)
		}
	})
}
