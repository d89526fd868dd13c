package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

// TicketRepository owns ticket lifecycle records, keyed by ticket id.
type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) error
	Get(ctx context.Context, ticketID string) (domain.Ticket, error)
	ListByHolder(ctx context.Context, holderID string) ([]domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	UpdatePayment(ctx context.Context, ticketID string, status domain.PaymentStatus, method, transactionID string, now time.Time) (domain.Ticket, error)
	Void(ctx context.Context, ticketID string) error
}

// EventGetter looks up event records for authorization and window checks.
type EventGetter interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
}

const defaultCancelCutoff = 24 * time.Hour

// TicketService orchestrates the reservation and cancellation protocols
// over the capacity ledger and the ticket record store. The two are
// independently-mutable state: the service sequences forward steps and
// guarantees the compensating release when a downstream step fails.
type TicketService struct {
	ledger       *Ledger
	tickets      TicketRepository
	events       EventGetter
	clock        clock.Clock
	cancelCutoff time.Duration
	log          logrus.FieldLogger
}

type TicketServiceOption func(*TicketService)

// WithCancelCutoff overrides the minimum lead time required to cancel.
func WithCancelCutoff(d time.Duration) TicketServiceOption {
	return func(s *TicketService) {
		if d > 0 {
			s.cancelCutoff = d
		}
	}
}

func NewTicketService(ledger *Ledger, tickets TicketRepository, events EventGetter, clk clock.Clock, log logrus.FieldLogger, opts ...TicketServiceOption) *TicketService {
	svc := &TicketService{
		ledger:       ledger,
		tickets:      tickets,
		events:       events,
		clock:        clk,
		cancelCutoff: defaultCancelCutoff,
		log:          log,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReserveInput struct {
	EventID       string
	Quantity      int // 0 means 1
	PaymentMethod string
}

// Reserve turns a reservation request into a fully-committed ticket or a
// clean failure with no capacity consumed.
func (s *TicketService) Reserve(ctx context.Context, caller domain.Identity, in ReserveInput) (domain.Ticket, error) {
	if in.EventID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return domain.Ticket{}, domain.ErrInvalidQuantity
	}

	event, err := s.ledger.TryReserve(ctx, in.EventID, quantity)
	if err != nil {
		return domain.Ticket{}, err
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		ID:               newID(),
		EventID:          in.EventID,
		HolderID:         caller.UserID,
		Quantity:         quantity,
		TotalPrice:       int64(quantity) * event.TicketPrice,
		PaymentStatus:    domain.PaymentPending,
		PaymentMethod:    in.PaymentMethod,
		AttendanceStatus: domain.AttendanceRegistered,
		ReservedAt:       now,
		UpdatedAt:        now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		// Capacity was already consumed; put it back before surfacing
		// the error. Runs detached from the caller's context so an
		// abandoned request still restores the conservation invariant.
		releaseCtx := context.WithoutCancel(ctx)
		if relErr := s.ledger.Release(releaseCtx, in.EventID, quantity); relErr != nil {
			s.log.WithFields(logrus.Fields{
				"event_id": in.EventID,
				"quantity": quantity,
			}).WithError(relErr).Error("compensating release failed")
		}
		return domain.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	return ticket, nil
}

// GetTicket returns a ticket visible to its holder, the event organizer,
// or an admin.
func (s *TicketService) GetTicket(ctx context.Context, caller domain.Identity, ticketID string) (domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := s.authorizeTicketAccess(ctx, caller, ticket); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// ListHolderTickets returns the caller's own tickets.
func (s *TicketService) ListHolderTickets(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error) {
	return s.tickets.ListByHolder(ctx, caller.UserID)
}

// Cancel releases a reservation, honoring the cancellation window.
// Ordering is void-then-release: the guarded delete is the atomic claim
// on the ticket, so of any concurrent duplicate cancellations exactly
// one reaches the release and capacity is returned at most once. If the
// process dies between the steps capacity stays under-counted, never
// oversold, and the orphaned units are surfaced by the error log for
// reconciliation.
func (s *TicketService) Cancel(ctx context.Context, caller domain.Identity, ticketID string) error {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.HolderID != caller.UserID && !caller.IsAdmin() {
		return domain.ErrForbidden
	}

	event, err := s.events.GetEvent(ctx, ticket.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			// Data-integrity fault, not a user error.
			return fmt.Errorf("event %s missing for ticket %s", ticket.EventID, ticket.ID)
		}
		return err
	}

	if event.StartsAt.Sub(s.clock.Now()) <= s.cancelCutoff {
		return domain.ErrWindowClosed
	}

	releaseCtx := context.WithoutCancel(ctx)
	if err := s.tickets.Void(releaseCtx, ticket.ID); err != nil {
		// Lost the claim: a concurrent cancellation already voided the
		// ticket and owns the release.
		return err
	}
	if err := s.ledger.Release(releaseCtx, ticket.EventID, ticket.Quantity); err != nil {
		s.log.WithFields(logrus.Fields{
			"ticket_id": ticket.ID,
			"event_id":  ticket.EventID,
			"quantity":  ticket.Quantity,
		}).WithError(err).Error("release after void failed, capacity needs reconciliation")
		return fmt.Errorf("release capacity: %w", err)
	}
	return nil
}

type UpdatePaymentInput struct {
	Status        domain.PaymentStatus
	Method        string
	TransactionID string
}

// UpdatePayment merges gateway-reported payment details into the ticket.
// No transition restrictions: the gateway may report any status at any
// time.
func (s *TicketService) UpdatePayment(ctx context.Context, caller domain.Identity, ticketID string, in UpdatePaymentInput) (domain.Ticket, error) {
	if !domain.ValidPaymentStatus(in.Status) {
		return domain.Ticket{}, domain.ErrInvalidPaymentStatus
	}

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if err := s.authorizeTicketAccess(ctx, caller, ticket); err != nil {
		return domain.Ticket{}, err
	}

	return s.tickets.UpdatePayment(ctx, ticketID, in.Status, in.Method, in.TransactionID, s.clock.Now())
}

// EventTicketsReport lists an event's tickets with aggregate stats.
type EventTicketsReport struct {
	Tickets []domain.Ticket
	Stats   domain.EventTicketStats
}

// EventTickets returns all tickets of an event with registration and
// revenue totals. Restricted to the event organizer and admins.
func (s *TicketService) EventTickets(ctx context.Context, caller domain.Identity, eventID string) (EventTicketsReport, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return EventTicketsReport{}, err
	}
	if event.OrganizerID != caller.UserID && !caller.IsAdmin() {
		return EventTicketsReport{}, domain.ErrForbidden
	}

	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return EventTicketsReport{}, err
	}
	return EventTicketsReport{
		Tickets: tickets,
		Stats:   domain.TicketStats(tickets),
	}, nil
}

func (s *TicketService) authorizeTicketAccess(ctx context.Context, caller domain.Identity, ticket domain.Ticket) error {
	if ticket.HolderID == caller.UserID || caller.IsAdmin() {
		return nil
	}
	event, err := s.events.GetEvent(ctx, ticket.EventID)
	if err == nil && event.OrganizerID == caller.UserID {
		return nil
	}
	return domain.ErrForbidden
}
