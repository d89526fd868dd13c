package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stagedoor/api/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, event_id, holder_id, quantity, total_price, payment_status, payment_method, transaction_id, attendance_status, reserved_at, updated_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.HolderID,
		&t.Quantity,
		&t.TotalPrice,
		&t.PaymentStatus,
		&t.PaymentMethod,
		&t.TransactionID,
		&t.AttendanceStatus,
		&t.ReservedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, holder_id, quantity, total_price, payment_status, payment_method, transaction_id, attendance_status, reserved_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, stmt,
		ticket.ID,
		ticket.EventID,
		ticket.HolderID,
		ticket.Quantity,
		ticket.TotalPrice,
		ticket.PaymentStatus,
		ticket.PaymentMethod,
		ticket.TransactionID,
		ticket.AttendanceStatus,
		ticket.ReservedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepository) ListByHolder(ctx context.Context, holderID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE holder_id = $1 ORDER BY reserved_at DESC`
	return r.list(ctx, query, holderID)
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY reserved_at DESC`
	return r.list(ctx, query, eventID)
}

func (r *TicketRepository) list(ctx context.Context, query string, arg any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// UpdatePayment sets the payment status and merges non-empty detail
// fields, leaving existing values in place when the gateway omits them.
func (r *TicketRepository) UpdatePayment(ctx context.Context, ticketID string, status domain.PaymentStatus, method, transactionID string, now time.Time) (domain.Ticket, error) {
	const stmt = `
UPDATE tickets
SET payment_status = $2,
    payment_method = COALESCE(NULLIF($3, ''), payment_method),
    transaction_id = COALESCE(NULLIF($4, ''), transaction_id),
    updated_at = $5
WHERE id = $1
RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, stmt, ticketID, status, method, transactionID, now))
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("update ticket payment: %w", err)
	}
	return ticket, nil
}

// Void removes the ticket record. The guarded delete succeeds for at most
// one caller, which then owns the matching capacity release.
func (r *TicketRepository) Void(ctx context.Context, ticketID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, ticketID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("void ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}
