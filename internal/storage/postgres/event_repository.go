package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stagedoor/api/internal/app"
	"github.com/stagedoor/api/internal/domain"
)

// EventRepository stores events and implements the capacity ledger's
// storage contract. Both ledger operations are single guarded statements,
// so concurrent writers serialize on the row without a read-modify-write
// window.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, title, description, location, category, starts_at, capacity, ticket_price, organizer_id, created_at, updated_at`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.Category,
		&e.StartsAt,
		&e.Capacity,
		&e.TicketPrice,
		&e.OrganizerID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, title, description, location, category, starts_at, capacity, ticket_price, organizer_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.Category,
		event.StartsAt,
		event.Capacity,
		event.TicketPrice,
		event.OrganizerID,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ReserveCapacity atomically checks and decrements remaining capacity in
// one statement. On insufficient capacity it reports how many units are
// still available.
func (r *EventRepository) ReserveCapacity(ctx context.Context, eventID string, quantity int) (int, error) {
	const stmt = `
UPDATE events
SET capacity = capacity - $2, updated_at = NOW()
WHERE id = $1 AND capacity >= $2
RETURNING capacity`

	var remaining int
	err := r.pool.QueryRow(ctx, stmt, eventID, quantity).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if isInvalidUUID(err) {
		return 0, domain.ErrEventNotFound
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("reserve capacity: %w", err)
	}

	// Guard failed: missing event or insufficient capacity. This read is
	// outside the atomic step, so the reported count is an advisory retry
	// hint and may already be stale.
	var available int
	err = r.pool.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1`, eventID).Scan(&available)
	if err == pgx.ErrNoRows {
		return 0, domain.ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reserve capacity: %w", err)
	}
	return 0, &domain.CapacityError{Available: available}
}

// ReleaseCapacity atomically returns units to the pool.
func (r *EventRepository) ReleaseCapacity(ctx context.Context, eventID string, quantity int) error {
	const stmt = `
UPDATE events
SET capacity = capacity + $2, updated_at = NOW()
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, eventID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("release capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filter app.EventFilter) ([]domain.Event, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.StartsAfter != nil {
		conds = append(conds, "starts_at >= "+arg(*filter.StartsAfter))
	}
	if filter.StartsBefore != nil {
		conds = append(conds, "starts_at <= "+arg(*filter.StartsBefore))
	}
	if filter.Search != "" {
		conds = append(conds, "title ILIKE '%' || "+arg(filter.Search)+" || '%'")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		` ORDER BY starts_at ASC LIMIT ` + arg(filter.Limit) +
		` OFFSET ` + arg((filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY starts_at ASC`

	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	return events, nil
}

// Update writes event metadata. Capacity is excluded: only the ledger
// statements touch it.
func (r *EventRepository) Update(ctx context.Context, event domain.Event) error {
	const stmt = `
UPDATE events
SET title = $2, description = $3, location = $4, category = $5, starts_at = $6, ticket_price = $7, updated_at = $8
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.Category,
		event.StartsAt,
		event.TicketPrice,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, eventID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
