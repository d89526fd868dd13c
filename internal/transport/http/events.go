package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stagedoor/api/internal/app"
	"github.com/stagedoor/api/internal/domain"
)

// EventService is the minimal interface the event endpoints need.
type EventService interface {
	CreateEvent(ctx context.Context, caller domain.Identity, in app.CreateEventInput) (domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListEvents(ctx context.Context, filter app.EventFilter) (app.EventPage, error)
	MyEvents(ctx context.Context, caller domain.Identity) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, caller domain.Identity, eventID string, in app.UpdateEventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, caller domain.Identity, eventID string) error
}

type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at"`
	Capacity    int       `json:"capacity"`
	TicketPrice int64     `json:"ticket_price"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Category:    e.Category,
		StartsAt:    e.StartsAt,
		Capacity:    e.Capacity,
		TicketPrice: e.TicketPrice,
		OrganizerID: e.OrganizerID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventResponses(events []domain.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	StartsAt    string `json:"starts_at"`
	Capacity    int    `json:"capacity"`
	TicketPrice int64  `json:"ticket_price"`
}

// HandleCreateEvent publishes a new event (organizers and admins only).
func HandleCreateEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var startsAt time.Time
		if req.StartsAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.StartsAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid starts_at format")
				return
			}
			startsAt = parsed
		}

		event, err := svc.CreateEvent(r.Context(), caller, app.CreateEventInput{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Category:    req.Category,
			StartsAt:    startsAt,
			Capacity:    req.Capacity,
			TicketPrice: req.TicketPrice,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(event), "event created successfully")
	}
}

// HandleGetEvent returns one event; no authentication required.
func HandleGetEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event), "event retrieved successfully")
	}
}

type eventPageResponse struct {
	Events []eventResponse `json:"events"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Total  int             `json:"total"`
}

// HandleListEvents lists events with optional filters and paging.
func HandleListEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := app.EventFilter{
			Category: q.Get("category"),
			Search:   q.Get("search"),
		}
		if v := q.Get("page"); v != "" {
			filter.Page, _ = strconv.Atoi(v)
		}
		if v := q.Get("limit"); v != "" {
			filter.Limit, _ = strconv.Atoi(v)
		}
		if v := q.Get("starts_after"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid starts_after format")
				return
			}
			filter.StartsAfter = &t
		}
		if v := q.Get("starts_before"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid starts_before format")
				return
			}
			filter.StartsBefore = &t
		}

		page, err := svc.ListEvents(r.Context(), filter)
		if err != nil {
			respondError(w, err)
			return
		}

		resp := eventPageResponse{
			Events: toEventResponses(page.Events),
			Page:   page.Page,
			Pages:  page.Pages,
			Total:  page.Total,
		}
		writeJSON(w, http.StatusOK, resp, "events retrieved successfully")
	}
}

// HandleMyEvents lists the caller's own events.
func HandleMyEvents(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		events, err := svc.MyEvents(r.Context(), caller)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(events), "events retrieved successfully")
	}
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
	StartsAt    *string `json:"starts_at"`
	TicketPrice *int64  `json:"ticket_price"`
}

// HandleUpdateEvent updates event metadata (owner or admin). Capacity is
// not editable: it belongs to the ledger.
func HandleUpdateEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		var req updateEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		in := app.UpdateEventInput{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Category:    req.Category,
			TicketPrice: req.TicketPrice,
		}
		if req.StartsAt != nil {
			parsed, err := time.Parse(time.RFC3339, *req.StartsAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid starts_at format")
				return
			}
			in.StartsAt = &parsed
		}

		event, err := svc.UpdateEvent(r.Context(), caller, chi.URLParam(r, "id"), in)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event), "event updated successfully")
	}
}

// HandleDeleteEvent removes an event (owner or admin).
func HandleDeleteEvent(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		if err := svc.DeleteEvent(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, "event deleted successfully")
	}
}
