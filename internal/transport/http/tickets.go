package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stagedoor/api/internal/app"
	"github.com/stagedoor/api/internal/domain"
)

// TicketService is the minimal interface the ticket endpoints need.
type TicketService interface {
	Reserve(ctx context.Context, caller domain.Identity, in app.ReserveInput) (domain.Ticket, error)
	GetTicket(ctx context.Context, caller domain.Identity, ticketID string) (domain.Ticket, error)
	ListHolderTickets(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error)
	Cancel(ctx context.Context, caller domain.Identity, ticketID string) error
	UpdatePayment(ctx context.Context, caller domain.Identity, ticketID string, in app.UpdatePaymentInput) (domain.Ticket, error)
	EventTickets(ctx context.Context, caller domain.Identity, eventID string) (app.EventTicketsReport, error)
}

type ticketResponse struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	HolderID         string    `json:"holder_id"`
	Quantity         int       `json:"quantity"`
	TotalPrice       int64     `json:"total_price"`
	PaymentStatus    string    `json:"payment_status"`
	PaymentMethod    string    `json:"payment_method,omitempty"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	AttendanceStatus string    `json:"attendance_status"`
	ReservedAt       time.Time `json:"reserved_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:               t.ID,
		EventID:          t.EventID,
		HolderID:         t.HolderID,
		Quantity:         t.Quantity,
		TotalPrice:       t.TotalPrice,
		PaymentStatus:    string(t.PaymentStatus),
		PaymentMethod:    t.PaymentMethod,
		TransactionID:    t.TransactionID,
		AttendanceStatus: string(t.AttendanceStatus),
		ReservedAt:       t.ReservedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTicketResponses(tickets []domain.Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	return out
}

type reserveTicketRequest struct {
	EventID       string `json:"event_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

// HandleReserveTicket registers tickets against an event's capacity.
func HandleReserveTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		var req reserveTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.EventID == "" {
			writeError(w, http.StatusBadRequest, "event id is required")
			return
		}

		ticket, err := svc.Reserve(r.Context(), caller, app.ReserveInput{
			EventID:       req.EventID,
			Quantity:      req.Quantity,
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		message := fmt.Sprintf("successfully registered %d ticket(s) for the event", ticket.Quantity)
		writeJSON(w, http.StatusCreated, toTicketResponse(ticket), message)
	}
}

// HandleHolderTickets lists the caller's own tickets.
func HandleHolderTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		tickets, err := svc.ListHolderTickets(r.Context(), caller)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponses(tickets), "user tickets retrieved successfully")
	}
}

// HandleGetTicket returns one ticket to its holder, the event organizer,
// or an admin.
func HandleGetTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		ticket, err := svc.GetTicket(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket), "ticket details retrieved successfully")
	}
}

// HandleCancelTicket voids a reservation and releases its capacity.
func HandleCancelTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		if err := svc.Cancel(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, "ticket successfully cancelled")
	}
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}

// HandleUpdatePayment merges gateway-reported payment details.
func HandleUpdatePayment(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		var req updatePaymentRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PaymentStatus == "" {
			writeError(w, http.StatusBadRequest, "payment status is required")
			return
		}

		ticket, err := svc.UpdatePayment(r.Context(), caller, chi.URLParam(r, "id"), app.UpdatePaymentInput{
			Status:        domain.PaymentStatus(req.PaymentStatus),
			Method:        req.Method,
			TransactionID: req.TransactionID,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket), "ticket payment status updated successfully")
	}
}

type eventTicketsResponse struct {
	Tickets []ticketResponse `json:"tickets"`
	Stats   eventStats       `json:"stats"`
}

type eventStats struct {
	TotalRegistrations int   `json:"total_registrations"`
	TotalTickets       int   `json:"total_tickets"`
	Revenue            int64 `json:"revenue"`
}

// HandleEventTickets lists an event's tickets with aggregate stats, for
// the organizer or an admin.
func HandleEventTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		report, err := svc.EventTickets(r.Context(), caller, chi.URLParam(r, "eventID"))
		if err != nil {
			respondError(w, err)
			return
		}

		resp := eventTicketsResponse{
			Tickets: toTicketResponses(report.Tickets),
			Stats: eventStats{
				TotalRegistrations: report.Stats.TotalRegistrations,
				TotalTickets:       report.Stats.TotalTickets,
				Revenue:            report.Stats.Revenue,
			},
		}
		writeJSON(w, http.StatusOK, resp, "event tickets retrieved successfully")
	}
}
