package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// NewRouter wires all endpoints behind the shared middleware stack.
func NewRouter(users UserService, events EventService, tickets TicketService, verifier TokenVerifier, corsOrigins []string, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Use(CORS(corsOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", HandleRegister(users))
			r.Post("/login", HandleLogin(users))
			r.Group(func(r chi.Router) {
				r.Use(Authenticate(verifier))
				r.Get("/", HandleListUsers(users))
				r.Get("/profile/{id}", HandleProfile(users))
				r.Delete("/{id}", HandleDeleteUser(users))
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", HandleListEvents(events))
			r.Get("/{id}", HandleGetEvent(events))
			r.Group(func(r chi.Router) {
				r.Use(Authenticate(verifier))
				r.Post("/", HandleCreateEvent(events))
				r.Get("/my-events", HandleMyEvents(events))
				r.Put("/{id}", HandleUpdateEvent(events))
				r.Delete("/{id}", HandleDeleteEvent(events))
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Use(Authenticate(verifier))
			r.Post("/register", HandleReserveTicket(tickets))
			r.Get("/", HandleHolderTickets(tickets))
			r.Get("/{id}", HandleGetTicket(tickets))
			r.Delete("/{id}", HandleCancelTicket(tickets))
			r.Patch("/{id}/payment", HandleUpdatePayment(tickets))
			r.Get("/event/{eventID}", HandleEventTickets(tickets))
		})
	})

	return r
}
