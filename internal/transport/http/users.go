package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stagedoor/api/internal/app"
	"github.com/stagedoor/api/internal/domain"
)

// UserService is the minimal interface the user endpoints need.
type UserService interface {
	Register(ctx context.Context, in app.RegisterInput) (domain.User, error)
	Login(ctx context.Context, in app.LoginInput) (string, domain.User, error)
	Profile(ctx context.Context, caller domain.Identity, userID string) (domain.User, error)
	ListUsers(ctx context.Context, caller domain.Identity) ([]domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Identity, userID string) error
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleRegister creates a user account.
func HandleRegister(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := svc.Register(r.Context(), app.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     domain.Role(req.Role),
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(user), "user registered successfully")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// HandleLogin verifies credentials and issues a bearer token.
func HandleLogin(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		token, user, err := svc.Login(r.Context(), app.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)}, "login successful")
	}
}

// HandleProfile returns a user's profile (self or admin).
func HandleProfile(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		user, err := svc.Profile(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user), "profile retrieved successfully")
	}
}

// HandleListUsers lists all users (admin only).
func HandleListUsers(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		users, err := svc.ListUsers(r.Context(), caller)
		if err != nil {
			respondError(w, err)
			return
		}
		resp := make([]userResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, resp, "users retrieved successfully")
	}
}

// HandleDeleteUser removes an account (self or admin).
func HandleDeleteUser(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerIdentity(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		if err := svc.DeleteUser(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, "user deleted successfully")
	}
}
