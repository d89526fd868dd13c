package http

import (
	"errors"
	"net/http"

	"github.com/stagedoor/api/internal/domain"
)

// respondError maps a service error to the envelope with an appropriate
// HTTP status. Internal detail never leaks: unknown errors become a
// generic 500.
func respondError(w http.ResponseWriter, err error) {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		writeError(w, http.StatusConflict, capErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrPastEvent),
		errors.Is(err, domain.ErrInvalidPaymentStatus),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidStartsAt),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "not authorized to perform this action")
	case errors.Is(err, domain.ErrWindowClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
