package helpers

import (
	"errors"
	"net/http"

	"boothsale/internal/domain"
)

// WriteDomainError maps a service error to the API envelope. Validation and
// state errors surface with their message; anything unrecognized is treated
// as an internal fault and reported generically.
func WriteDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		WriteJSONErrorDetails(w, http.StatusConflict, ErrCodeInsufficientStock, stockErr.Error(), stockErr.Lines)
		return
	}
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrEventNotOpen):
		WriteJSONError(w, http.StatusConflict, ErrCodeEventNotOpen, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		WriteJSONError(w, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		WriteJSONError(w, http.StatusConflict, ErrCodeInsufficientStock, err.Error())
	case errors.Is(err, domain.ErrTimeout):
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeTimeout, "the store is busy, please retry")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	default:
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// IsInternal reports whether err falls outside the recognized domain error
// classes, so callers can log it at error level.
func IsInternal(err error) bool {
	for _, sentinel := range []error{
		domain.ErrInvalidArgument, domain.ErrNotFound, domain.ErrConflict,
		domain.ErrEventNotOpen, domain.ErrInvalidStateTransition,
		domain.ErrInsufficientStock, domain.ErrTimeout,
		domain.ErrUnauthorized, domain.ErrForbidden,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
