package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Not found
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrOfferNotFound):
		return http.StatusNotFound, "OFFER_NOT_FOUND", message
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "BOOKING_NOT_FOUND", message
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, "CATEGORY_NOT_FOUND", message

	// Permission errors
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message
	case errors.Is(err, domain.ErrSelfOffer):
		return http.StatusForbidden, "SELF_OFFER", message
	case errors.Is(err, domain.ErrInsufficientFixBits):
		return http.StatusForbidden, "INSUFFICIENT_FIXBITS", message

	// State conflicts
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrTaskNotOpen):
		return http.StatusConflict, "TASK_NOT_OPEN", message
	case errors.Is(err, domain.ErrTaskNotDeletable):
		return http.StatusConflict, "TASK_NOT_DELETABLE", message
	case errors.Is(err, domain.ErrTaskModified):
		return http.StatusConflict, "TASK_MODIFIED", message
	case errors.Is(err, domain.ErrOfferNotPending):
		return http.StatusConflict, "OFFER_NOT_PENDING", message
	case errors.Is(err, domain.ErrDuplicateOffer):
		return http.StatusConflict, "DUPLICATE_OFFER", message

	// Auth errors
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "INVALID_TOKEN", message
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusUnauthorized, "USER_INACTIVE", message
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Validation errors
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrEmptyReason):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
