package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskNotOpen       = errors.New("task is no longer accepting offers")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTaskNotDeletable  = errors.New("task cannot be deleted")
	ErrTaskModified      = errors.New("task was modified concurrently")

	// Offer errors
	ErrOfferNotFound   = errors.New("offer not found")
	ErrOfferNotPending = errors.New("offer is no longer pending")
	ErrSelfOffer       = errors.New("cannot make an offer on your own task")
	ErrDuplicateOffer  = errors.New("a pending offer for this task already exists")

	// Booking errors
	ErrBookingNotFound = errors.New("booking not found")

	// Permission errors
	ErrForbidden = errors.New("permission denied")

	// Balance errors
	ErrInsufficientFixBits = errors.New("insufficient FixBits balance")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrInvalidToken = errors.New("invalid authentication token")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")

	// Validation errors
	ErrValidation  = errors.New("validation failed")
	ErrEmptyReason = errors.New("rejection reason is required")
)
