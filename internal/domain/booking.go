package domain

import "time"

// BookingStatus mirrors the task's operational states.
type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Booking is the contractual record created once an offer is accepted.
// Exactly one booking exists per task, and its agreed price equals the
// accepted offer's price at creation time.
type Booking struct {
	ID                 string
	TaskID             string
	ClientID           string
	FixxerID           string
	OfferID            *string
	AgreedPrice        string
	Status             BookingStatus
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason *string
	CancelledBy        *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
