package domain

import "time"

// OfferStatus represents the status of a fixxer's bid.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

// IsTerminal returns true once the offer has been resolved.
func (s OfferStatus) IsTerminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected || s == OfferStatusWithdrawn
}

// Offer is a fixxer's priced bid on a task.
type Offer struct {
	ID                string
	TaskID            string
	FixxerID          string
	Price             string
	Message           *string
	EstimatedDuration *string
	Status            OfferStatus
	RespondedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOwnedBy checks if the offer was submitted by the given fixxer.
func (o *Offer) IsOwnedBy(userID string) bool {
	return o.FixxerID == userID
}
