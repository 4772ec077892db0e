package dto

import "time"

// PointRequest is a location coordinate in a request body.
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	CategoryID      string        `json:"category_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Location        *PointRequest `json:"location"`
	LocationAddress *string       `json:"location_address,omitempty"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"`
	IsAsap          bool          `json:"is_asap,omitempty"`
	Budget          string        `json:"budget"`
	PriceType       string        `json:"price_type,omitempty"`
	OpenToOffer     bool          `json:"open_to_offer,omitempty"`
	TypeOfTask      string        `json:"type_of_task,omitempty"`
}

// UpdateTaskRequest represents the request body for PATCH /tasks/{id}.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	CategoryID      *string       `json:"category_id,omitempty"`
	Title           *string       `json:"title,omitempty"`
	Description     *string       `json:"description,omitempty"`
	Location        *PointRequest `json:"location,omitempty"`
	LocationAddress *string       `json:"location_address,omitempty"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"`
	IsAsap          *bool         `json:"is_asap,omitempty"`
	Budget          *string       `json:"budget,omitempty"`
	PriceType       *string       `json:"price_type,omitempty"`
	OpenToOffer     *bool         `json:"open_to_offer,omitempty"`
	TypeOfTask      *string       `json:"type_of_task,omitempty"`
}

// CancelTaskRequest represents the request body for the cancel endpoints.
// The reason is optional except when rejecting a completion request.
type CancelTaskRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CreateOfferRequest represents the request body for POST /tasks/{id}/offers.
type CreateOfferRequest struct {
	Price             string  `json:"price"`
	Message           *string `json:"message,omitempty"`
	EstimatedDuration *string `json:"estimated_duration,omitempty"`
}

// RejectCompletionRequest represents the request body for
// POST /tasks/{id}/reject-completion.
type RejectCompletionRequest struct {
	Reason string `json:"reason"`
}
