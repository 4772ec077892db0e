package dto

import (
	"time"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/repository"
	"github.com/fixxhq/fixxcore/internal/service"
)

// PointResponse is a location coordinate in a response body.
type PointResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID                        string        `json:"id"`
	ClientID                  string        `json:"client_id"`
	CategoryID                string        `json:"category_id"`
	AssignedFixxerID          *string       `json:"assigned_fixxer_id"`
	Title                     string        `json:"title"`
	Description               string        `json:"description"`
	Location                  PointResponse `json:"location"`
	LocationAddress           *string       `json:"location_address"`
	ScheduledAt               *time.Time    `json:"scheduled_at"`
	IsAsap                    bool          `json:"is_asap"`
	Budget                    string        `json:"budget"`
	PriceType                 string        `json:"price_type"`
	OpenToOffer               bool          `json:"open_to_offer"`
	TypeOfTask                string        `json:"type_of_task"`
	Status                    string        `json:"status"`
	OfferCount                int           `json:"offer_count"`
	CompletedAt               *time.Time    `json:"completed_at,omitempty"`
	CancelledAt               *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason        *string       `json:"cancellation_reason,omitempty"`
	CompletionRequestedBy     *string       `json:"completion_requested_by,omitempty"`
	CompletionRequestedAt     *time.Time    `json:"completion_requested_at,omitempty"`
	CompletionRejectionReason *string       `json:"completion_rejection_reason,omitempty"`
	CreatedAt                 time.Time     `json:"created_at"`
	UpdatedAt                 time.Time     `json:"updated_at"`
}

// TasksListResponse represents a paginated task list.
type TasksListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// OfferResponse represents an offer in API responses.
type OfferResponse struct {
	ID                string     `json:"id"`
	TaskID            string     `json:"task_id"`
	FixxerID          string     `json:"fixxer_id"`
	Price             string     `json:"price"`
	Message           *string    `json:"message"`
	EstimatedDuration *string    `json:"estimated_duration"`
	Status            string     `json:"status"`
	RespondedAt       *time.Time `json:"responded_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TaskOfferResponse is an offer with its fixxer's public snapshot, shown to
// the task's client.
type TaskOfferResponse struct {
	OfferResponse
	FixxerName        string  `json:"fixxer_name"`
	FixxerProfileURL  *string `json:"fixxer_profile_url"`
	CompletedTasks    int     `json:"completed_tasks"`
	FixxerIsAvailable bool    `json:"fixxer_is_available"`
}

// MyOfferResponse is an offer with a snapshot of its task, shown to the
// offering fixxer.
type MyOfferResponse struct {
	OfferResponse
	TaskTitle  string `json:"task_title"`
	TaskStatus string `json:"task_status"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID                 string     `json:"id"`
	TaskID             string     `json:"task_id"`
	ClientID           string     `json:"client_id"`
	FixxerID           string     `json:"fixxer_id"`
	OfferID            *string    `json:"offer_id"`
	AgreedPrice        string     `json:"agreed_price"`
	Status             string     `json:"status"`
	StartedAt          *time.Time `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	ProfileURL *string `json:"profile_url"`
}

// CategoryResponse represents a task category.
type CategoryResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order"`
}

// TimelineEntryResponse is one step of a task's reconstructed history.
type TimelineEntryResponse struct {
	Status    string     `json:"status"`
	Label     string     `json:"label"`
	Timestamp *time.Time `json:"timestamp"`
	Completed bool       `json:"completed"`
	Reason    *string    `json:"reason,omitempty"`
}

// TaskStatusResponse is the full status payload for GET /tasks/{id}/status.
type TaskStatusResponse struct {
	Task             TaskResponse            `json:"task"`
	Category         *CategoryResponse       `json:"category"`
	Client           *UserSummary            `json:"client"`
	Fixxer           *UserSummary            `json:"fixxer"`
	Booking          *BookingResponse        `json:"booking"`
	AcceptedOffer    *OfferResponse          `json:"accepted_offer"`
	Timeline         []TimelineEntryResponse `json:"timeline"`
	UserRole         *string                 `json:"user_role"`
	AvailableActions []string                `json:"available_actions"`
}

// UserStatsResponse is the payload for GET /users/me/stats.
type UserStatsResponse struct {
	TasksPosted            int `json:"tasks_posted"`
	TasksCompletedAsClient int `json:"tasks_completed_as_client"`
	OffersMade             int `json:"offers_made"`
	TasksCompletedAsFixxer int `json:"tasks_completed_as_fixxer"`
	FixBits                int `json:"fix_bits"`
}

// ToTaskResponse converts a domain.Task to its API representation.
func ToTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                        task.ID,
		ClientID:                  task.ClientID,
		CategoryID:                task.CategoryID,
		AssignedFixxerID:          task.AssignedFixxerID,
		Title:                     task.Title,
		Description:               task.Description,
		Location:                  PointResponse{X: task.Location.X, Y: task.Location.Y},
		LocationAddress:           task.LocationAddress,
		ScheduledAt:               task.ScheduledAt,
		IsAsap:                    task.IsAsap,
		Budget:                    task.Budget,
		PriceType:                 string(task.PriceType),
		OpenToOffer:               task.OpenToOffer,
		TypeOfTask:                string(task.TypeOfTask),
		Status:                    string(task.Status),
		OfferCount:                task.OfferCount,
		CompletedAt:               task.CompletedAt,
		CancelledAt:               task.CancelledAt,
		CancellationReason:        task.CancellationReason,
		CompletionRequestedBy:     task.CompletionRequestedBy,
		CompletionRequestedAt:     task.CompletionRequestedAt,
		CompletionRejectionReason: task.CompletionRejectionReason,
		CreatedAt:                 task.CreatedAt,
		UpdatedAt:                 task.UpdatedAt,
	}
}

// ToTasksListResponse converts a task page to its API representation.
func ToTasksListResponse(tasks []*domain.Task, total, limit, offset int) TasksListResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, ToTaskResponse(task))
	}
	return TasksListResponse{Tasks: out, Total: total, Limit: limit, Offset: offset}
}

// ToOfferResponse converts a domain.Offer to its API representation.
func ToOfferResponse(offer *domain.Offer) OfferResponse {
	return OfferResponse{
		ID:                offer.ID,
		TaskID:            offer.TaskID,
		FixxerID:          offer.FixxerID,
		Price:             offer.Price,
		Message:           offer.Message,
		EstimatedDuration: offer.EstimatedDuration,
		Status:            string(offer.Status),
		RespondedAt:       offer.RespondedAt,
		CreatedAt:         offer.CreatedAt,
		UpdatedAt:         offer.UpdatedAt,
	}
}

// ToTaskOfferResponses converts offers with fixxer snapshots.
func ToTaskOfferResponses(items []repository.OfferWithFixxer) []TaskOfferResponse {
	out := make([]TaskOfferResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TaskOfferResponse{
			OfferResponse:     ToOfferResponse(item.Offer),
			FixxerName:        item.FixxerName,
			FixxerProfileURL:  item.FixxerProfileURL,
			CompletedTasks:    item.CompletedTasks,
			FixxerIsAvailable: item.FixxerIsAvailable,
		})
	}
	return out
}

// ToMyOfferResponses converts offers with task snapshots.
func ToMyOfferResponses(items []repository.OfferWithTask) []MyOfferResponse {
	out := make([]MyOfferResponse, 0, len(items))
	for _, item := range items {
		out = append(out, MyOfferResponse{
			OfferResponse: ToOfferResponse(item.Offer),
			TaskTitle:     item.TaskTitle,
			TaskStatus:    string(item.TaskStatus),
		})
	}
	return out
}

// ToBookingResponse converts a domain.Booking to its API representation.
func ToBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                 booking.ID,
		TaskID:             booking.TaskID,
		ClientID:           booking.ClientID,
		FixxerID:           booking.FixxerID,
		OfferID:            booking.OfferID,
		AgreedPrice:        booking.AgreedPrice,
		Status:             string(booking.Status),
		StartedAt:          booking.StartedAt,
		CompletedAt:        booking.CompletedAt,
		CancelledAt:        booking.CancelledAt,
		CancellationReason: booking.CancellationReason,
		CancelledBy:        booking.CancelledBy,
		CreatedAt:          booking.CreatedAt,
	}
}

// ToUserSummary converts a domain.User to its public snapshot.
func ToUserSummary(user *domain.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		ProfileURL: user.ProfileURL,
	}
}

// ToCategoryResponse converts a domain.Category to its API representation.
func ToCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:           category.ID,
		Name:         category.Name,
		Description:  category.Description,
		DisplayOrder: category.DisplayOrder,
	}
}

// ToTaskStatusResponse converts the assembled status info to its API
// representation.
func ToTaskStatusResponse(info *service.TaskStatusInfo) TaskStatusResponse {
	resp := TaskStatusResponse{
		Task:             ToTaskResponse(info.Task),
		Client:           ToUserSummary(info.Client),
		Fixxer:           ToUserSummary(info.Fixxer),
		AvailableActions: info.AvailableActions,
	}
	if info.Category != nil {
		c := ToCategoryResponse(info.Category)
		resp.Category = &c
	}
	if info.Booking != nil {
		b := ToBookingResponse(info.Booking)
		resp.Booking = &b
	}
	if info.AcceptedOffer != nil {
		o := ToOfferResponse(info.AcceptedOffer)
		resp.AcceptedOffer = &o
	}
	if info.UserRole != "" {
		role := info.UserRole
		resp.UserRole = &role
	}
	resp.Timeline = make([]TimelineEntryResponse, 0, len(info.Timeline))
	for _, entry := range info.Timeline {
		resp.Timeline = append(resp.Timeline, TimelineEntryResponse{
			Status:    entry.Status,
			Label:     entry.Label,
			Timestamp: entry.Timestamp,
			Completed: entry.Completed,
			Reason:    entry.Reason,
		})
	}
	return resp
}

// ToUserStatsResponse converts repository stats to the API representation.
func ToUserStatsResponse(stats *repository.UserStats) UserStatsResponse {
	return UserStatsResponse{
		TasksPosted:            stats.TasksPosted,
		TasksCompletedAsClient: stats.TasksCompletedAsClient,
		OffersMade:             stats.OffersMade,
		TasksCompletedAsFixxer: stats.TasksCompletedAsFixxer,
		FixBits:                stats.FixBits,
	}
}
