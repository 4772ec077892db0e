package service

import (
	"context"
	"errors"
	"time"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/repository"
)

// Roles a caller can hold on a task.
const (
	RoleClient = "client"
	RoleFixxer = "fixxer"
)

// TimelineEntry is one step of a task's reconstructed history, ready for
// display.
type TimelineEntry struct {
	Status    string
	Label     string
	Timestamp *time.Time
	Completed bool
	Reason    *string
}

// TaskStatusInfo aggregates everything a client or fixxer sees on the task
// status screen.
type TaskStatusInfo struct {
	Task             *domain.Task
	Category         *domain.Category
	Client           *domain.User
	Fixxer           *domain.User
	Booking          *domain.Booking
	AcceptedOffer    *domain.Offer
	Timeline         []TimelineEntry
	UserRole         string
	AvailableActions []string
}

// StatusService assembles the full status view of a task.
type StatusService struct {
	taskRepo     *repository.TaskRepository
	bookingRepo  *repository.BookingRepository
	offerRepo    *repository.OfferRepository
	timelineRepo *repository.TimelineRepository
	categoryRepo *repository.CategoryRepository
	userRepo     *repository.UserRepository
}

// NewStatusService creates a new StatusService.
func NewStatusService(
	taskRepo *repository.TaskRepository,
	bookingRepo *repository.BookingRepository,
	offerRepo *repository.OfferRepository,
	timelineRepo *repository.TimelineRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
) *StatusService {
	return &StatusService{
		taskRepo:     taskRepo,
		bookingRepo:  bookingRepo,
		offerRepo:    offerRepo,
		timelineRepo: timelineRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

// GetTaskStatus builds the status view for the given caller. Missing
// optional pieces (no booking yet, no accepted offer) are left nil.
func (s *StatusService) GetTaskStatus(ctx context.Context, taskID, userID string) (*TaskStatusInfo, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	info := &TaskStatusInfo{Task: task}

	if category, err := s.categoryRepo.GetByID(ctx, task.CategoryID); err == nil {
		info.Category = category
	}
	if client, err := s.userRepo.GetByID(ctx, task.ClientID); err == nil {
		info.Client = client
	}
	if task.AssignedFixxerID != nil {
		if fixxer, err := s.userRepo.GetByID(ctx, *task.AssignedFixxerID); err == nil {
			info.Fixxer = fixxer
		}
	}

	booking, err := s.bookingRepo.GetByTaskID(ctx, taskID)
	if err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
		return nil, err
	}
	info.Booking = booking

	accepted, err := s.offerRepo.GetAcceptedByTask(ctx, taskID)
	if err != nil && !errors.Is(err, domain.ErrOfferNotFound) {
		return nil, err
	}
	info.AcceptedOffer = accepted

	events, err := s.timelineRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	info.Timeline = buildTimeline(task, booking, events)
	info.UserRole = RoleFor(task, userID)
	info.AvailableActions = AvailableActions(task.Status, info.UserRole)

	return info, nil
}

// RoleFor resolves which side of the task the user is on, if any.
func RoleFor(task *domain.Task, userID string) string {
	switch {
	case task.IsOwnedByClient(userID):
		return RoleClient
	case task.IsAssignedTo(userID):
		return RoleFixxer
	default:
		return ""
	}
}

// AvailableActions lists what the user's role may do next given the task's
// current status.
func AvailableActions(status domain.TaskStatus, role string) []string {
	actions := []string{}

	switch role {
	case RoleClient:
		switch status {
		case domain.TaskStatusPosted:
			actions = append(actions, "view_offers", "cancel_task", "edit_task")
		case domain.TaskStatusInProgress:
			actions = append(actions, "cancel_task", "message_fixxer")
		case domain.TaskStatusPendingCompletion:
			actions = append(actions, "approve_completion", "reject_completion", "message_fixxer")
		case domain.TaskStatusCompleted:
			actions = append(actions, "leave_review")
		}
	case RoleFixxer:
		switch status {
		case domain.TaskStatusInProgress:
			actions = append(actions, "cancel_task", "complete_task", "message_client")
		case domain.TaskStatusPendingCompletion:
			actions = append(actions, "message_client")
		case domain.TaskStatusCompleted:
			actions = append(actions, "view_review")
		}
	}

	return actions
}

// buildTimeline reconstructs the display timeline from the task, its booking
// and the recorded events. Rejected completion requests show up as
// request/reject pairs, so long negotiations stay legible.
func buildTimeline(task *domain.Task, booking *domain.Booking, events []*domain.TimelineEvent) []TimelineEntry {
	createdAt := task.CreatedAt
	timeline := []TimelineEntry{{
		Status:    "posted",
		Label:     "Task Posted",
		Timestamp: &createdAt,
		Completed: true,
	}}

	if booking != nil {
		bookedAt := booking.CreatedAt
		timeline = append(timeline, TimelineEntry{
			Status:    "assigned",
			Label:     "Offer Accepted",
			Timestamp: &bookedAt,
			Completed: true,
		})
		if booking.StartedAt != nil {
			timeline = append(timeline, TimelineEntry{
				Status:    "in_progress",
				Label:     "Work Started",
				Timestamp: booking.StartedAt,
				Completed: true,
			})
		}
	}

	for _, event := range events {
		eventAt := event.CreatedAt
		switch event.Type {
		case domain.TimelineEventCompletionRequested:
			timeline = append(timeline, TimelineEntry{
				Status:    "pending_completion",
				Label:     "Completion Requested",
				Timestamp: &eventAt,
				Completed: true,
			})
		case domain.TimelineEventCompletionRejected:
			reason := event.Reason
			timeline = append(timeline, TimelineEntry{
				Status:    "completion_rejected",
				Label:     "Completion Rejected",
				Timestamp: &eventAt,
				Completed: true,
				Reason:    &reason,
			})
		}
	}

	switch task.Status {
	case domain.TaskStatusCompleted:
		timeline = append(timeline, TimelineEntry{
			Status:    "completed",
			Label:     "Task Completed",
			Timestamp: task.CompletedAt,
			Completed: true,
		})
	case domain.TaskStatusCancelled:
		reason := task.CancellationReason
		if reason == nil && booking != nil {
			reason = booking.CancellationReason
		}
		timeline = append(timeline, TimelineEntry{
			Status:    "cancelled",
			Label:     "Task Cancelled",
			Timestamp: task.CancelledAt,
			Completed: true,
			Reason:    reason,
		})
	}

	return timeline
}
