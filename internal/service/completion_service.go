package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/notify"
	"github.com/fixxhq/fixxcore/internal/repository"
)

// CompletionService implements the two-party completion handshake: the
// assigned fixxer requests completion, the client approves or rejects.
type CompletionService struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	bookingRepo  *repository.BookingRepository
	timelineRepo *repository.TimelineRepository
	profileRepo  *repository.ProfileRepository
	userRepo     *repository.UserRepository
	lifecycle    *Lifecycle
	notifier     notify.Notifier
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	bookingRepo *repository.BookingRepository,
	timelineRepo *repository.TimelineRepository,
	profileRepo *repository.ProfileRepository,
	userRepo *repository.UserRepository,
	notifier notify.Notifier,
) *CompletionService {
	return &CompletionService{
		pool:         pool,
		taskRepo:     taskRepo,
		bookingRepo:  bookingRepo,
		timelineRepo: timelineRepo,
		profileRepo:  profileRepo,
		userRepo:     userRepo,
		lifecycle:    NewLifecycle(),
		notifier:     notifier,
	}
}

// RequestCompletion marks the fixxer's work as done and asks the client to
// confirm. The task moves to pending_completion.
func (s *CompletionService) RequestCompletion(ctx context.Context, taskID, fixxerID string) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanRequestCompletion(task, fixxerID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.taskRepo.MarkPendingCompletion(ctx, tx, taskID, fixxerID, now); err != nil {
		return nil, err
	}

	oldStatus := domain.TaskStatusInProgress
	newStatus := domain.TaskStatusPendingCompletion
	event := &domain.TimelineEvent{
		TaskID:    taskID,
		ActorID:   &fixxerID,
		Type:      domain.TimelineEventCompletionRequested,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if err := s.timelineRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("create timeline event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("completion requested", "task_id", taskID, "fixxer_id", fixxerID)

	fixxerName := "Your Fixxer"
	if fixxer, err := s.userRepo.GetByID(ctx, fixxerID); err == nil {
		fixxerName = fixxer.Name
	}
	body := fmt.Sprintf("%s has marked %q as complete. Please review and approve.", fixxerName, task.Title)
	data := map[string]string{"taskId": taskID, "type": "completion_requested"}
	if err := s.notifier.SendPush(ctx, task.ClientID, "Task Completion Requested", body, data); err != nil {
		slog.Error("failed to send completion requested notification", "task_id", taskID, "error", err)
	}

	return s.taskRepo.GetByID(ctx, taskID)
}

// ApproveCompletion finalizes the task. The booking is completed in the same
// transaction; the fixxer's completed-tasks counter is bumped if a profile
// exists.
func (s *CompletionService) ApproveCompletion(ctx context.Context, taskID, clientID string) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanResolveCompletion(task, clientID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.taskRepo.MarkCompleted(ctx, tx, taskID, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.MarkCompleted(ctx, tx, taskID, now); err != nil {
		return nil, err
	}

	if task.AssignedFixxerID != nil {
		bumped, err := s.profileRepo.IncrementCompletedCount(ctx, tx, *task.AssignedFixxerID)
		if err != nil {
			return nil, err
		}
		if !bumped {
			slog.Warn("fixxer has no profile, completed count not bumped",
				"task_id", taskID,
				"fixxer_id", *task.AssignedFixxerID,
			)
		}
	}

	oldStatus := domain.TaskStatusPendingCompletion
	newStatus := domain.TaskStatusCompleted
	event := &domain.TimelineEvent{
		TaskID:    taskID,
		ActorID:   &clientID,
		Type:      domain.TimelineEventCompleted,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if err := s.timelineRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("create timeline event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task completed", "task_id", taskID, "client_id", clientID)

	if task.AssignedFixxerID != nil {
		clientName := "The client"
		if client, err := s.userRepo.GetByID(ctx, clientID); err == nil {
			clientName = client.Name
		}
		body := fmt.Sprintf("%s has approved the completion of %q. Great job!", clientName, task.Title)
		data := map[string]string{"taskId": taskID, "type": "completion_approved"}
		if err := s.notifier.SendPush(ctx, *task.AssignedFixxerID, "Task Completed!", body, data); err != nil {
			slog.Error("failed to send completion approved notification", "task_id", taskID, "error", err)
		}
	}

	return s.taskRepo.GetByID(ctx, taskID)
}

// RejectCompletion sends the task back to in_progress. A non-empty reason is
// required; it is stored on the task and shown to the fixxer.
func (s *CompletionService) RejectCompletion(ctx context.Context, taskID, clientID, reason string) (*domain.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrEmptyReason
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanResolveCompletion(task, clientID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.RevertToInProgress(ctx, tx, taskID, reason); err != nil {
		return nil, err
	}

	oldStatus := domain.TaskStatusPendingCompletion
	newStatus := domain.TaskStatusInProgress
	event := &domain.TimelineEvent{
		TaskID:    taskID,
		ActorID:   &clientID,
		Type:      domain.TimelineEventCompletionRejected,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
		Reason:    reason,
	}
	if err := s.timelineRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("create timeline event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("completion rejected", "task_id", taskID, "client_id", clientID, "reason", reason)

	if task.AssignedFixxerID != nil {
		clientName := "The client"
		if client, err := s.userRepo.GetByID(ctx, clientID); err == nil {
			clientName = client.Name
		}
		body := fmt.Sprintf("%s has rejected the completion request for %q. Reason: %s", clientName, task.Title, reason)
		data := map[string]string{"taskId": taskID, "reason": reason, "type": "completion_rejected"}
		if err := s.notifier.SendPush(ctx, *task.AssignedFixxerID, "Completion Request Rejected", body, data); err != nil {
			slog.Error("failed to send completion rejected notification", "task_id", taskID, "error", err)
		}
	}

	return s.taskRepo.GetByID(ctx, taskID)
}
