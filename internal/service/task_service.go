package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/notify"
	"github.com/fixxhq/fixxcore/internal/repository"
)

const (
	minTitleLength       = 10
	minDescriptionLength = 25
)

// TaskService coordinates task CRUD and lifecycle transitions.
type TaskService struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	offerRepo    *repository.OfferRepository
	bookingRepo  *repository.BookingRepository
	timelineRepo *repository.TimelineRepository
	categoryRepo *repository.CategoryRepository
	lifecycle    *Lifecycle
	notifier     notify.Notifier
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	offerRepo *repository.OfferRepository,
	bookingRepo *repository.BookingRepository,
	timelineRepo *repository.TimelineRepository,
	categoryRepo *repository.CategoryRepository,
	notifier notify.Notifier,
) *TaskService {
	return &TaskService{
		pool:         pool,
		taskRepo:     taskRepo,
		offerRepo:    offerRepo,
		bookingRepo:  bookingRepo,
		timelineRepo: timelineRepo,
		categoryRepo: categoryRepo,
		lifecycle:    NewLifecycle(),
		notifier:     notifier,
	}
}

// CreateTaskInput holds the fields a client submits when posting a task.
type CreateTaskInput struct {
	CategoryID      string
	Title           string
	Description     string
	Location        domain.Point
	LocationAddress *string
	ScheduledAt     *time.Time
	IsAsap          bool
	Budget          string
	PriceType       domain.PriceType
	OpenToOffer     bool
	TypeOfTask      domain.TaskType
}

// validateBudget checks that a money string is a positive number. The value
// is stored as NUMERIC and never computed on, so the text form is kept.
func validateBudget(budget string) error {
	v, err := strconv.ParseFloat(budget, 64)
	if err != nil {
		return fmt.Errorf("%w: budget %q is not a number", domain.ErrValidation, budget)
	}
	if v <= 0 {
		return fmt.Errorf("%w: budget must be a positive number", domain.ErrValidation)
	}
	return nil
}

func (s *TaskService) validateCreateInput(ctx context.Context, input *CreateTaskInput) error {
	if len(strings.TrimSpace(input.Title)) < minTitleLength {
		return fmt.Errorf("%w: task title must be at least %d characters", domain.ErrValidation, minTitleLength)
	}
	if len(strings.TrimSpace(input.Description)) < minDescriptionLength {
		return fmt.Errorf("%w: task description must be at least %d characters", domain.ErrValidation, minDescriptionLength)
	}
	if err := validateBudget(input.Budget); err != nil {
		return err
	}
	if input.PriceType != "" && !input.PriceType.IsValid() {
		return fmt.Errorf("%w: invalid price type %q", domain.ErrValidation, input.PriceType)
	}
	if input.TypeOfTask != "" && !input.TypeOfTask.IsValid() {
		return fmt.Errorf("%w: invalid task type %q", domain.ErrValidation, input.TypeOfTask)
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return err
	}
	return nil
}

// CreateTask validates and posts a new task for the client. Tasks go
// straight to posted; there is no separate publish step.
func (s *TaskService) CreateTask(ctx context.Context, clientID string, input CreateTaskInput) (*domain.Task, error) {
	if err := s.validateCreateInput(ctx, &input); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ClientID:        clientID,
		CategoryID:      input.CategoryID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Location:        input.Location,
		LocationAddress: input.LocationAddress,
		ScheduledAt:     input.ScheduledAt,
		IsAsap:          input.IsAsap,
		Budget:          input.Budget,
		PriceType:       input.PriceType,
		OpenToOffer:     input.OpenToOffer,
		TypeOfTask:      input.TypeOfTask,
		Status:          domain.TaskStatusPosted,
	}

	task, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"client_id", clientID,
		"category_id", task.CategoryID,
	)

	if err := s.notifier.SendPushToAllExcept(ctx, clientID, "New Task Available!", task.Title,
		map[string]string{"taskId": task.ID}); err != nil {
		slog.Error("failed to broadcast new task", "task_id", task.ID, "error", err)
	}

	return task, nil
}

// UpdateTask applies a client's partial edit to a draft or posted task.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, clientID string, update repository.TaskUpdate) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanUpdate(task, clientID); err != nil {
		return nil, err
	}

	if update.Title != nil && len(strings.TrimSpace(*update.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: task title must be at least %d characters", domain.ErrValidation, minTitleLength)
	}
	if update.Description != nil && len(strings.TrimSpace(*update.Description)) < minDescriptionLength {
		return nil, fmt.Errorf("%w: task description must be at least %d characters", domain.ErrValidation, minDescriptionLength)
	}
	if update.Budget != nil {
		if err := validateBudget(*update.Budget); err != nil {
			return nil, err
		}
	}
	if update.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Update(ctx, taskID, update); err != nil {
		return nil, err
	}

	slog.Info("task updated", "task_id", taskID, "client_id", clientID)

	return s.taskRepo.GetByID(ctx, taskID)
}

// CancelPostedTask cancels a task that has no booking yet. The reason is
// optional here; only completion rejection requires one.
func (s *TaskService) CancelPostedTask(ctx context.Context, taskID, clientID string, reason *string) (*domain.Task, error) {
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

	if err := s.lifecycle.CanCancelPosted(task, clientID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.taskRepo.MarkCancelled(ctx, tx, taskID, task.Status, reason, now); err != nil {
		return nil, err
	}

	oldStatus := task.Status
	newStatus := domain.TaskStatusCancelled
	event := &domain.TimelineEvent{
		TaskID:    taskID,
		ActorID:   &clientID,
		Type:      domain.TimelineEventCancelled,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if reason != nil {
		event.Reason = *reason
	}
	if err := s.appendEventAndCommit(ctx, tx, event); err != nil {
		return nil, err
	}

	slog.Info("task cancelled",
		"task_id", taskID,
		"client_id", clientID,
		"old_status", oldStatus,
	)

	return s.taskRepo.GetByID(ctx, taskID)
}

// CancelOngoingTask cancels an in_progress task. Either party may cancel;
// the booking is cancelled in the same transaction and records who pulled
// out. Tasks in pending_completion cannot be cancelled; the client must
// reject the completion request first.
func (s *TaskService) CancelOngoingTask(ctx context.Context, taskID, userID string, reason *string) (*domain.Task, error) {
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

	if err := s.lifecycle.CanCancelOngoing(task, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.taskRepo.MarkCancelled(ctx, tx, taskID, domain.TaskStatusInProgress, reason, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.MarkCancelled(ctx, tx, taskID, reason, userID, now); err != nil {
		return nil, err
	}

	oldStatus := domain.TaskStatusInProgress
	newStatus := domain.TaskStatusCancelled
	event := &domain.TimelineEvent{
		TaskID:    taskID,
		ActorID:   &userID,
		Type:      domain.TimelineEventCancelled,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if reason != nil {
		event.Reason = *reason
	}
	if err := s.appendEventAndCommit(ctx, tx, event); err != nil {
		return nil, err
	}

	slog.Info("ongoing task cancelled",
		"task_id", taskID,
		"cancelled_by", userID,
	)

	s.notifyCancellation(ctx, task, userID, reason)

	return s.taskRepo.GetByID(ctx, taskID)
}

// notifyCancellation tells the other party the work was called off.
func (s *TaskService) notifyCancellation(ctx context.Context, task *domain.Task, cancelledBy string, reason *string) {
	var recipient string
	if task.IsOwnedByClient(cancelledBy) && task.AssignedFixxerID != nil {
		recipient = *task.AssignedFixxerID
	} else if task.IsAssignedTo(cancelledBy) {
		recipient = task.ClientID
	} else {
		return
	}

	body := fmt.Sprintf("The task %q has been cancelled.", task.Title)
	if reason != nil && *reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, *reason)
	}
	data := map[string]string{
		"taskId":      task.ID,
		"type":        "task_cancelled",
		"cancelledBy": cancelledBy,
	}
	if err := s.notifier.SendPush(ctx, recipient, "Task Cancelled", body, data); err != nil {
		slog.Error("failed to send cancellation notification", "task_id", task.ID, "error", err)
	}
}

// DeleteTask removes a task and its dependent rows. Allowed for the client
// on draft tasks, posted tasks that never got a booking, and tasks in a
// terminal status.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, clientID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}

	hasBooking, err := s.bookingRepo.ExistsByTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.lifecycle.CanDelete(task, clientID, hasBooking); err != nil {
		return err
	}

	// Offers, bookings and timeline rows go with the task via FK cascades.
	if err := s.taskRepo.Delete(ctx, tx, taskID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task deleted", "task_id", taskID, "client_id", clientID)
	return nil
}

// GetTask retrieves a single task.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

// ListLatest returns the newest posted tasks, paginated.
func (s *TaskService) ListLatest(ctx context.Context, limit, offset int) ([]*domain.Task, int, error) {
	return s.taskRepo.List(ctx, repository.TaskListFilters{
		Statuses: []domain.TaskStatus{domain.TaskStatusPosted},
		Limit:    limit,
		Offset:   offset,
	})
}

// ListMyTasks returns the tasks the client posted, newest first.
func (s *TaskService) ListMyTasks(ctx context.Context, clientID string, limit, offset int) ([]*domain.Task, int, error) {
	return s.taskRepo.List(ctx, repository.TaskListFilters{
		ClientID: &clientID,
		Limit:    limit,
		Offset:   offset,
	})
}

// ListAssignedTasks returns the tasks assigned to the fixxer, newest first.
func (s *TaskService) ListAssignedTasks(ctx context.Context, fixxerID string, limit, offset int) ([]*domain.Task, int, error) {
	return s.taskRepo.List(ctx, repository.TaskListFilters{
		AssignedFixxerID: &fixxerID,
		Limit:            limit,
		Offset:           offset,
	})
}

// appendEventAndCommit persists a timeline event within the transaction,
// then commits.
func (s *TaskService) appendEventAndCommit(ctx context.Context, tx pgx.Tx, event *domain.TimelineEvent) error {
	if err := s.timelineRepo.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("create timeline event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
