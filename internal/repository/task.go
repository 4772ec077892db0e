package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "client_id", "category_id", "assigned_fixxer_id",
	"task_title", "task_description", "location_x", "location_y", "location_address",
	"scheduled_at", "is_asap", "budget::text", "price_type", "open_to_offer", "type_of_task",
	"status", "offer_count", "completed_at", "cancelled_at", "cancellation_reason",
	"completion_requested_by", "completion_requested_at", "completion_rejection_reason",
	"created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.ClientID,
		&task.CategoryID,
		&task.AssignedFixxerID,
		&task.Title,
		&task.Description,
		&task.Location.X,
		&task.Location.Y,
		&task.LocationAddress,
		&task.ScheduledAt,
		&task.IsAsap,
		&task.Budget,
		&task.PriceType,
		&task.OpenToOffer,
		&task.TypeOfTask,
		&task.Status,
		&task.OfferCount,
		&task.CompletedAt,
		&task.CancelledAt,
		&task.CancellationReason,
		&task.CompletionRequestedBy,
		&task.CompletionRequestedAt,
		&task.CompletionRejectionReason,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
// Concurrent operations against the same task serialize on this lock.
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Create inserts a new task, returning it with generated fields populated.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.PriceType == "" {
		task.PriceType = domain.PriceTypeTotal
	}
	if task.TypeOfTask == "" {
		task.TypeOfTask = domain.TaskTypeInPerson
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPosted
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"client_id", "category_id", "task_title", "task_description",
			"location_x", "location_y", "location_address", "scheduled_at", "is_asap",
			"budget", "price_type", "open_to_offer", "type_of_task", "status",
		).
		Values(
			task.ClientID,
			task.CategoryID,
			task.Title,
			task.Description,
			task.Location.X,
			task.Location.Y,
			task.LocationAddress,
			task.ScheduledAt,
			task.IsAsap,
			task.Budget,
			task.PriceType,
			task.OpenToOffer,
			task.TypeOfTask,
			task.Status,
		).
		Suffix("RETURNING id, budget::text, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.ID, &task.Budget, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// TaskUpdate holds the client-editable fields for a posted task.
// Nil fields are left unchanged.
type TaskUpdate struct {
	Title           *string
	Description     *string
	CategoryID      *string
	Location        *domain.Point
	LocationAddress *string
	ScheduledAt     *time.Time
	IsAsap          *bool
	Budget          *string
	PriceType       *domain.PriceType
	OpenToOffer     *bool
	TypeOfTask      *domain.TaskType
}

// Update applies a partial update to a task that is still draft or posted.
func (r *TaskRepository) Update(ctx context.Context, taskID string, update TaskUpdate) error {
	qb := psql.Update("tasks").Set("updated_at", sq.Expr("NOW()"))

	if update.Title != nil {
		qb = qb.Set("task_title", *update.Title)
	}
	if update.Description != nil {
		qb = qb.Set("task_description", *update.Description)
	}
	if update.CategoryID != nil {
		qb = qb.Set("category_id", *update.CategoryID)
	}
	if update.Location != nil {
		qb = qb.Set("location_x", update.Location.X).Set("location_y", update.Location.Y)
	}
	if update.LocationAddress != nil {
		qb = qb.Set("location_address", *update.LocationAddress)
	}
	if update.ScheduledAt != nil {
		qb = qb.Set("scheduled_at", *update.ScheduledAt)
	}
	if update.IsAsap != nil {
		qb = qb.Set("is_asap", *update.IsAsap)
	}
	if update.Budget != nil {
		qb = qb.Set("budget", *update.Budget)
	}
	if update.PriceType != nil {
		qb = qb.Set("price_type", *update.PriceType)
	}
	if update.OpenToOffer != nil {
		qb = qb.Set("open_to_offer", *update.OpenToOffer)
	}
	if update.TypeOfTask != nil {
		qb = qb.Set("type_of_task", *update.TypeOfTask)
	}

	query, args, err := qb.
		Where(sq.Eq{
			"id":     taskID,
			"status": []domain.TaskStatus{domain.TaskStatusDraft, domain.TaskStatusPosted},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %s: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskModified
	}
	return nil
}

// transition applies a guarded status update within a transaction. The WHERE
// clause on the old status backs the row lock taken earlier in the
// transaction; zero affected rows means the guard failed.
func (r *TaskRepository) transition(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus, newStatus domain.TaskStatus,
	sets map[string]interface{},
) error {
	qb := psql.
		Update("tasks").
		Set("status", newStatus).
		Set("updated_at", sq.Expr("NOW()"))
	for column, value := range sets {
		qb = qb.Set(column, value)
	}

	query, args, err := qb.
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build transition query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskModified
	}
	return nil
}

// AssignFixxer moves a posted task to in_progress with the given fixxer.
func (r *TaskRepository) AssignFixxer(ctx context.Context, tx pgx.Tx, taskID, fixxerID string) error {
	return r.transition(ctx, tx, taskID, domain.TaskStatusPosted, domain.TaskStatusInProgress,
		map[string]interface{}{"assigned_fixxer_id": fixxerID})
}

// MarkPendingCompletion records the fixxer's completion request.
func (r *TaskRepository) MarkPendingCompletion(ctx context.Context, tx pgx.Tx, taskID, fixxerID string, at time.Time) error {
	return r.transition(ctx, tx, taskID, domain.TaskStatusInProgress, domain.TaskStatusPendingCompletion,
		map[string]interface{}{
			"completion_requested_by": fixxerID,
			"completion_requested_at": at,
		})
}

// MarkCompleted finalizes a pending_completion task.
func (r *TaskRepository) MarkCompleted(ctx context.Context, tx pgx.Tx, taskID string, at time.Time) error {
	return r.transition(ctx, tx, taskID, domain.TaskStatusPendingCompletion, domain.TaskStatusCompleted,
		map[string]interface{}{"completed_at": at})
}

// RevertToInProgress sends a pending_completion task back to in_progress,
// recording the rejection reason and clearing the completion-request fields.
func (r *TaskRepository) RevertToInProgress(ctx context.Context, tx pgx.Tx, taskID, reason string) error {
	return r.transition(ctx, tx, taskID, domain.TaskStatusPendingCompletion, domain.TaskStatusInProgress,
		map[string]interface{}{
			"completion_rejection_reason": reason,
			"completion_requested_by":     nil,
			"completion_requested_at":     nil,
		})
}

// MarkCancelled cancels a task from the given status, recording when and why.
func (r *TaskRepository) MarkCancelled(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	reason *string,
	at time.Time,
) error {
	return r.transition(ctx, tx, taskID, oldStatus, domain.TaskStatusCancelled,
		map[string]interface{}{
			"cancelled_at":        at,
			"cancellation_reason": reason,
		})
}

// IncrementOfferCount bumps the denormalized offer counter.
func (r *TaskRepository) IncrementOfferCount(ctx context.Context, tx pgx.Tx, taskID string) error {
	query, args, err := psql.
		Update("tasks").
		Set("offer_count", sq.Expr("offer_count + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build IncrementOfferCount query for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("increment offer count: %w", err)
	}
	return nil
}

// DecrementOfferCount lowers the denormalized offer counter, floored at zero.
func (r *TaskRepository) DecrementOfferCount(ctx context.Context, tx pgx.Tx, taskID string) error {
	query, args, err := psql.
		Update("tasks").
		Set("offer_count", sq.Expr("GREATEST(offer_count - 1, 0)")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build DecrementOfferCount query for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("decrement offer count: %w", err)
	}
	return nil
}

// Delete removes a task row. Offers, bookings and timeline rows cascade.
func (r *TaskRepository) Delete(ctx context.Context, tx pgx.Tx, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
