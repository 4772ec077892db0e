package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// TimelineRepository handles database operations for task timeline events.
// Events are append-only: rows are inserted and read, never updated.
type TimelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository creates a new TimelineRepository.
func NewTimelineRepository(pool *pgxpool.Pool) *TimelineRepository {
	return &TimelineRepository{pool: pool}
}

// Create appends a timeline event within the transaction of the transition
// it records.
func (r *TimelineRepository) Create(ctx context.Context, tx pgx.Tx, event *domain.TimelineEvent) error {
	query, args, err := psql.
		Insert("task_timeline").
		Columns("task_id", "actor_id", "type", "old_status", "new_status", "reason").
		Values(event.TaskID, event.ActorID, event.Type, event.OldStatus, event.NewStatus, event.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for timeline event: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create timeline event: %w", err)
	}

	return nil
}

// ListByTask retrieves all timeline events for a task in insertion order.
func (r *TimelineRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.TimelineEvent, error) {
	query, args, err := psql.
		Select("id", "task_id", "actor_id", "type", "old_status", "new_status", "reason", "created_at").
		From("task_timeline").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByTask query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline events: %w", err)
	}
	defer rows.Close()

	var events []*domain.TimelineEvent
	for rows.Next() {
		var event domain.TimelineEvent
		err := rows.Scan(
			&event.ID,
			&event.TaskID,
			&event.ActorID,
			&event.Type,
			&event.OldStatus,
			&event.NewStatus,
			&event.Reason,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}
