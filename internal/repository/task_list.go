package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// TaskListFilters holds the supported filters for task listing.
type TaskListFilters struct {
	Statuses         []domain.TaskStatus // Optional: filter by status
	ClientID         *string             // Optional: tasks posted by this client
	AssignedFixxerID *string             // Optional: tasks assigned to this fixxer
	CategoryID       *string             // Optional: filter by category
	Limit            int                 // Required: page size
	Offset           int                 // Required: page offset
}

func (f TaskListFilters) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	if len(f.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": f.Statuses})
	}
	if f.ClientID != nil {
		qb = qb.Where(sq.Eq{"client_id": *f.ClientID})
	}
	if f.AssignedFixxerID != nil {
		qb = qb.Where(sq.Eq{"assigned_fixxer_id": *f.AssignedFixxerID})
	}
	if f.CategoryID != nil {
		qb = qb.Where(sq.Eq{"category_id": *f.CategoryID})
	}
	return qb
}

// List retrieves tasks with filters and pagination, newest first.
// Returns the page of tasks plus the total count without pagination.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	qb := filters.apply(psql.Select(taskColumns...).From("tasks")).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := filters.apply(psql.Select("COUNT(*)").From("tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}
