package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// ReplenishmentRepository handles the durable FixBits replenishment queue.
// Rows survive process restarts; the worker drains them once due.
type ReplenishmentRepository struct {
	pool *pgxpool.Pool
}

// NewReplenishmentRepository creates a new ReplenishmentRepository.
func NewReplenishmentRepository(pool *pgxpool.Pool) *ReplenishmentRepository {
	return &ReplenishmentRepository{pool: pool}
}

// Schedule inserts a delayed credit for a profile.
func (r *ReplenishmentRepository) Schedule(
	ctx context.Context,
	tx pgx.Tx,
	profileID string,
	amount int,
	dueAt time.Time,
) error {
	query, args, err := psql.
		Insert("fixbit_replenishments").
		Columns("profile_id", "amount", "due_at").
		Values(profileID, amount, dueAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Schedule query for replenishment: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("schedule replenishment: %w", err)
	}
	return nil
}

// ClaimDue locks up to limit due, unapplied replenishments for this
// transaction. SKIP LOCKED lets concurrent workers drain the queue without
// double-applying credits.
func (r *ReplenishmentRepository) ClaimDue(ctx context.Context, tx pgx.Tx, limit int) ([]*domain.FixBitReplenishment, error) {
	query, args, err := psql.
		Select("id", "profile_id", "amount", "due_at", "applied_at", "created_at").
		From("fixbit_replenishments").
		Where("due_at <= NOW()").
		Where(sq.Eq{"applied_at": nil}).
		OrderBy("due_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ClaimDue query: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due replenishments: %w", err)
	}
	defer rows.Close()

	var due []*domain.FixBitReplenishment
	for rows.Next() {
		var item domain.FixBitReplenishment
		err := rows.Scan(&item.ID, &item.ProfileID, &item.Amount, &item.DueAt, &item.AppliedAt, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan replenishment: %w", err)
		}
		due = append(due, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return due, nil
}

// MarkApplied stamps a replenishment as credited.
func (r *ReplenishmentRepository) MarkApplied(ctx context.Context, tx pgx.Tx, id string) error {
	query, args, err := psql.
		Update("fixbit_replenishments").
		Set("applied_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "applied_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkApplied query for replenishment %s: %w", id, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark replenishment applied: %w", err)
	}
	return nil
}
