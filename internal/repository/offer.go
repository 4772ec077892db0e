package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// offerColumns is the shared list of columns for offer queries.
var offerColumns = []string{
	"id", "task_id", "fixxer_id", "price::text", "message", "estimated_duration",
	"status", "responded_at", "created_at", "updated_at",
}

// OfferRepository handles database operations for offers.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository creates a new OfferRepository.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var offer domain.Offer
	err := row.Scan(
		&offer.ID,
		&offer.TaskID,
		&offer.FixxerID,
		&offer.Price,
		&offer.Message,
		&offer.EstimatedDuration,
		&offer.Status,
		&offer.RespondedAt,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("scan offer: %w", err)
	}
	return &offer, nil
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, offerID string) (*domain.Offer, error) {
	query, args, err := psql.
		Select(offerColumns...).
		From("offers").
		Where(sq.Eq{"id": offerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for offer: %w", err)
	}

	return scanOffer(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDTx retrieves an offer by ID within a transaction, after the task
// row lock has been taken.
func (r *OfferRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, offerID string) (*domain.Offer, error) {
	query, args, err := psql.
		Select(offerColumns...).
		From("offers").
		Where(sq.Eq{"id": offerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDTx query for offer %s: %w", offerID, err)
	}

	return scanOffer(tx.QueryRow(ctx, query, args...))
}

// Create inserts a new pending offer within a transaction. The partial
// unique index on (task_id, fixxer_id) WHERE pending backs the
// one-live-bid-per-fixxer rule under concurrency.
func (r *OfferRepository) Create(ctx context.Context, tx pgx.Tx, offer *domain.Offer) (*domain.Offer, error) {
	if offer.Status == "" {
		offer.Status = domain.OfferStatusPending
	}

	query, args, err := psql.
		Insert("offers").
		Columns("task_id", "fixxer_id", "price", "message", "estimated_duration", "status").
		Values(offer.TaskID, offer.FixxerID, offer.Price, offer.Message, offer.EstimatedDuration, offer.Status).
		Suffix("RETURNING id, price::text, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for offer: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&offer.ID, &offer.Price, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateOffer
		}
		return nil, fmt.Errorf("create offer: %w", err)
	}

	return offer, nil
}

// Accept marks a pending offer as accepted with a responded-at timestamp.
// Returns ErrOfferNotPending if the offer was already resolved.
func (r *OfferRepository) Accept(ctx context.Context, tx pgx.Tx, offerID string) error {
	return r.resolve(ctx, tx, offerID, domain.OfferStatusAccepted)
}

// Reject marks a pending offer as rejected.
func (r *OfferRepository) Reject(ctx context.Context, tx pgx.Tx, offerID string) error {
	return r.resolve(ctx, tx, offerID, domain.OfferStatusRejected)
}

// Withdraw marks a pending offer as withdrawn.
func (r *OfferRepository) Withdraw(ctx context.Context, tx pgx.Tx, offerID string) error {
	return r.resolve(ctx, tx, offerID, domain.OfferStatusWithdrawn)
}

func (r *OfferRepository) resolve(ctx context.Context, tx pgx.Tx, offerID string, newStatus domain.OfferStatus) error {
	query, args, err := psql.
		Update("offers").
		Set("status", newStatus).
		Set("responded_at", sq.Expr("NOW()")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     offerID,
			"status": domain.OfferStatusPending,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build resolve query for offer %s: %w", offerID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfferNotPending
	}
	return nil
}

// RejectSiblings rejects every other pending offer on the same task. Called
// when one offer is accepted; the first accepted offer wins, the rest are
// auto-rejected.
func (r *OfferRepository) RejectSiblings(ctx context.Context, tx pgx.Tx, taskID, acceptedOfferID string) error {
	query, args, err := psql.
		Update("offers").
		Set("status", domain.OfferStatusRejected).
		Set("responded_at", sq.Expr("NOW()")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"task_id": taskID,
			"status":  domain.OfferStatusPending,
		}).
		Where(sq.NotEq{"id": acceptedOfferID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build RejectSiblings query for task %s: %w", taskID, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("reject sibling offers: %w", err)
	}
	return nil
}

// OfferWithFixxer pairs an offer with its fixxer's public fields.
type OfferWithFixxer struct {
	Offer             *domain.Offer
	FixxerName        string
	FixxerProfileURL  *string
	CompletedTasks    int
	FixxerIsAvailable bool
}

// ListByTaskWithFixxer retrieves a task's offers with fixxer snapshots,
// newest first. Pass statuses to filter; nil lists all.
func (r *OfferRepository) ListByTaskWithFixxer(
	ctx context.Context,
	taskID string,
	statuses []domain.OfferStatus,
) ([]OfferWithFixxer, error) {
	qb := psql.
		Select(
			"o.id", "o.task_id", "o.fixxer_id", "o.price::text", "o.message", "o.estimated_duration",
			"o.status", "o.responded_at", "o.created_at", "o.updated_at",
			"u.name", "u.profile_url",
			"COALESCE(fp.completed_tasks_count, 0)",
			"COALESCE(fp.is_available, TRUE)",
		).
		From("offers o").
		Join("users u ON u.id = o.fixxer_id").
		LeftJoin("fixxer_profiles fp ON fp.user_id = o.fixxer_id").
		Where(sq.Eq{"o.task_id": taskID}).
		OrderBy("o.created_at DESC")
	if len(statuses) > 0 {
		qb = qb.Where(sq.Eq{"o.status": statuses})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByTaskWithFixxer query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task offers: %w", err)
	}
	defer rows.Close()

	var results []OfferWithFixxer
	for rows.Next() {
		var (
			offer domain.Offer
			item  OfferWithFixxer
		)
		err := rows.Scan(
			&offer.ID,
			&offer.TaskID,
			&offer.FixxerID,
			&offer.Price,
			&offer.Message,
			&offer.EstimatedDuration,
			&offer.Status,
			&offer.RespondedAt,
			&offer.CreatedAt,
			&offer.UpdatedAt,
			&item.FixxerName,
			&item.FixxerProfileURL,
			&item.CompletedTasks,
			&item.FixxerIsAvailable,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task offer: %w", err)
		}
		item.Offer = &offer
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

// OfferWithTask pairs an offer with a snapshot of its task.
type OfferWithTask struct {
	Offer      *domain.Offer
	TaskTitle  string
	TaskStatus domain.TaskStatus
}

// ListByFixxer retrieves a fixxer's own offers with task snapshots, newest first.
func (r *OfferRepository) ListByFixxer(ctx context.Context, fixxerID string) ([]OfferWithTask, error) {
	query, args, err := psql.
		Select(
			"o.id", "o.task_id", "o.fixxer_id", "o.price::text", "o.message", "o.estimated_duration",
			"o.status", "o.responded_at", "o.created_at", "o.updated_at",
			"t.task_title", "t.status",
		).
		From("offers o").
		Join("tasks t ON t.id = o.task_id").
		Where(sq.Eq{"o.fixxer_id": fixxerID}).
		OrderBy("o.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByFixxer query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixxer offers: %w", err)
	}
	defer rows.Close()

	var results []OfferWithTask
	for rows.Next() {
		var (
			offer domain.Offer
			item  OfferWithTask
		)
		err := rows.Scan(
			&offer.ID,
			&offer.TaskID,
			&offer.FixxerID,
			&offer.Price,
			&offer.Message,
			&offer.EstimatedDuration,
			&offer.Status,
			&offer.RespondedAt,
			&offer.CreatedAt,
			&offer.UpdatedAt,
			&item.TaskTitle,
			&item.TaskStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fixxer offer: %w", err)
		}
		item.Offer = &offer
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

// GetAcceptedByTask retrieves the task's accepted offer, if any.
func (r *OfferRepository) GetAcceptedByTask(ctx context.Context, taskID string) (*domain.Offer, error) {
	query, args, err := psql.
		Select(offerColumns...).
		From("offers").
		Where(sq.Eq{
			"task_id": taskID,
			"status":  domain.OfferStatusAccepted,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetAcceptedByTask query: %w", err)
	}

	return scanOffer(r.pool.QueryRow(ctx, query, args...))
}
