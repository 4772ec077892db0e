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

// bookingColumns is the shared list of columns for booking queries.
var bookingColumns = []string{
	"id", "task_id", "client_id", "fixxer_id", "offer_id", "agreed_price::text",
	"status", "started_at", "completed_at", "cancelled_at",
	"cancellation_reason", "cancelled_by", "created_at", "updated_at",
}

// BookingRepository handles database operations for bookings.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var booking domain.Booking
	err := row.Scan(
		&booking.ID,
		&booking.TaskID,
		&booking.ClientID,
		&booking.FixxerID,
		&booking.OfferID,
		&booking.AgreedPrice,
		&booking.Status,
		&booking.StartedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&booking.CancellationReason,
		&booking.CancelledBy,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return &booking, nil
}

// GetByTaskID retrieves the booking for a task.
func (r *BookingRepository) GetByTaskID(ctx context.Context, taskID string) (*domain.Booking, error) {
	query, args, err := psql.
		Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByTaskID query for booking: %w", err)
	}

	return scanBooking(r.pool.QueryRow(ctx, query, args...))
}

// ExistsByTask reports whether the task already has a booking.
func (r *BookingRepository) ExistsByTask(ctx context.Context, taskID string) (bool, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("bookings").
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build ExistsByTask query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count bookings: %w", err)
	}
	return count > 0, nil
}

// Create inserts the booking created when an offer is accepted. Runs in the
// same transaction as the task transition; the unique task_id constraint
// guarantees at most one booking per task.
func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, booking *domain.Booking) (*domain.Booking, error) {
	if booking.Status == "" {
		booking.Status = domain.BookingStatusInProgress
	}

	query, args, err := psql.
		Insert("bookings").
		Columns("task_id", "client_id", "fixxer_id", "offer_id", "agreed_price", "status", "started_at").
		Values(
			booking.TaskID,
			booking.ClientID,
			booking.FixxerID,
			booking.OfferID,
			booking.AgreedPrice,
			booking.Status,
			booking.StartedAt,
		).
		Suffix("RETURNING id, agreed_price::text, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for booking: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&booking.ID, &booking.AgreedPrice, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	return booking, nil
}

// MarkCompleted moves the task's booking to completed.
func (r *BookingRepository) MarkCompleted(ctx context.Context, tx pgx.Tx, taskID string, at time.Time) error {
	query, args, err := psql.
		Update("bookings").
		Set("status", domain.BookingStatusCompleted).
		Set("completed_at", at).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkCompleted query for booking: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// MarkCancelled moves the task's booking to cancelled, recording who and why.
func (r *BookingRepository) MarkCancelled(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	reason *string,
	cancelledBy string,
	at time.Time,
) error {
	query, args, err := psql.
		Update("bookings").
		Set("status", domain.BookingStatusCancelled).
		Set("cancelled_at", at).
		Set("cancellation_reason", reason).
		Set("cancelled_by", cancelledBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkCancelled query for booking: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}
