package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

var profileColumns = []string{
	"id", "user_id", "fix_bits", "completed_tasks_count", "is_available",
	"created_at", "updated_at",
}

// ProfileRepository handles database operations for fixxer profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*domain.FixxerProfile, error) {
	var profile domain.FixxerProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FixBits,
		&profile.CompletedTasksCount,
		&profile.IsAvailable,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan fixxer profile: %w", err)
	}
	return &profile, nil
}

// GetByUserID retrieves a fixxer profile by user ID.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.FixxerProfile, error) {
	query, args, err := psql.
		Select(profileColumns...).
		From("fixxer_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByUserID query for profile: %w", err)
	}

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}

// GetOrCreate returns the user's fixxer profile, creating one with the
// starting FixBits balance on the user's first offer.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, userID string) (*domain.FixxerProfile, error) {
	query, args, err := psql.
		Insert("fixxer_profiles").
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()").
		Suffix("RETURNING " + strings.Join(profileColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetOrCreate query for profile: %w", err)
	}

	return scanProfile(tx.QueryRow(ctx, query, args...))
}

// DebitFixBit atomically deducts one FixBit, failing with
// ErrInsufficientFixBits when the balance is empty. The guard lives in the
// WHERE clause so concurrent offers by the same fixxer never overdraw.
func (r *ProfileRepository) DebitFixBit(ctx context.Context, tx pgx.Tx, profileID string) error {
	query, args, err := psql.
		Update("fixxer_profiles").
		Set("fix_bits", sq.Expr("fix_bits - 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": profileID}).
		Where("fix_bits >= 1").
		ToSql()
	if err != nil {
		return fmt.Errorf("build DebitFixBit query for profile %s: %w", profileID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("debit fixbit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFixBits
	}
	return nil
}

// CreditFixBits atomically adds FixBits to a profile.
func (r *ProfileRepository) CreditFixBits(ctx context.Context, tx pgx.Tx, profileID string, amount int) error {
	query, args, err := psql.
		Update("fixxer_profiles").
		Set("fix_bits", sq.Expr("fix_bits + ?", amount)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": profileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build CreditFixBits query for profile %s: %w", profileID, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("credit fixbits: %w", err)
	}
	return nil
}

// IncrementCompletedCount bumps the fixxer's completed-task counter.
// Zero affected rows means the user has no profile yet; the caller treats
// that as a no-op, the counter is bookkeeping, not a transition guard.
func (r *ProfileRepository) IncrementCompletedCount(ctx context.Context, tx pgx.Tx, userID string) (bool, error) {
	query, args, err := psql.
		Update("fixxer_profiles").
		Set("completed_tasks_count", sq.Expr("completed_tasks_count + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build IncrementCompletedCount query for user %s: %w", userID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("increment completed count: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
