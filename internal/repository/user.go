package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
)

var userColumns = []string{
	"id", "name", "email", "username", "profile_url", "fcm_token",
	"is_active", "token", "created_at",
}

// UserRepository handles database operations for users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.ProfileURL,
		&user.FcmToken,
		&user.IsActive,
		&user.Token,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// GetByToken finds a user by authentication token.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByToken query for user: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for user: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// UserStats aggregates a user's marketplace bookkeeping for the stats endpoint.
type UserStats struct {
	TasksPosted            int
	TasksCompletedAsClient int
	OffersMade             int
	TasksCompletedAsFixxer int
	FixBits                int
}

// Stats computes per-user task and offer counters.
func (r *UserRepository) Stats(ctx context.Context, userID string) (*UserStats, error) {
	var stats UserStats

	query, args, err := psql.
		Select().
		Column(sq.Expr("COUNT(*) FILTER (WHERE client_id = ?)", userID)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE client_id = ? AND status = 'completed')", userID)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE assigned_fixxer_id = ? AND status = 'completed')", userID)).
		From("tasks").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Stats task query: %w", err)
	}
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TasksPosted,
		&stats.TasksCompletedAsClient,
		&stats.TasksCompletedAsFixxer,
	)
	if err != nil {
		return nil, fmt.Errorf("query task stats: %w", err)
	}

	offerQuery, offerArgs, err := psql.
		Select("COUNT(*)").
		From("offers").
		Where(sq.Eq{"fixxer_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Stats offer query: %w", err)
	}
	if err := r.pool.QueryRow(ctx, offerQuery, offerArgs...).Scan(&stats.OffersMade); err != nil {
		return nil, fmt.Errorf("query offer stats: %w", err)
	}

	balanceQuery, balanceArgs, err := psql.
		Select("COALESCE(MAX(fix_bits), 0)").
		From("fixxer_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Stats balance query: %w", err)
	}
	if err := r.pool.QueryRow(ctx, balanceQuery, balanceArgs...).Scan(&stats.FixBits); err != nil {
		return nil, fmt.Errorf("query fixbits balance: %w", err)
	}

	return &stats, nil
}
