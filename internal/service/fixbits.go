package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/repository"
)

// FixBits economy parameters. Every fixxer profile starts with a small
// balance, each offer costs one bit, and each spent bit is paid back in two
// delayed installments.
const (
	StartingFixBits   = 3
	OfferFixBitCost   = 1
	ReplenishAmount   = 5
	ReplenishBatch    = 100
	FirstReplenishIn  = 14 * 24 * time.Hour
	SecondReplenishIn = 28 * 24 * time.Hour
)

// FixBitsService applies scheduled FixBits replenishments. It is driven by
// the replenish-fixbits worker command.
type FixBitsService struct {
	pool          *pgxpool.Pool
	profileRepo   *repository.ProfileRepository
	replenishRepo *repository.ReplenishmentRepository
}

// NewFixBitsService creates a new FixBitsService.
func NewFixBitsService(
	pool *pgxpool.Pool,
	profileRepo *repository.ProfileRepository,
	replenishRepo *repository.ReplenishmentRepository,
) *FixBitsService {
	return &FixBitsService{
		pool:          pool,
		profileRepo:   profileRepo,
		replenishRepo: replenishRepo,
	}
}

// ProcessDueReplenishments credits all replenishments whose due time has
// passed. Each batch runs in one transaction; SKIP LOCKED row claims make
// concurrent workers safe. Returns the number of replenishments applied.
func (s *FixBitsService) ProcessDueReplenishments(ctx context.Context) (int, error) {
	applied := 0
	for {
		n, err := s.processBatch(ctx)
		if err != nil {
			return applied, err
		}
		applied += n
		if n < ReplenishBatch {
			break
		}
	}

	if applied > 0 {
		slog.Info("applied fixbits replenishments", "count", applied)
	}
	return applied, nil
}

func (s *FixBitsService) processBatch(ctx context.Context) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	due, err := s.replenishRepo.ClaimDue(ctx, tx, ReplenishBatch)
	if err != nil {
		return 0, fmt.Errorf("claim due replenishments: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	for _, r := range due {
		if err := s.profileRepo.CreditFixBits(ctx, tx, r.ProfileID, r.Amount); err != nil {
			return 0, fmt.Errorf("credit profile %s: %w", r.ProfileID, err)
		}
		if err := s.replenishRepo.MarkApplied(ctx, tx, r.ID); err != nil {
			return 0, fmt.Errorf("mark replenishment %s applied: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(due), nil
}
