package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/notify"
	"github.com/fixxhq/fixxcore/internal/repository"
)

// OfferService coordinates offer placement and resolution, including the
// FixBits debit on creation and the booking created on acceptance.
type OfferService struct {
	pool          *pgxpool.Pool
	taskRepo      *repository.TaskRepository
	offerRepo     *repository.OfferRepository
	bookingRepo   *repository.BookingRepository
	timelineRepo  *repository.TimelineRepository
	profileRepo   *repository.ProfileRepository
	replenishRepo *repository.ReplenishmentRepository
	userRepo      *repository.UserRepository
	lifecycle     *Lifecycle
	notifier      notify.Notifier
}

// NewOfferService creates a new OfferService.
func NewOfferService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	offerRepo *repository.OfferRepository,
	bookingRepo *repository.BookingRepository,
	timelineRepo *repository.TimelineRepository,
	profileRepo *repository.ProfileRepository,
	replenishRepo *repository.ReplenishmentRepository,
	userRepo *repository.UserRepository,
	notifier notify.Notifier,
) *OfferService {
	return &OfferService{
		pool:          pool,
		taskRepo:      taskRepo,
		offerRepo:     offerRepo,
		bookingRepo:   bookingRepo,
		timelineRepo:  timelineRepo,
		profileRepo:   profileRepo,
		replenishRepo: replenishRepo,
		userRepo:      userRepo,
		lifecycle:     NewLifecycle(),
		notifier:      notifier,
	}
}

// CreateOfferInput holds the fields a fixxer submits when bidding on a task.
type CreateOfferInput struct {
	Price             string
	Message           *string
	EstimatedDuration *string
}

// CreateOffer places a fixxer's bid on a posted task. The fixxer's profile
// is created on first use with the starting FixBits balance; one bit is
// debited atomically and paid back in two scheduled installments. The whole
// operation is a single transaction, so a failed insert refunds the debit.
func (s *OfferService) CreateOffer(ctx context.Context, taskID, fixxerID string, input CreateOfferInput) (*domain.Offer, error) {
	if err := validateBudget(input.Price); err != nil {
		return nil, err
	}

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

	if err := s.lifecycle.CanOffer(task, fixxerID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetOrCreate(ctx, tx, fixxerID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.DebitFixBit(ctx, tx, profile.ID); err != nil {
		return nil, err
	}

	offer := &domain.Offer{
		TaskID:            taskID,
		FixxerID:          fixxerID,
		Price:             input.Price,
		Message:           input.Message,
		EstimatedDuration: input.EstimatedDuration,
		Status:            domain.OfferStatusPending,
	}
	offer, err = s.offerRepo.Create(ctx, tx, offer)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.IncrementOfferCount(ctx, tx, taskID); err != nil {
		return nil, err
	}

	// Each spent bit comes back in two installments.
	now := time.Now()
	if err := s.replenishRepo.Schedule(ctx, tx, profile.ID, ReplenishAmount, now.Add(FirstReplenishIn)); err != nil {
		return nil, err
	}
	if err := s.replenishRepo.Schedule(ctx, tx, profile.ID, ReplenishAmount, now.Add(SecondReplenishIn)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("offer created",
		"offer_id", offer.ID,
		"task_id", taskID,
		"fixxer_id", fixxerID,
		"price", offer.Price,
	)

	s.notifyNewOffer(ctx, task, offer)

	return offer, nil
}

func (s *OfferService) notifyNewOffer(ctx context.Context, task *domain.Task, offer *domain.Offer) {
	fixxerName := "A Fixxer"
	if fixxer, err := s.userRepo.GetByID(ctx, offer.FixxerID); err == nil {
		fixxerName = fixxer.Name
	}
	body := fmt.Sprintf("%s has made an offer of %s on your task %q", fixxerName, offer.Price, task.Title)
	data := map[string]string{
		"taskId":  task.ID,
		"offerId": offer.ID,
		"type":    "new_offer",
	}
	if err := s.notifier.SendPush(ctx, task.ClientID, "New Offer Received!", body, data); err != nil {
		slog.Error("failed to send new offer notification", "offer_id", offer.ID, "error", err)
	}
}

// AcceptOffer confirms one offer and starts the work. In one transaction the
// task row is locked, the offer accepted, sibling offers rejected, the fixxer
// assigned, the booking created at the offered price, and a timeline event
// appended. Concurrent accepts serialize on the row lock; the loser sees the
// task already in progress.
func (s *OfferService) AcceptOffer(ctx context.Context, offerID, clientID string) (*domain.Booking, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	offer, err := s.offerRepo.GetByIDTx(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, offer.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanAccept(task, offer, clientID); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Accept(ctx, tx, offerID); err != nil {
		return nil, err
	}
	if err := s.offerRepo.RejectSiblings(ctx, tx, task.ID, offerID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.AssignFixxer(ctx, tx, task.ID, offer.FixxerID); err != nil {
		return nil, err
	}

	// Work starts at the scheduled time if one was set, otherwise now.
	startedAt := time.Now()
	if task.ScheduledAt != nil {
		startedAt = *task.ScheduledAt
	}
	booking := &domain.Booking{
		TaskID:      task.ID,
		ClientID:    task.ClientID,
		FixxerID:    offer.FixxerID,
		OfferID:     &offer.ID,
		AgreedPrice: offer.Price,
		Status:      domain.BookingStatusInProgress,
		StartedAt:   &startedAt,
	}
	booking, err = s.bookingRepo.Create(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	oldStatus := domain.TaskStatusPosted
	newStatus := domain.TaskStatusInProgress
	event := &domain.TimelineEvent{
		TaskID:    task.ID,
		ActorID:   &clientID,
		Type:      domain.TimelineEventOfferAccepted,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if err := s.timelineRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("create timeline event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("offer accepted",
		"offer_id", offerID,
		"task_id", task.ID,
		"fixxer_id", offer.FixxerID,
		"booking_id", booking.ID,
		"agreed_price", booking.AgreedPrice,
	)

	s.notifyOfferAccepted(ctx, task, offer, booking)

	return booking, nil
}

func (s *OfferService) notifyOfferAccepted(ctx context.Context, task *domain.Task, offer *domain.Offer, booking *domain.Booking) {
	clientName := "Client"
	if client, err := s.userRepo.GetByID(ctx, task.ClientID); err == nil {
		clientName = client.Name
	}
	body := fmt.Sprintf("%s has accepted your offer for %q. You can now start working on the task.", clientName, task.Title)
	data := map[string]string{
		"taskId":    task.ID,
		"bookingId": booking.ID,
		"type":      "offer_accepted",
	}
	if err := s.notifier.SendPush(ctx, offer.FixxerID, "Offer Accepted!", body, data); err != nil {
		slog.Error("failed to send offer accepted notification", "offer_id", offer.ID, "error", err)
	}
}

// RejectOffer declines a pending offer without touching the task.
func (s *OfferService) RejectOffer(ctx context.Context, offerID, clientID string) (*domain.Offer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	offer, err := s.offerRepo.GetByIDTx(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, offer.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanReject(task, offer, clientID); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Reject(ctx, tx, offerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("offer rejected", "offer_id", offerID, "task_id", task.ID)

	body := fmt.Sprintf("Your offer on %q was not accepted this time.", task.Title)
	data := map[string]string{"taskId": task.ID, "offerId": offerID, "type": "offer_rejected"}
	if err := s.notifier.SendPush(ctx, offer.FixxerID, "Offer Update", body, data); err != nil {
		slog.Error("failed to send offer rejected notification", "offer_id", offerID, "error", err)
	}

	return s.offerRepo.GetByID(ctx, offerID)
}

// WithdrawOffer lets a fixxer pull a pending offer back. The task's offer
// counter is decremented; the spent FixBit is not refunded.
func (s *OfferService) WithdrawOffer(ctx context.Context, offerID, fixxerID string) (*domain.Offer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	offer, err := s.offerRepo.GetByIDTx(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.CanWithdraw(offer, fixxerID); err != nil {
		return nil, err
	}

	if err := s.offerRepo.Withdraw(ctx, tx, offerID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.DecrementOfferCount(ctx, tx, offer.TaskID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("offer withdrawn", "offer_id", offerID, "task_id", offer.TaskID, "fixxer_id", fixxerID)

	return s.offerRepo.GetByID(ctx, offerID)
}

// ListTaskOffers returns a task's pending offers with fixxer snapshots.
// Only the task's client may see them.
func (s *OfferService) ListTaskOffers(ctx context.Context, taskID, clientID string) ([]repository.OfferWithFixxer, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedByClient(clientID) {
		return nil, fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, taskID)
	}

	return s.offerRepo.ListByTaskWithFixxer(ctx, taskID, []domain.OfferStatus{domain.OfferStatusPending})
}

// ListMyOffers returns the fixxer's own offers with task snapshots.
func (s *OfferService) ListMyOffers(ctx context.Context, fixxerID string) ([]repository.OfferWithTask, error) {
	return s.offerRepo.ListByFixxer(ctx, fixxerID)
}
