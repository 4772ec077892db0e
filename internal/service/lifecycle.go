package service

import (
	"fmt"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// Lifecycle handles permission and state validation for task, offer and
// booking operations. All checks run against rows already locked by the
// caller's transaction, so a passing check stays true until commit.
type Lifecycle struct{}

// NewLifecycle creates a new Lifecycle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// CanUpdate validates if a client can edit a task's details.
func (l *Lifecycle) CanUpdate(task *domain.Task, clientID string) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}
	if task.Status != domain.TaskStatusDraft && task.Status != domain.TaskStatusPosted {
		return fmt.Errorf("%w: task %s is %s, cannot edit", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanOffer validates if a fixxer can place an offer on a task.
func (l *Lifecycle) CanOffer(task *domain.Task, fixxerID string) error {
	if task.IsOwnedByClient(fixxerID) {
		return fmt.Errorf("%w: user %s cannot offer on own task %s", domain.ErrSelfOffer, fixxerID, task.ID)
	}
	if !task.IsOpenForOffers() {
		return fmt.Errorf("%w: task %s is %s", domain.ErrTaskNotOpen, task.ID, task.Status)
	}
	return nil
}

// CanAccept validates if a client can accept an offer on a task.
func (l *Lifecycle) CanAccept(task *domain.Task, offer *domain.Offer, clientID string) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}
	if offer.Status != domain.OfferStatusPending {
		return fmt.Errorf("%w: offer %s is %s", domain.ErrOfferNotPending, offer.ID, offer.Status)
	}
	if task.Status != domain.TaskStatusPosted {
		return fmt.Errorf("%w: task %s is %s", domain.ErrTaskNotOpen, task.ID, task.Status)
	}
	return nil
}

// CanReject validates if a client can reject an offer on a task.
func (l *Lifecycle) CanReject(task *domain.Task, offer *domain.Offer, clientID string) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}
	if offer.Status != domain.OfferStatusPending {
		return fmt.Errorf("%w: offer %s is %s", domain.ErrOfferNotPending, offer.ID, offer.Status)
	}
	return nil
}

// CanWithdraw validates if a fixxer can withdraw their own offer.
func (l *Lifecycle) CanWithdraw(offer *domain.Offer, fixxerID string) error {
	if !offer.IsOwnedBy(fixxerID) {
		return fmt.Errorf("%w: user %s is not the owner of offer %s", domain.ErrForbidden, fixxerID, offer.ID)
	}
	if offer.Status != domain.OfferStatusPending {
		return fmt.Errorf("%w: offer %s is %s", domain.ErrOfferNotPending, offer.ID, offer.Status)
	}
	return nil
}

// CanCancelPosted validates if a client can cancel a task that has no
// booking yet.
func (l *Lifecycle) CanCancelPosted(task *domain.Task, clientID string) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}
	if task.Status != domain.TaskStatusDraft && task.Status != domain.TaskStatusPosted {
		return fmt.Errorf("%w: task %s is %s, cannot cancel before work starts", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanCancelOngoing validates if either party can cancel a task whose work
// has started. Tasks awaiting completion approval cannot be cancelled; the
// client must reject the completion request first.
func (l *Lifecycle) CanCancelOngoing(task *domain.Task, userID string) error {
	if !task.IsOwnedByClient(userID) && !task.IsAssignedTo(userID) {
		return fmt.Errorf("%w: user %s is neither client nor assigned fixxer of task %s", domain.ErrForbidden, userID, task.ID)
	}
	if task.Status != domain.TaskStatusInProgress {
		return fmt.Errorf("%w: task %s is %s, only in_progress tasks can be cancelled mid-work", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanRequestCompletion validates if a fixxer can mark their work done.
func (l *Lifecycle) CanRequestCompletion(task *domain.Task, fixxerID string) error {
	if !task.IsAssignedTo(fixxerID) {
		return fmt.Errorf("%w: user %s is not the assigned fixxer of task %s", domain.ErrForbidden, fixxerID, task.ID)
	}
	if task.Status != domain.TaskStatusInProgress {
		return fmt.Errorf("%w: task %s is %s, cannot request completion", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanResolveCompletion validates if a client can approve or reject a
// pending completion request.
func (l *Lifecycle) CanResolveCompletion(task *domain.Task, clientID string) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}
	if task.Status != domain.TaskStatusPendingCompletion {
		return fmt.Errorf("%w: task %s is %s, no completion request to resolve", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanDelete validates if a client can delete a task. Deletion is allowed
// for drafts, for posted tasks that never got a booking, and for tasks
// already in a terminal status.
func (l *Lifecycle) CanDelete(task *domain.Task, clientID string, hasBooking bool) error {
	if !task.IsOwnedByClient(clientID) {
		return fmt.Errorf("%w: user %s is not the client of task %s", domain.ErrForbidden, clientID, task.ID)
	}

	switch task.Status {
	case domain.TaskStatusDraft, domain.TaskStatusCompleted, domain.TaskStatusCancelled:
		return nil
	case domain.TaskStatusPosted:
		if hasBooking {
			return fmt.Errorf("%w: task %s has a booking", domain.ErrTaskNotDeletable, task.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: task %s is %s", domain.ErrTaskNotDeletable, task.ID, task.Status)
	}
}
