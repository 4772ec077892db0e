package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/service"
)

const (
	clientID = "00000000-0000-0000-0000-000000000011"
	fixxerID = "00000000-0000-0000-0000-000000000012"
	otherID  = "00000000-0000-0000-0000-000000000013"
)

func postedTask() *domain.Task {
	return &domain.Task{
		ID:       "00000000-0000-0000-0000-0000000000aa",
		ClientID: clientID,
		Status:   domain.TaskStatusPosted,
	}
}

func taskInStatus(status domain.TaskStatus) *domain.Task {
	t := postedTask()
	t.Status = status
	if status == domain.TaskStatusInProgress || status == domain.TaskStatusPendingCompletion {
		fid := fixxerID
		t.AssignedFixxerID = &fid
	}
	return t
}

func pendingOffer() *domain.Offer {
	return &domain.Offer{
		ID:       "00000000-0000-0000-0000-0000000000bb",
		TaskID:   "00000000-0000-0000-0000-0000000000aa",
		FixxerID: fixxerID,
		Status:   domain.OfferStatusPending,
	}
}

func TestCanOffer(t *testing.T) {
	l := service.NewLifecycle()

	tests := []struct {
		name    string
		task    *domain.Task
		userID  string
		wantErr error
	}{
		{"posted task accepts offers", postedTask(), fixxerID, nil},
		{"client cannot offer on own task", postedTask(), clientID, domain.ErrSelfOffer},
		{"in_progress task is closed", taskInStatus(domain.TaskStatusInProgress), fixxerID, domain.ErrTaskNotOpen},
		{"completed task is closed", taskInStatus(domain.TaskStatusCompleted), fixxerID, domain.ErrTaskNotOpen},
		{"cancelled task is closed", taskInStatus(domain.TaskStatusCancelled), fixxerID, domain.ErrTaskNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.CanOffer(tt.task, tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanAccept(t *testing.T) {
	l := service.NewLifecycle()

	t.Run("client accepts pending offer on posted task", func(t *testing.T) {
		assert.NoError(t, l.CanAccept(postedTask(), pendingOffer(), clientID))
	})

	t.Run("non-client cannot accept", func(t *testing.T) {
		err := l.CanAccept(postedTask(), pendingOffer(), otherID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("resolved offer cannot be accepted", func(t *testing.T) {
		offer := pendingOffer()
		offer.Status = domain.OfferStatusRejected
		err := l.CanAccept(postedTask(), offer, clientID)
		assert.ErrorIs(t, err, domain.ErrOfferNotPending)
	})

	t.Run("assigned task cannot accept another offer", func(t *testing.T) {
		err := l.CanAccept(taskInStatus(domain.TaskStatusInProgress), pendingOffer(), clientID)
		assert.ErrorIs(t, err, domain.ErrTaskNotOpen)
	})

	// The owner check runs before the offer status check, so a stranger
	// probing a resolved offer learns nothing about its state.
	t.Run("forbidden wins over offer state", func(t *testing.T) {
		offer := pendingOffer()
		offer.Status = domain.OfferStatusWithdrawn
		err := l.CanAccept(postedTask(), offer, otherID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestCanWithdraw(t *testing.T) {
	l := service.NewLifecycle()

	t.Run("owner withdraws pending offer", func(t *testing.T) {
		assert.NoError(t, l.CanWithdraw(pendingOffer(), fixxerID))
	})

	t.Run("non-owner cannot withdraw", func(t *testing.T) {
		err := l.CanWithdraw(pendingOffer(), otherID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("accepted offer cannot be withdrawn", func(t *testing.T) {
		offer := pendingOffer()
		offer.Status = domain.OfferStatusAccepted
		err := l.CanWithdraw(offer, fixxerID)
		assert.ErrorIs(t, err, domain.ErrOfferNotPending)
	})
}

func TestCanCancelOngoing(t *testing.T) {
	l := service.NewLifecycle()

	t.Run("client cancels in_progress task", func(t *testing.T) {
		assert.NoError(t, l.CanCancelOngoing(taskInStatus(domain.TaskStatusInProgress), clientID))
	})

	t.Run("assigned fixxer cancels in_progress task", func(t *testing.T) {
		assert.NoError(t, l.CanCancelOngoing(taskInStatus(domain.TaskStatusInProgress), fixxerID))
	})

	t.Run("third party cannot cancel", func(t *testing.T) {
		err := l.CanCancelOngoing(taskInStatus(domain.TaskStatusInProgress), otherID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("pending_completion blocks cancellation", func(t *testing.T) {
		err := l.CanCancelOngoing(taskInStatus(domain.TaskStatusPendingCompletion), clientID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("posted task is not mid-work", func(t *testing.T) {
		err := l.CanCancelOngoing(postedTask(), clientID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCanRequestCompletion(t *testing.T) {
	l := service.NewLifecycle()

	t.Run("assigned fixxer requests completion", func(t *testing.T) {
		assert.NoError(t, l.CanRequestCompletion(taskInStatus(domain.TaskStatusInProgress), fixxerID))
	})

	t.Run("client cannot request completion", func(t *testing.T) {
		err := l.CanRequestCompletion(taskInStatus(domain.TaskStatusInProgress), clientID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already pending is rejected", func(t *testing.T) {
		err := l.CanRequestCompletion(taskInStatus(domain.TaskStatusPendingCompletion), fixxerID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCanResolveCompletion(t *testing.T) {
	l := service.NewLifecycle()

	t.Run("client resolves pending completion", func(t *testing.T) {
		assert.NoError(t, l.CanResolveCompletion(taskInStatus(domain.TaskStatusPendingCompletion), clientID))
	})

	t.Run("fixxer cannot resolve own request", func(t *testing.T) {
		err := l.CanResolveCompletion(taskInStatus(domain.TaskStatusPendingCompletion), fixxerID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("no pending request", func(t *testing.T) {
		err := l.CanResolveCompletion(taskInStatus(domain.TaskStatusInProgress), clientID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCanDelete(t *testing.T) {
	l := service.NewLifecycle()

	tests := []struct {
		name       string
		status     domain.TaskStatus
		userID     string
		hasBooking bool
		wantErr    error
	}{
		{"draft is deletable", domain.TaskStatusDraft, clientID, false, nil},
		{"posted without booking is deletable", domain.TaskStatusPosted, clientID, false, nil},
		{"posted with booking is not", domain.TaskStatusPosted, clientID, true, domain.ErrTaskNotDeletable},
		{"in_progress is not deletable", domain.TaskStatusInProgress, clientID, true, domain.ErrTaskNotDeletable},
		{"pending_completion is not deletable", domain.TaskStatusPendingCompletion, clientID, true, domain.ErrTaskNotDeletable},
		{"completed is deletable", domain.TaskStatusCompleted, clientID, true, nil},
		{"cancelled is deletable", domain.TaskStatusCancelled, clientID, false, nil},
		{"non-owner cannot delete", domain.TaskStatusDraft, otherID, false, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.CanDelete(taskInStatus(tt.status), tt.userID, tt.hasBooking)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
