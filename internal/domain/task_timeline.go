package domain

import "time"

// TimelineEventType represents the type of a recorded lifecycle event.
type TimelineEventType string

const (
	TimelineEventOfferAccepted       TimelineEventType = "offer_accepted"
	TimelineEventCompletionRequested TimelineEventType = "completion_requested"
	TimelineEventCompletionRejected  TimelineEventType = "completion_rejected"
	TimelineEventCompleted           TimelineEventType = "completed"
	TimelineEventCancelled           TimelineEventType = "cancelled"
)

// TimelineEvent is an append-only record of a task lifecycle transition.
// Events are written in the same transaction as the transition they record
// and are never updated afterwards.
type TimelineEvent struct {
	ID        string
	TaskID    string
	ActorID   *string // nil for system events
	Type      TimelineEventType
	OldStatus *TaskStatus
	NewStatus *TaskStatus
	Reason    string
	CreatedAt time.Time
}
