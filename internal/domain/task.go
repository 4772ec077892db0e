package domain

import "time"

// TaskStatus represents the status of a task in the lifecycle state machine.
type TaskStatus string

const (
	TaskStatusDraft             TaskStatus = "draft"
	TaskStatusPosted            TaskStatus = "posted"
	TaskStatusInProgress        TaskStatus = "in_progress"
	TaskStatusPendingCompletion TaskStatus = "pending_completion"
	TaskStatusCompleted         TaskStatus = "completed"
	TaskStatusCancelled         TaskStatus = "cancelled"
)

// IsTerminal returns true if the status is terminal (no transitions allowed).
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusPosted, TaskStatusInProgress,
		TaskStatusPendingCompletion, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// PriceType represents how the task budget is quoted.
type PriceType string

const (
	PriceTypePerHour PriceType = "per_hour"
	PriceTypeTotal   PriceType = "total"
)

// IsValid checks if the price type is one of the allowed values.
func (p PriceType) IsValid() bool {
	return p == PriceTypePerHour || p == PriceTypeTotal
}

// TaskType represents whether a task is performed remotely or in person.
type TaskType string

const (
	TaskTypeRemote   TaskType = "remote"
	TaskTypeInPerson TaskType = "in_person"
)

// IsValid checks if the task type is one of the allowed values.
func (t TaskType) IsValid() bool {
	return t == TaskTypeRemote || t == TaskTypeInPerson
}

// Point is a geographic coordinate (x = longitude, y = latitude).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Task represents a unit of work a client wants done.
//
// Money fields (Budget) hold the canonical NUMERIC(10,2) text representation;
// the core never performs arithmetic on them.
type Task struct {
	ID                        string
	ClientID                  string
	CategoryID                string
	AssignedFixxerID          *string
	Title                     string
	Description               string
	Location                  Point
	LocationAddress           *string
	ScheduledAt               *time.Time
	IsAsap                    bool
	Budget                    string
	PriceType                 PriceType
	OpenToOffer               bool
	TypeOfTask                TaskType
	Status                    TaskStatus
	OfferCount                int
	CompletedAt               *time.Time
	CancelledAt               *time.Time
	CancellationReason        *string
	CompletionRequestedBy     *string
	CompletionRequestedAt     *time.Time
	CompletionRejectionReason *string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// IsOwnedByClient checks if the task was posted by the given user.
func (t *Task) IsOwnedByClient(userID string) bool {
	return t.ClientID == userID
}

// IsAssignedTo checks if the task is assigned to the given fixxer.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedFixxerID != nil && *t.AssignedFixxerID == userID
}

// IsOpenForOffers checks if fixxers may still bid on the task.
func (t *Task) IsOpenForOffers() bool {
	return t.Status == TaskStatusPosted
}
