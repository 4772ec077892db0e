package domain

import "time"

// User represents a marketplace member. The same account can act as a
// client (posting tasks) or a fixxer (bidding on them); the role a user
// plays is determined per task by ownership and assignment.
type User struct {
	ID         string
	Name       string
	Email      string
	Username   string
	ProfileURL *string
	FcmToken   *string
	IsActive   bool
	Token      string
	CreatedAt  time.Time
}

// FixxerProfile holds per-fixxer bookkeeping: the FixBits offer-currency
// balance and the completed-task counter. Created lazily on first offer.
type FixxerProfile struct {
	ID                  string
	UserID              string
	FixBits             int
	CompletedTasksCount int
	IsAvailable         bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Category is a task category reference.
type Category struct {
	ID           string
	Name         string
	Description  *string
	DisplayOrder int
	CreatedAt    time.Time
}

// FixBitReplenishment is a durable delayed credit to a fixxer's FixBits
// balance, applied by the replenishment worker once due.
type FixBitReplenishment struct {
	ID        string
	ProfileID string
	Amount    int
	DueAt     time.Time
	AppliedAt *time.Time
	CreatedAt time.Time
}
