// Package notify delivers push notifications to users about offer and
// booking activity. Deliveries are best effort: callers fire notifications
// after commit and log failures instead of propagating them.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends push notifications to users.
type Notifier interface {
	// SendPush notifies a single user.
	SendPush(ctx context.Context, userID, title, body string, data map[string]string) error
	// SendPushToAllExcept broadcasts to every active user except one. Used
	// to announce freshly posted tasks to fixxers.
	SendPushToAllExcept(ctx context.Context, exceptUserID, title, body string, data map[string]string) error
}

// LogNotifier writes notifications to the structured log instead of a push
// gateway. It is the default sink until an FCM credential is configured.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	slog.Info("push notification",
		"user_id", userID,
		"title", title,
		"body", body,
		"data", data,
	)
	return nil
}

func (n *LogNotifier) SendPushToAllExcept(ctx context.Context, exceptUserID, title, body string, data map[string]string) error {
	slog.Info("push broadcast",
		"except_user_id", exceptUserID,
		"title", title,
		"body", body,
		"data", data,
	)
	return nil
}
