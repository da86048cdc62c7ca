// Package worker holds the background processes that run next to the API:
// the notification consumer and the session expiry sweeper.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budgeteer/internal/amqp"
	"budgeteer/internal/storage"
)

// NotifyWorker drains the notification queue. Delivery here means surfacing
// the event in the worker's log stream; the durable record already lives in
// the notifications table, written before the message was published.
type NotifyWorker struct {
	accounts *storage.AccountRepo
}

func NewNotifyWorker(accounts *storage.AccountRepo) *NotifyWorker {
	return &NotifyWorker{accounts: accounts}
}

// HandleNotification processes one queued notification message.
func (w *NotifyWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	account, err := w.accounts.GetByID(ctx, msg.AccountID)
	if err != nil {
		return fmt.Errorf("resolve account %d: %w", msg.AccountID, err)
	}

	slog.InfoContext(ctx, "Notification delivered",
		"id", msg.ID,
		"kind", msg.Kind,
		"username", account.Username,
		"subject_id", msg.SubjectID,
		"threshold", msg.Threshold,
		"message", msg.Message)
	return nil
}
