// Package services orchestrates the domain engines in core against storage,
// the notification queue and the report exporter.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgeteer/internal/amqp"
	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// Publisher sends notification events to the queue. Satisfied by
// *amqp.Client.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// Notifier de-duplicates and delivers notification events. The core engines
// are memoryless and re-report every crossed threshold; the notifications
// table keeps each (kind, subject, threshold) from being delivered twice.
type Notifier struct {
	repo      *storage.NotificationRepo
	publisher Publisher
}

func NewNotifier(repo *storage.NotificationRepo, publisher Publisher) *Notifier {
	return &Notifier{repo: repo, publisher: publisher}
}

// BudgetAlert records and publishes one crossed budget threshold. Returns
// true when the alert was new. Publish failures are logged, not returned;
// the record already guarantees the alert will not fire again.
func (n *Notifier) BudgetAlert(ctx context.Context, accountID int64, alert core.BudgetAlert, categoryName string) (bool, error) {
	message := fmt.Sprintf("Budget for %s reached %d%% (at %.1f%%)", categoryName, alert.Threshold, alert.Percentage)
	inserted, err := n.repo.Record(ctx, storage.Notification{
		AccountID: accountID,
		Kind:      amqp.KindBudgetAlert,
		SubjectID: alert.BudgetID,
		Threshold: alert.Threshold,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("record budget alert: %w", err)
	}
	if !inserted {
		return false, nil
	}

	n.publish(ctx, amqp.NewNotificationMessage(amqp.KindBudgetAlert, accountID, alert.BudgetID, alert.Threshold, message))
	return true, nil
}

// GoalMilestone records and publishes one reached goal checkpoint.
func (n *Notifier) GoalMilestone(ctx context.Context, accountID int64, goal core.Goal, milestone int) (bool, error) {
	message := fmt.Sprintf("Goal %q reached %d%%", goal.Name, milestone)
	inserted, err := n.repo.Record(ctx, storage.Notification{
		AccountID: accountID,
		Kind:      amqp.KindGoalMilestone,
		SubjectID: goal.ID,
		Threshold: milestone,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("record goal milestone: %w", err)
	}
	if !inserted {
		return false, nil
	}

	n.publish(ctx, amqp.NewNotificationMessage(amqp.KindGoalMilestone, accountID, goal.ID, milestone, message))
	return true, nil
}

// History returns the account's delivered notifications, newest first.
func (n *Notifier) History(ctx context.Context, accountID int64) ([]storage.Notification, error) {
	return n.repo.List(ctx, accountID)
}

func (n *Notifier) publish(ctx context.Context, msg *amqp.NotificationMessage) {
	if n.publisher == nil {
		slog.WarnContext(ctx, "No publisher configured, notification recorded only", "kind", msg.Kind)
		return
	}
	if err := n.publisher.PublishNotification(ctx, msg); err != nil {
		// The record is durable; delivery is best effort.
		slog.ErrorContext(ctx, "Failed to publish notification",
			"kind", msg.Kind, "subject_id", msg.SubjectID, "error", err)
	}
}
