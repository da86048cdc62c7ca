package storage

import (
	"context"
	"fmt"
	"time"

	"budgeteer/internal/dbx"
)

// Notification is a delivered alert or milestone record. The unique key
// (user, kind, subject, threshold) is what keeps repeated evaluations of the
// memoryless engines from notifying twice.
type Notification struct {
	ID        int64
	AccountID int64
	Kind      string
	SubjectID int64
	Threshold int
	Message   string
	CreatedAt time.Time
}

type NotificationRepo struct {
	q dbx.DBTX
}

func NewNotificationRepo(q dbx.DBTX) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Record stores a notification and reports whether it was new. A duplicate
// of an already-delivered notification is ignored and returns false.
func (r *NotificationRepo) Record(ctx context.Context, n Notification) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (user_id, kind, subject_id, threshold, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.AccountID, n.Kind, n.SubjectID, n.Threshold, n.Message, n.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("record notification: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

// List returns the account's notifications, newest first.
func (r *NotificationRepo) List(ctx context.Context, accountID int64) ([]Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT notification_id, user_id, kind, subject_id, threshold, message, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, notification_id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.SubjectID, &n.Threshold, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteForSubject clears delivered notifications so a re-created subject can
// alert again.
func (r *NotificationRepo) DeleteForSubject(ctx context.Context, accountID int64, kind string, subjectID int64) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM notifications WHERE user_id = ? AND kind = ? AND subject_id = ?`, accountID, kind, subjectID)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
