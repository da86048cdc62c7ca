package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification kinds carried on the queue.
const (
	KindBudgetAlert   = "budget_alert"
	KindGoalMilestone = "goal_milestone"
)

// NotificationMessage is the wire format for budget alert and goal milestone
// events. SubjectID is the budget or goal id; Threshold is the crossed
// percentage checkpoint.
type NotificationMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	AccountID int64     `json:"account_id"`
	SubjectID int64     `json:"subject_id"`
	Threshold int       `json:"threshold"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage stamps a fresh event with a unique id.
func NewNotificationMessage(kind string, accountID, subjectID int64, threshold int, message string) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		AccountID: accountID,
		SubjectID: subjectID,
		Threshold: threshold,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
