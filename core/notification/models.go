package notification

import "time"

// Types
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type QueryFilter struct {
	UserID string
	Unread bool
}

func (qf QueryFilter) Match(n Notification) bool {
	if qf.UserID != "" && n.UserID != qf.UserID {
		return false
	}
	return !qf.Unread || !n.Read
}

// emailData is rendered by the "notification" email template.
type emailData struct {
	RecipientName string
	Message       string
	Type          string
}

var emailSubjects = map[string]string{
	TypeInfo:    "New notification",
	TypeSuccess: "Good news",
	TypeWarning: "Action needed",
}
