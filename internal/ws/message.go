package ws

import (
	"time"

	"github.com/workdesk/internal/model"
)

type EventType string

const (
	EventNotificationAdded EventType = "notification_added"
	EventToast             EventType = "toast"
)

// OutgoingMessage is what the server pushes to the connected UI.
// The feed is one-way: writes go through the HTTP API, the socket only
// delivers derived events.
type OutgoingMessage struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// NotificationAddedPayload is pushed when a fan-out creates a notification.
type NotificationAddedPayload struct {
	UserID       string              `json:"user_id"`
	Notification *model.Notification `json:"notification"`
}

// ToastPayload is pushed when the session store records a toast.
type ToastPayload struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
