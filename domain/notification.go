package domain

import "time"

type NotificationType string

const (
	NotificationFriendRequest    NotificationType = "friend_request"
	NotificationFriendAccepted   NotificationType = "friend_accepted"
	NotificationSessionInvite    NotificationType = "session_invite"
	NotificationSessionAccepted  NotificationType = "session_accepted"
	NotificationSessionDeclined  NotificationType = "session_declined"
	NotificationSessionCancelled NotificationType = "session_cancelled"
	NotificationNewMessage       NotificationType = "new_message"
)

// Notification is the durable record of an event that affected a user other
// than the actor. It is persisted before any real-time delivery attempt so
// it stays retrievable even if nobody was online to receive it live.
type Notification struct {
	ID               string           `json:"id"`
	RecipientID      string           `json:"recipient"`
	SenderID         string           `json:"sender,omitempty"` // empty for system notifications
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	RelatedSessionID string           `json:"relatedSession,omitempty"`
	Read             bool             `json:"read"`
	CreatedAt        time.Time        `json:"createdAt"`
	ReadAt           *time.Time       `json:"readAt,omitempty"`
}
