package domain

import "time"

type MessageType string

const (
	MessageDirect  MessageType = "direct"
	MessageSession MessageType = "session"
)

// Message is an immutable chat entry, either direct (RecipientID set) or
// room-style (SessionID set). Content is censored before persistence.
type Message struct {
	ID          string      `json:"id"`
	SenderID    string      `json:"sender"`
	RecipientID string      `json:"recipient,omitempty"`
	SessionID   string      `json:"session,omitempty"`
	Content     string      `json:"content"`
	Type        MessageType `json:"type"`
	Read        bool        `json:"read"`
	CreatedAt   time.Time   `json:"createdAt"`
	ReadAt      *time.Time  `json:"readAt,omitempty"`
}
