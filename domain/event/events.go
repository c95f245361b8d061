// Package event defines the typed wire events exchanged over the real-time
// channel. Inbound frames decode into an Envelope whose Data field is then
// decoded into one of the payload structs below, keyed by the event name.
package event

import "encoding/json"

// Client-to-server event names.
const (
	Identify           = "identify"
	SessionSubscribe   = "session:subscribe"
	SessionUnsubscribe = "session:unsubscribe"
	MessageSend        = "message:send"
	SessionMessage     = "session:message"
	TypingStart        = "typing:start"
	TypingStop         = "typing:stop"
	PresenceUpdate     = "presence:update"
)

// Server-to-client event names.
const (
	MessageReceived        = "message:received"
	SessionMessageReceived = "session:message:received"
	NotificationReceived   = "notification:received"
	TypingUser             = "typing:user"
	PresenceChanged        = "presence:changed"
)

// Envelope is the raw frame on the wire, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type IdentifyPayload struct {
	UserID string `json:"userId"`
}

type SessionRef struct {
	SessionID string `json:"sessionId"`
}

type DirectMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

type SessionMessagePayload struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
}

type TypingPayload struct {
	RecipientID string `json:"recipientId"`
	UserID      string `json:"userId"`
}

type TypingUserPayload struct {
	UserID string `json:"userId"`
	Typing bool   `json:"typing"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	Online   bool   `json:"online"`
	Activity string `json:"activity,omitempty"`
}

// Encode builds a ready-to-send outbound frame.
func Encode(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: name, Data: raw})
}
