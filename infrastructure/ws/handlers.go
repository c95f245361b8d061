package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"gaming-hub/domain/event"
	"gaming-hub/errors"
	"gaming-hub/realtime"
)

type handlerFunc func(ctx context.Context, client *Client, data json.RawMessage) error

// handlerTable maps inbound event names to their handlers. An unknown event
// name is logged and ignored; it never tears the connection down.
func (g *Gateway) handlerTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		event.Identify:           g.onIdentify,
		event.SessionSubscribe:   g.onSessionSubscribe,
		event.SessionUnsubscribe: g.onSessionUnsubscribe,
		event.MessageSend:        g.onDirectMessage,
		event.SessionMessage:     g.onSessionMessage,
		event.TypingStart:        g.onTyping(true),
		event.TypingStop:         g.onTyping(false),
		event.PresenceUpdate:     g.onPresenceUpdate,
	}
}

func (g *Gateway) handle(client *Client, frame []byte) {
	var envelope event.Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		g.log.Debug("malformed frame", "user_id", client.userID, "err", err)
		return
	}

	handler, ok := g.handlers[envelope.Event]
	if !ok {
		g.log.Debug("unknown event", "event", envelope.Event, "user_id", client.userID)
		return
	}

	if err := handler(context.Background(), client, envelope.Data); err != nil {
		g.log.Warn("event handling failed",
			"event", envelope.Event,
			"user_id", client.userID,
			"err", err)
	}
}

// onIdentify joins the connection to presence and its private topics. The
// identity itself was fixed at upgrade time from the token; the payload is
// accepted for wire compatibility but cannot claim another user.
func (g *Gateway) onIdentify(_ context.Context, client *Client, data json.RawMessage) error {
	var payload event.IdentifyPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
		if payload.UserID != "" && payload.UserID != client.userID {
			return fmt.Errorf("%w: identify does not match token identity", errors.ErrInvalidPayload)
		}
	}

	g.presence.Connect(client.userID, client)
	g.router.Subscribe(client, realtime.UserTopic(client.userID))
	g.router.Subscribe(client, realtime.PresenceTopic)

	g.broadcastPresence(client.userID, true, "")
	return nil
}

func (g *Gateway) onSessionSubscribe(_ context.Context, client *Client, data json.RawMessage) error {
	var payload event.SessionRef
	if err := json.Unmarshal(data, &payload); err != nil || payload.SessionID == "" {
		return fmt.Errorf("%w: session id required", errors.ErrInvalidPayload)
	}
	g.router.Subscribe(client, realtime.SessionTopic(payload.SessionID))
	return nil
}

func (g *Gateway) onSessionUnsubscribe(_ context.Context, client *Client, data json.RawMessage) error {
	var payload event.SessionRef
	if err := json.Unmarshal(data, &payload); err != nil || payload.SessionID == "" {
		return fmt.Errorf("%w: session id required", errors.ErrInvalidPayload)
	}
	g.router.Unsubscribe(client, realtime.SessionTopic(payload.SessionID))
	return nil
}

// onDirectMessage routes through the message service, which censors,
// persists and delivers. The sender is always the connection's identity.
func (g *Gateway) onDirectMessage(ctx context.Context, client *Client, data json.RawMessage) error {
	var payload event.DirectMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RecipientID == "" {
		return fmt.Errorf("%w: recipient required", errors.ErrInvalidPayload)
	}
	_, err := g.messages.SendDirect(ctx, client.userID, payload.RecipientID, payload.Content)
	return err
}

func (g *Gateway) onSessionMessage(ctx context.Context, client *Client, data json.RawMessage) error {
	var payload event.SessionMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.SessionID == "" {
		return fmt.Errorf("%w: session id required", errors.ErrInvalidPayload)
	}
	_, err := g.messages.SendSession(ctx, client.userID, payload.SessionID, payload.Content)
	return err
}

// onTyping relays a transient typing indicator to the recipient's private
// topic. Nothing is persisted.
func (g *Gateway) onTyping(typing bool) handlerFunc {
	return func(_ context.Context, client *Client, data json.RawMessage) error {
		var payload event.TypingPayload
		if err := json.Unmarshal(data, &payload); err != nil || payload.RecipientID == "" {
			return fmt.Errorf("%w: recipient required", errors.ErrInvalidPayload)
		}

		frame, err := event.Encode(event.TypingUser, event.TypingUserPayload{
			UserID: client.userID,
			Typing: typing,
		})
		if err != nil {
			return err
		}
		g.router.Publish(realtime.UserTopic(payload.RecipientID), frame)
		return nil
	}
}

func (g *Gateway) onPresenceUpdate(_ context.Context, client *Client, data json.RawMessage) error {
	var payload event.PresencePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	g.broadcastPresence(client.userID, true, payload.Activity)
	return nil
}

func (g *Gateway) broadcastPresence(userID string, online bool, activity string) {
	frame, err := event.Encode(event.PresenceChanged, event.PresencePayload{
		UserID:   userID,
		Online:   online,
		Activity: activity,
	})
	if err != nil {
		g.log.Error("failed to encode presence event", "err", err)
		return
	}
	g.router.Publish(realtime.PresenceTopic, frame)
}
