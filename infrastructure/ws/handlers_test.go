package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"gaming-hub/domain"
	"gaming-hub/domain/event"
	"gaming-hub/realtime"
	"gaming-hub/repositories"
)

type fakeMessageService struct {
	directCalls  []string // "sender->recipient:content"
	sessionCalls []string
}

func (f *fakeMessageService) SendDirect(_ context.Context, senderID, recipientID, content string) (*domain.Message, error) {
	f.directCalls = append(f.directCalls, senderID+"->"+recipientID+":"+content)
	return &domain.Message{}, nil
}

func (f *fakeMessageService) SendSession(_ context.Context, senderID, sessionID, content string) (*domain.Message, error) {
	f.sessionCalls = append(f.sessionCalls, senderID+"->"+sessionID+":"+content)
	return &domain.Message{}, nil
}

func (f *fakeMessageService) Conversation(context.Context, string, string, repositories.MessagePage) ([]domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageService) SessionMessages(context.Context, string, string, repositories.MessagePage) ([]domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageService) MarkConversationRead(context.Context, string, string) error {
	return nil
}

func testGateway(t *testing.T) (*Gateway, *realtime.Presence, *realtime.Router, *fakeMessageService) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	presence := realtime.NewPresence(log, nil)
	router := realtime.NewRouter(log)
	messages := &fakeMessageService{}
	gateway := NewGateway(log, presence, router, nil, messages, 8, nil)
	return gateway, presence, router, messages
}

func testConn(userID string) *Client {
	return &Client{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		userID: userID,
		send:   make(chan []byte, 8),
	}
}

func frame(t *testing.T, name string, data any) []byte {
	t.Helper()
	payload, err := event.Encode(name, data)
	require.NoError(t, err)
	return payload
}

func received(t *testing.T, client *Client) event.Envelope {
	t.Helper()
	select {
	case payload := <-client.send:
		var envelope event.Envelope
		require.NoError(t, json.Unmarshal(payload, &envelope))
		return envelope
	default:
		t.Fatal("expected a queued frame")
		return event.Envelope{}
	}
}

func Test_Identify_Joins_Presence_And_Topics(t *testing.T) {
	req := require.New(t)
	gateway, presence, router, _ := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, frame(t, event.Identify, event.IdentifyPayload{UserID: "alice"}))

	req.Len(presence.LiveConnections("alice"), 1)

	// Subscribed to the presence topic: alice sees her own online broadcast.
	envelope := received(t, client)
	req.Equal(event.PresenceChanged, envelope.Event)
	var p event.PresencePayload
	req.NoError(json.Unmarshal(envelope.Data, &p))
	req.Equal("alice", p.UserID)
	req.True(p.Online)

	// Subscribed to the private topic.
	router.Publish(realtime.UserTopic("alice"), []byte(`{"event":"ping"}`))
	req.Equal("ping", received(t, client).Event)
}

func Test_Identify_Rejects_Foreign_Identity(t *testing.T) {
	req := require.New(t)
	gateway, presence, _, _ := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, frame(t, event.Identify, event.IdentifyPayload{UserID: "mallory"}))

	req.Empty(presence.LiveConnections("alice"))
	req.Empty(presence.LiveConnections("mallory"))
}

func Test_DirectMessage_Uses_Connection_Identity(t *testing.T) {
	req := require.New(t)
	gateway, _, _, messages := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, frame(t, event.MessageSend, event.DirectMessagePayload{
		RecipientID: "bob",
		Content:     "hello",
	}))

	req.Equal([]string{"alice->bob:hello"}, messages.directCalls)
}

func Test_Session_Subscribe_And_Message(t *testing.T) {
	req := require.New(t)
	gateway, _, router, messages := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, frame(t, event.SessionSubscribe, event.SessionRef{SessionID: "s1"}))
	router.Publish(realtime.SessionTopic("s1"), []byte(`{"event":"probe"}`))
	req.Equal("probe", received(t, client).Event)

	gateway.handle(client, frame(t, event.SessionMessage, event.SessionMessagePayload{
		SessionID: "s1",
		Content:   "glhf",
	}))
	req.Equal([]string{"alice->s1:glhf"}, messages.sessionCalls)

	gateway.handle(client, frame(t, event.SessionUnsubscribe, event.SessionRef{SessionID: "s1"}))
	router.Publish(realtime.SessionTopic("s1"), []byte(`{"event":"after"}`))
	req.Empty(client.send)
}

func Test_Typing_Relay(t *testing.T) {
	req := require.New(t)
	gateway, _, router, _ := testGateway(t)
	alice := testConn("alice")
	bob := testConn("bob")
	router.Subscribe(bob, realtime.UserTopic("bob"))

	gateway.handle(alice, frame(t, event.TypingStart, event.TypingPayload{RecipientID: "bob"}))

	envelope := received(t, bob)
	req.Equal(event.TypingUser, envelope.Event)
	var p event.TypingUserPayload
	req.NoError(json.Unmarshal(envelope.Data, &p))
	req.Equal("alice", p.UserID)
	req.True(p.Typing)
}

func Test_Malformed_And_Unknown_Frames_Are_Ignored(t *testing.T) {
	req := require.New(t)
	gateway, presence, _, messages := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, []byte(`not json`))
	gateway.handle(client, []byte(`{"event":"no:such:event"}`))
	gateway.handle(client, frame(t, event.MessageSend, map[string]int{"recipientId": 7}))

	req.Empty(presence.LiveConnections("alice"))
	req.Empty(messages.directCalls)
	req.Empty(client.send)
}

func Test_Teardown_Removes_Presence_And_Subscriptions(t *testing.T) {
	req := require.New(t)
	gateway, presence, router, _ := testGateway(t)
	client := testConn("alice")

	gateway.handle(client, frame(t, event.Identify, nil))
	req.Len(presence.LiveConnections("alice"), 1)

	gateway.teardown(client)

	req.Empty(presence.LiveConnections("alice"))
	router.Publish(realtime.UserTopic("alice"), []byte(`{"event":"late"}`))
	// The queue is closed and detached; nothing new arrives.
	_, open := <-client.send
	req.True(open) // the earlier presence broadcast is still queued
	_, open = <-client.send
	req.False(open)
}
