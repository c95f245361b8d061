package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gaming-hub/contract"
	"gaming-hub/domain"
	"gaming-hub/domain/event"
	"gaming-hub/errors"
	"gaming-hub/mocks"
	"gaming-hub/moderation"
	"gaming-hub/realtime"
	"gaming-hub/repositories"
)

const testMaxContent = 500

type messageFixture struct {
	service    *MessageService
	messages   *mocks.MockIMessageRepository
	sessions   *mocks.MockISessionRepository
	presence   *mocks.MockPresenceRegistry
	router     *mocks.MockRouter
	dispatcher *fakeDispatcher
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &messageFixture{
		messages:   mocks.NewMockIMessageRepository(ctrl),
		sessions:   mocks.NewMockISessionRepository(ctrl),
		presence:   mocks.NewMockPresenceRegistry(ctrl),
		router:     mocks.NewMockRouter(ctrl),
		dispatcher: &fakeDispatcher{},
	}

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', slog.Default())
	require.NoError(t, err)

	f.service = NewMessageService(slog.Default(), f.messages, f.sessions,
		f.dispatcher, f.presence, f.router, moderator, nil, testMaxContent)
	return f
}

func decodeMessage(t *testing.T, payload []byte, wantEvent string) domain.Message {
	t.Helper()
	var envelope event.Envelope
	require.NoError(t, json.Unmarshal(payload, &envelope))
	require.Equal(t, wantEvent, envelope.Event)
	var m domain.Message
	require.NoError(t, json.Unmarshal(envelope.Data, &m))
	return m
}

func Test_SendDirect_Censors_Persists_And_Pushes(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	var stored *domain.Message
	f.messages.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, m *domain.Message) error {
			stored = m
			return nil
		})
	f.presence.EXPECT().LiveConnections("bob").Return([]contract.Conn{mocks.NewMockConn(gomock.NewController(t))})
	f.router.EXPECT().Publish(realtime.UserTopic("bob"), gomock.Any()).Do(
		func(_ string, payload []byte) {
			m := decodeMessage(t, payload, event.MessageReceived)
			req.Equal("The ****** is here", m.Content)
		})

	message, err := f.service.SendDirect(ctx, "alice", "bob", "The badger is here")
	req.NoError(err)
	req.Equal("The ****** is here", message.Content)
	req.Equal(domain.MessageDirect, message.Type)
	req.NotNil(stored)
	req.Equal(stored.ID, message.ID)
	req.Empty(f.dispatcher.events)
}

func Test_SendDirect_Offline_Recipient_Gets_Durable_Notification(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	f.messages.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	f.presence.EXPECT().LiveConnections("bob").Return(nil)
	// No router.Publish expectation: an offline recipient gets no live push.

	_, err := f.service.SendDirect(ctx, "alice", "bob", "see you at 9")
	req.NoError(err)

	sent := f.dispatcher.byType(domain.NotificationNewMessage)
	req.Len(sent, 1)
	req.Equal([]string{"bob"}, sent[0].RecipientIDs)
	req.Equal("alice", sent[0].SenderID)
}

func Test_SendDirect_Validation(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.service.SendDirect(ctx, "alice", "alice", "hi")
	req.ErrorIs(err, errors.ErrValidation)

	_, err = f.service.SendDirect(ctx, "alice", "bob", "   ")
	req.ErrorIs(err, errors.ErrValidation)

	_, err = f.service.SendDirect(ctx, "alice", "bob", strings.Repeat("x", testMaxContent+1))
	req.ErrorIs(err, errors.ErrValidation)
}

func Test_SendSession_Member_Only(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	session := &domain.Session{
		ID:     "s1",
		HostID: "host",
		Participants: []domain.Participant{
			{UserID: "alice", Status: domain.ParticipantConfirmed},
		},
	}
	f.sessions.EXPECT().Get(ctx, "s1").Return(session, nil).Times(2)

	_, err := f.service.SendSession(ctx, "stranger", "s1", "gg")
	req.ErrorIs(err, errors.ErrForbidden)

	f.messages.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	f.router.EXPECT().Publish(realtime.SessionTopic("s1"), gomock.Any()).Do(
		func(_ string, payload []byte) {
			m := decodeMessage(t, payload, event.SessionMessageReceived)
			req.Equal("s1", m.SessionID)
			req.Equal(domain.MessageSession, m.Type)
		})

	_, err = f.service.SendSession(ctx, "alice", "s1", "gg")
	req.NoError(err)
}

func Test_SessionMessages_Private_Access(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	session := &domain.Session{ID: "s1", HostID: "host", IsPrivate: true}
	f.sessions.EXPECT().Get(ctx, "s1").Return(session, nil).Times(2)

	_, err := f.service.SessionMessages(ctx, "stranger", "s1", repositories.MessagePage{})
	req.ErrorIs(err, errors.ErrForbidden)

	f.messages.EXPECT().SessionMessages(ctx, "s1", repositories.MessagePage{}).Return(nil, nil)
	_, err = f.service.SessionMessages(ctx, "host", "s1", repositories.MessagePage{})
	req.NoError(err)
}

func Test_MarkConversationRead_Scopes_To_Viewer(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()

	// Only messages the other user sent to the viewer are flagged.
	f.messages.EXPECT().MarkConversationRead(ctx, "bob", "alice").Return(nil)
	req.NoError(f.service.MarkConversationRead(ctx, "alice", "bob"))
}
