package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/mocks"
)

func Test_SendRequest_Notifies_Target(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	dispatcher := &fakeDispatcher{}
	service := NewFriendService(slog.Default(), users, dispatcher)
	ctx := context.Background()

	users.EXPECT().Get(ctx, "bob").Return(&domain.User{ID: "bob"}, nil)
	users.EXPECT().AreFriends(ctx, "alice", "bob").Return(false, nil)
	users.EXPECT().CreateFriendRequest(ctx, "alice", "bob").Return(nil)

	req.NoError(service.SendRequest(ctx, "alice", "bob"))

	sent := dispatcher.byType(domain.NotificationFriendRequest)
	req.Len(sent, 1)
	req.Equal([]string{"bob"}, sent[0].RecipientIDs)
	req.Equal("alice", sent[0].SenderID)
}

func Test_SendRequest_Rejections(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	dispatcher := &fakeDispatcher{}
	service := NewFriendService(slog.Default(), users, dispatcher)
	ctx := context.Background()

	t.Run("Should reject self request before touching the store", func(t *testing.T) {
		err := service.SendRequest(ctx, "alice", "alice")
		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("Should reject unknown target", func(t *testing.T) {
		users.EXPECT().Get(ctx, "ghost").Return(nil, errors.ErrNotFound)
		err := service.SendRequest(ctx, "alice", "ghost")
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("Should reject existing friendship", func(t *testing.T) {
		users.EXPECT().Get(ctx, "bob").Return(&domain.User{ID: "bob"}, nil)
		users.EXPECT().AreFriends(ctx, "alice", "bob").Return(true, nil)
		err := service.SendRequest(ctx, "alice", "bob")
		req.ErrorIs(err, errors.ErrAlreadyFriends)
	})

	t.Run("Should surface duplicate pending request", func(t *testing.T) {
		users.EXPECT().Get(ctx, "bob").Return(&domain.User{ID: "bob"}, nil)
		users.EXPECT().AreFriends(ctx, "alice", "bob").Return(false, nil)
		users.EXPECT().CreateFriendRequest(ctx, "alice", "bob").Return(errors.ErrAlreadyRequested)
		err := service.SendRequest(ctx, "alice", "bob")
		req.ErrorIs(err, errors.ErrAlreadyRequested)
	})

	req.Empty(dispatcher.events)
}

func Test_AcceptRequest_Notifies_Requester(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	dispatcher := &fakeDispatcher{}
	service := NewFriendService(slog.Default(), users, dispatcher)
	ctx := context.Background()

	users.EXPECT().AcceptFriendRequest(ctx, "bob", "alice").Return(nil)

	req.NoError(service.AcceptRequest(ctx, "bob", "alice"))

	accepted := dispatcher.byType(domain.NotificationFriendAccepted)
	req.Len(accepted, 1)
	req.Equal([]string{"alice"}, accepted[0].RecipientIDs)
	req.Equal("bob", accepted[0].SenderID)
}

func Test_AcceptRequest_Without_Pending_Request(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	dispatcher := &fakeDispatcher{}
	service := NewFriendService(slog.Default(), users, dispatcher)
	ctx := context.Background()

	users.EXPECT().AcceptFriendRequest(ctx, "bob", "alice").Return(errors.ErrNotFound)

	err := service.AcceptRequest(ctx, "bob", "alice")
	req.ErrorIs(err, errors.ErrNotFound)
	req.Empty(dispatcher.events)
}
