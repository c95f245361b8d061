package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"gaming-hub/errors"
	"gaming-hub/mocks"
	"gaming-hub/repositories"
)

func Test_List_Clamps_Page_Limit(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockINotificationRepository(ctrl)
	service := NewNotificationService(slog.Default(), repo)
	ctx := context.Background()

	repo.EXPECT().ListByRecipient(ctx, "alice", repositories.NotificationPage{Limit: 50}).Return(nil, nil)
	_, err := service.List(ctx, "alice", repositories.NotificationPage{})
	req.NoError(err)

	repo.EXPECT().ListByRecipient(ctx, "alice", repositories.NotificationPage{Limit: 50, UnreadOnly: true}).Return(nil, nil)
	_, err = service.List(ctx, "alice", repositories.NotificationPage{Limit: 9999, UnreadOnly: true})
	req.NoError(err)
}

func Test_Acknowledge_Is_Recipient_Scoped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockINotificationRepository(ctrl)
	service := NewNotificationService(slog.Default(), repo)
	ctx := context.Background()

	repo.EXPECT().MarkRead(ctx, "n1", "alice").Return(nil)
	req.NoError(service.MarkRead(ctx, "n1", "alice"))

	repo.EXPECT().MarkRead(ctx, "n1", "bob").Return(errors.ErrNotFound)
	req.ErrorIs(service.MarkRead(ctx, "n1", "bob"), errors.ErrNotFound)

	repo.EXPECT().MarkAllRead(ctx, "alice").Return(nil)
	req.NoError(service.MarkAllRead(ctx, "alice"))

	repo.EXPECT().Delete(ctx, "n1", "alice").Return(nil)
	req.NoError(service.Delete(ctx, "n1", "alice"))
}
