package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"gaming-hub/domain"
	"gaming-hub/errors"
	"gaming-hub/repositories"
)

func TestNotificationCreate(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	store := NewNotificationStore(db)
	n := &domain.Notification{
		ID:          "n1",
		RecipientID: "alice",
		SenderID:    "bob",
		Type:        domain.NotificationSessionInvite,
		Title:       "New join request",
		CreatedAt:   time.Now().Truncate(time.Second),
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(n.ID, n.RecipientID, n.SenderID, n.Type, n.Title, n.Message,
			n.RelatedSessionID, n.Read, n.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req.NoError(store.Create(context.Background(), n))
	req.NoError(mock.ExpectationsWereMet())
}

func TestNotificationList_UnreadOnly(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	store := NewNotificationStore(db)
	created := time.Now().Truncate(time.Second)

	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs("alice", false).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow("n1", "alice", "bob", domain.NotificationNewMessage, "New message",
				"hello", "", false, created, nil))

	got, err := store.ListByRecipient(context.Background(), "alice",
		repositories.NotificationPage{UnreadOnly: true, Limit: 10})
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("n1", got[0].ID)
	req.False(got[0].Read)
	req.Nil(got[0].ReadAt)
	req.NoError(mock.ExpectationsWereMet())
}

func TestNotificationMarkRead_Scoped(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	store := NewNotificationStore(db)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("n1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	req.NoError(store.MarkRead(context.Background(), "n1", "alice"))

	// Another user touching the same id matches nothing.
	mock.ExpectExec("UPDATE notifications").
		WithArgs("n1", "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))
	req.ErrorIs(store.MarkRead(context.Background(), "n1", "bob"), errors.ErrNotFound)
	req.NoError(mock.ExpectationsWereMet())
}

func TestUnreadCount(t *testing.T) {
	req := require.New(t)
	db, mock, err := sqlmock.New()
	req.NoError(err)
	defer db.Close()

	store := NewNotificationStore(db)

	mock.ExpectQuery("SELECT count").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := store.UnreadCount(context.Background(), "alice")
	req.NoError(err)
	req.Equal(3, count)
	req.NoError(mock.ExpectationsWereMet())
}
