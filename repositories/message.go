//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"

	"gaming-hub/domain"
)

type MessagePage struct {
	Limit  int
	Offset int
}

type IMessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	// Conversation returns the direct messages between two users, oldest
	// first within the requested page.
	Conversation(ctx context.Context, userA, userB string, page MessagePage) ([]domain.Message, error)
	SessionMessages(ctx context.Context, sessionID string, page MessagePage) ([]domain.Message, error)
	// MarkConversationRead flags every unread message from senderID to
	// recipientID as read.
	MarkConversationRead(ctx context.Context, senderID, recipientID string) error
}
