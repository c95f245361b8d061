//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"context"

	"gaming-hub/domain"
)

// SessionFilter narrows List results. ViewerID limits private sessions to
// those hosted by or joined by the viewer.
type SessionFilter struct {
	Status   string
	Platform string
	Game     string // case-insensitive substring
	ViewerID string
}

type ISessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// Get returns errors.ErrNotFound when no session has that id.
	Get(ctx context.Context, id string) (*domain.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]domain.Session, error)

	// AddParticipant appends a participant only while the session's
	// slot-holding participant count (pending + confirmed) is below its
	// capacity. The check and the insert run as one conditional statement on
	// the store, so concurrent joins cannot oversubscribe a session even
	// without the caller's per-session lock. Returns errors.ErrSessionFull
	// when the precondition fails and errors.ErrAlreadyJoined when the user
	// is already listed.
	AddParticipant(ctx context.Context, sessionID string, p domain.Participant) error

	// UpdateParticipantAndSessionStatus writes the participant's status and
	// the session's derived status atomically. Returns errors.ErrNotFound when
	// the participant row does not exist; in that case nothing is written.
	UpdateParticipantAndSessionStatus(ctx context.Context, sessionID, userID string, status domain.ParticipantStatus, sessionStatus domain.SessionStatus) error
	Delete(ctx context.Context, sessionID string) error
}
