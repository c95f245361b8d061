// Package domain contains core concepts of the gaming hub.
// This file defines the Session entity and its capacity invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type Platform string

const (
	PlatformPC     Platform = "PC"
	PlatformPS5    Platform = "PS5"
	PlatformXbox   Platform = "Xbox"
	PlatformSwitch Platform = "Switch"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformPC, PlatformPS5, PlatformXbox, PlatformSwitch:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionOpen       SessionStatus = "open"
	SessionFull       SessionStatus = "full"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether no further status transition may leave s.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantDeclined  ParticipantStatus = "declined"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantPending, ParticipantConfirmed, ParticipantDeclined:
		return true
	}
	return false
}

type Participant struct {
	UserID   string            `json:"user"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// Session is a scheduled group-gaming meetup. The host owns the session and
// is never listed in Participants. A user appears at most once in
// Participants, and the number of confirmed participants never exceeds
// MaxParticipants.
type Session struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Game            string        `json:"game"`
	Platform        Platform      `json:"platform"`
	HostID          string        `json:"host"`
	Participants    []Participant `json:"participants"`
	MaxParticipants int           `json:"maxParticipants"`
	ScheduledAt     time.Time     `json:"scheduledAt"`
	Duration        int           `json:"duration"` // minutes
	Description     string        `json:"description,omitempty"`
	Status          SessionStatus `json:"status"`
	IsPrivate       bool          `json:"isPrivate"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ConfirmedCount is the number of participants holding the confirmed status.
// The open/full status is derived from this count.
func (s *Session) ConfirmedCount() int {
	n := 0
	for _, p := range s.Participants {
		if p.Status == ParticipantConfirmed {
			n++
		}
	}
	return n
}

// ActiveCount is the number of participants holding a slot: pending and
// confirmed. Declined participants free their slot. Admission control
// compares this against MaxParticipants, so a burst of concurrent joins can
// never oversubscribe a session even before the host confirms anyone.
func (s *Session) ActiveCount() int {
	n := 0
	for _, p := range s.Participants {
		if p.Status != ParticipantDeclined {
			n++
		}
	}
	return n
}

func (s *Session) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Participant returns a pointer into the participant list, or nil.
func (s *Session) Participant(userID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i]
		}
	}
	return nil
}

// DeriveStatus recomputes the open/full status from the confirmed count.
// Terminal statuses are never left.
func (s *Session) DeriveStatus() {
	if s.Status.Terminal() || s.Status == SessionInProgress {
		return
	}
	if s.ConfirmedCount() >= s.MaxParticipants {
		s.Status = SessionFull
	} else {
		s.Status = SessionOpen
	}
}

// CanAccess reports whether userID may see this session. Private sessions
// are visible to the host and participants only.
func (s *Session) CanAccess(userID string) bool {
	if !s.IsPrivate {
		return true
	}
	return s.HostID == userID || s.HasParticipant(userID)
}
