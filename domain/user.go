package domain

import "time"

// User is a gamer profile. Friendship is symmetric; FriendIDs holds plain
// identifier references resolved against the store, never object pointers.
type User struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Name            string     `json:"name"`
	Platforms       []Platform `json:"platforms,omitempty"`
	Games           []string   `json:"games,omitempty"`
	FriendIDs       []string   `json:"friends,omitempty"`
	Online          bool       `json:"online"`
	CurrentActivity string     `json:"currentActivity,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// FriendRequest is a pending, directed friendship offer.
type FriendRequest struct {
	ID        string    `json:"id"`
	FromID    string    `json:"from"`
	ToID      string    `json:"to"`
	CreatedAt time.Time `json:"createdAt"`
}
