package errors

import "fmt"

var (
	// Domain outcomes returned synchronously to callers. None are retried.
	ErrValidation    = fmt.Errorf("validation failed")
	ErrNotFound      = fmt.Errorf("not found")
	ErrAlreadyJoined = fmt.Errorf("already joined")
	ErrSessionFull   = fmt.Errorf("session is full")
	ErrForbidden     = fmt.Errorf("forbidden")

	ErrAlreadyFriends   = fmt.Errorf("already friends")
	ErrAlreadyRequested = fmt.Errorf("friend request already sent")

	ErrUsernameTaken = fmt.Errorf("username already taken")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; login never reveals which.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// ErrStore wraps persistence I/O failures. The whole operation is
	// aborted and the cause stays opaque to clients.
	ErrStore = fmt.Errorf("storage failure")

	ErrInvalidToken   = fmt.Errorf("invalid or expired token")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
)
