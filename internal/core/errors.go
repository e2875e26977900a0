package core

import "errors"

// Error codes sent to clients alongside the human-readable message.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeAlreadyInRoom = "already_in_room"
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeInvalidName   = "invalid_name"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotAMember      = errors.New("not a member")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyName       = errors.New("name is empty")
	ErrHubStopped      = errors.New("hub stopped")
	ErrInconsistent    = errors.New("inconsistent state")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
