package utils

import "github.com/google/uuid"

const roomIDLength = 8

// NewSessionID returns a random UUID string for a freshly opened connection.
func NewSessionID() string {
	return uuid.NewString()
}

// NewRoomID returns a short room code: the leading hex characters of a random UUID.
// Room codes are meant to be typed or shared by hand, so they stay short.
func NewRoomID() string {
	return uuid.NewString()[:roomIDLength]
}
