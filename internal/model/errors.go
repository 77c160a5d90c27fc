package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrServerFull    = errors.New("server room limit reached")
	ErrNotInRoom     = errors.New("player is not in a room")
	ErrAlreadyInRoom = errors.New("connection already belongs to a room")
	ErrNotHost       = errors.New("player is not the host")
	ErrNotVoting     = errors.New("room is not in a voting round")

	// Validation errors
	ErrInvalidName     = errors.New("invalid display name")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrInvalidCard     = errors.New("card is not in the deck")

	// Transport errors
	ErrRateLimited      = errors.New("too many messages")
	ErrMalformedMessage = errors.New("malformed message")
)
