package domain

import "errors"

var (
	ErrDisplayNameTooLong   = errors.New("display name too long")
	ErrDisplayNameEmpty     = errors.New("display name empty")
	ErrParticipantIDEmpty   = errors.New("participant id empty")
	ErrParticipantIDTooLong = errors.New("participant id too long")
	ErrRoomIDEmpty          = errors.New("room id empty")
	ErrRoomIDTooLong        = errors.New("room id too long")
	ErrMessageEmpty         = errors.New("message empty")
)

var (
	// ErrDuplicateParticipant: the participant id is already present in the room.
	ErrDuplicateParticipant = errors.New("participant already in room")
	// ErrUnknownRecipient: a relay target is not a current member of the sender's room.
	ErrUnknownRecipient = errors.New("unknown recipient")
	// ErrAlreadyBound: the connection already joined a room.
	ErrAlreadyBound = errors.New("connection already bound")
	// ErrNotBound: the connection has not joined a room.
	ErrNotBound = errors.New("connection not bound")
	// ErrUnknownConnection: the connection id was never registered or is gone.
	ErrUnknownConnection = errors.New("unknown connection")
)
