package domain

const MaxRoomIDLen = 64

// RoomID is an opaque, client-chosen room key.
type RoomID string
