package domain

// Presence is the room-scoped lifecycle of a connection's participant:
// Absent -> Joining -> Active -> Leaving -> Absent.
type Presence int

const (
	PresenceAbsent Presence = iota
	PresenceJoining
	PresenceActive
	PresenceLeaving
)

func (p Presence) String() string {
	switch p {
	case PresenceAbsent:
		return "absent"
	case PresenceJoining:
		return "joining"
	case PresenceActive:
		return "active"
	case PresenceLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}
