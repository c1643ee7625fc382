package core

import (
	"errors"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/samber/lo"
)

// ErrRoomClosed is returned by a room that lost its last member and was
// scheduled for removal; callers must look the room up again.
var ErrRoomClosed = errors.New("room closed")

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []ConnID
}

// ParticipantDTO is a read-only view for APIs (no transport fields).
type ParticipantDTO struct {
	ID          domain.ParticipantID `json:"participantId"`
	DisplayName string               `json:"displayName"`
	domain.MediaState
}

// Roster is the wire shape of a participant list: keyed by participant id.
type Roster map[domain.ParticipantID]ParticipantDTO

func NewRoster(list []ParticipantDTO) Roster {
	return lo.KeyBy(list, func(p ParticipantDTO) domain.ParticipantID { return p.ID })
}

// Recipient is a deliverable room member.
type Recipient struct {
	Participant domain.ParticipantID
	Conn        ConnID
}

// JoinHook runs under the room lock right after an insert. It receives the
// new member, the members present before it and their transports. It must
// not block or call back into the room.
type JoinHook func(joined ParticipantDTO, before []ParticipantDTO, peers []Recipient)

// LeaveHook runs under the room lock right after a removal with the members
// that remain. Same restrictions as JoinHook.
type LeaveHook func(rest []Recipient)

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	MembersSnapshot() []ParticipantDTO

	// AddMember inserts p and returns the members present before the insert.
	// A non-nil onAdded sees the change before any later one is applied.
	AddMember(p *domain.Participant, conn ConnID, onAdded JoinHook) ([]ParticipantDTO, error)
	// RemoveMember reports whether p was removed and whether the room is now empty.
	// A non-nil onRemoved runs only when p was a member.
	RemoveMember(id domain.ParticipantID, onRemoved LeaveHook) (removed bool, empty bool)
	SetFlag(id domain.ParticipantID, f domain.Flag, v bool) bool
	Member(id domain.ParticipantID) (ParticipantDTO, ConnID, bool)
	Recipients(exclude domain.ParticipantID) []Recipient
}

type RoomInfo struct {
	ID               domain.RoomID `json:"id"`
	ParticipantCount int           `json:"participant_count"`
}
