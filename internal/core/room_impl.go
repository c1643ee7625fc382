package core

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type member struct {
	participant domain.Participant
	conn        ConnID
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
// Once its last member leaves it is closed for good.
type roomImpl struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members map[domain.ParticipantID]*member
	closed  bool
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{
		id:      id,
		members: make(map[domain.ParticipantID]*member),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(p *domain.Participant, conn ConnID, onAdded JoinHook) ([]ParticipantDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomClosed
	}
	if _, ok := r.members[p.ID]; ok {
		return nil, domain.ErrDuplicateParticipant
	}
	before := r.snapshotLocked()
	peers := r.recipientsLocked("")
	m := &member{participant: *p, conn: conn}
	r.members[p.ID] = m
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("participant", string(p.ID)).Str("conn", string(conn)).Int("members", len(r.members)).Msg("member added")
	if onAdded != nil {
		onAdded(toDTO(m), before, peers)
	}
	return before, nil
}

func (r *roomImpl) RemoveMember(id domain.ParticipantID, onRemoved LeaveHook) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false, false
	}
	delete(r.members, id)
	if len(r.members) == 0 {
		r.closed = true
	}
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("participant", string(id)).Int("members", len(r.members)).Msg("member removed")
	if onRemoved != nil {
		onRemoved(r.recipientsLocked(""))
	}
	return true, r.closed
}

func (r *roomImpl) SetFlag(id domain.ParticipantID, f domain.Flag, v bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return false
	}
	m.participant.Media.Set(f, v)
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("participant", string(id)).Stringer("flag", f).Bool("value", v).Msg("flag updated")
	return true
}

func (r *roomImpl) Member(id domain.ParticipantID) (ParticipantDTO, ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return ParticipantDTO{}, "", false
	}
	return toDTO(m), m.conn, true
}

func (r *roomImpl) Recipients(exclude domain.ParticipantID) []Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recipientsLocked(exclude)
}

func (r *roomImpl) recipientsLocked(exclude domain.ParticipantID) []Recipient {
	out := make([]Recipient, 0, len(r.members))
	for id, m := range r.members {
		if id == exclude {
			continue
		}
		out = append(out, Recipient{Participant: id, Conn: m.conn})
	}
	return out
}

func (r *roomImpl) MembersSnapshot() []ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *roomImpl) snapshotLocked() []ParticipantDTO {
	out := make([]ParticipantDTO, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, toDTO(m))
	}
	slices.SortFunc(out, func(a, b ParticipantDTO) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func toDTO(m *member) ParticipantDTO {
	return ParticipantDTO{
		ID:          m.participant.ID,
		DisplayName: m.participant.DisplayName,
		MediaState:  m.participant.Media,
	}
}
