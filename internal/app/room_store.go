package app

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomStore owns every room and participant record.
// The map lock only guards room creation and deletion; membership changes
// take the lock of the room they touch, so unrelated rooms never contend.
type RoomStore struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]core.RoomService
	metrics *Metrics
}

func NewRoomStore(m *Metrics) *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]core.RoomService), metrics: m}
}

// Join creates the room if absent and inserts the participant with default
// flags. It returns the participants present before the insert.
// onJoined, if set, runs under the room lock so whatever it queues is ordered
// against every other membership change in the room.
func (s *RoomStore) Join(roomID domain.RoomID, id domain.ParticipantID, displayName string, conn core.ConnID, onJoined core.JoinHook) ([]core.ParticipantDTO, error) {
	if err := domain.ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	p, err := domain.NewParticipant(id, displayName)
	if err != nil {
		return nil, err
	}
	for {
		room := s.getOrCreate(roomID)
		before, err := room.AddMember(p, conn, onJoined)
		if errors.Is(err, core.ErrRoomClosed) {
			// Lost a race with the last leave; the room is on its way out.
			s.drop(roomID, room)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("join room %s: %w", roomID, err)
		}
		s.metrics.participantJoined()
		return before, nil
	}
}

// Leave removes the participant and reports whether the room was deleted.
// Leaving a non-member is a no-op returning false and onLeft is not called.
func (s *RoomStore) Leave(roomID domain.RoomID, id domain.ParticipantID, onLeft core.LeaveHook) bool {
	room, ok := s.get(roomID)
	if !ok {
		return false
	}
	removed, empty := room.RemoveMember(id, onLeft)
	if removed {
		s.metrics.participantLeft()
	}
	if !empty {
		return false
	}
	s.drop(roomID, room)
	return true
}

// SetFlag updates one media flag. A missing participant is silently ignored.
func (s *RoomStore) SetFlag(roomID domain.RoomID, id domain.ParticipantID, f domain.Flag, v bool) bool {
	room, ok := s.get(roomID)
	if !ok {
		return false
	}
	return room.SetFlag(id, f, v)
}

// ResolveConnection translates a logical recipient into its transport target.
func (s *RoomStore) ResolveConnection(roomID domain.RoomID, id domain.ParticipantID) (core.ConnID, bool) {
	room, ok := s.get(roomID)
	if !ok {
		return "", false
	}
	_, conn, ok := room.Member(id)
	return conn, ok
}

func (s *RoomStore) Participant(roomID domain.RoomID, id domain.ParticipantID) (core.ParticipantDTO, bool) {
	room, ok := s.get(roomID)
	if !ok {
		return core.ParticipantDTO{}, false
	}
	dto, _, ok := room.Member(id)
	return dto, ok
}

// Recipients lists every member of the room except exclude.
func (s *RoomStore) Recipients(roomID domain.RoomID, exclude domain.ParticipantID) []core.Recipient {
	room, ok := s.get(roomID)
	if !ok {
		return nil
	}
	return room.Recipients(exclude)
}

func (s *RoomStore) Participants(roomID domain.RoomID) ([]core.ParticipantDTO, bool) {
	room, ok := s.get(roomID)
	if !ok {
		return nil, false
	}
	return room.MembersSnapshot(), true
}

func (s *RoomStore) Info(roomID domain.RoomID) (core.RoomInfo, bool) {
	room, ok := s.get(roomID)
	if !ok {
		return core.RoomInfo{}, false
	}
	return core.RoomInfo{ID: roomID, ParticipantCount: room.MemberCount()}, true
}

func (s *RoomStore) List() []core.RoomInfo {
	s.mu.RLock()
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for id, r := range s.rooms {
		out = append(out, core.RoomInfo{ID: id, ParticipantCount: r.MemberCount()})
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *RoomStore) get(id domain.RoomID) (core.RoomService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

func (s *RoomStore) getOrCreate(id domain.RoomID) core.RoomService {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		return room
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[id]; ok {
		return room
	}
	room = core.NewRoomService(id)
	s.rooms[id] = room
	s.metrics.roomOpened()
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

// drop deletes the entry only if it still points at the given room instance.
func (s *RoomStore) drop(id domain.RoomID, room core.RoomService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[id]; ok && cur == room {
		delete(s.rooms, id)
		s.metrics.roomClosed()
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
	}
}
