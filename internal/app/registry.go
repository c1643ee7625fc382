package app

import (
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Binding is the (room, participant) pair a connection joined as.
type Binding struct {
	Room        domain.RoomID
	Participant domain.ParticipantID
}

type connEntry struct {
	conn     core.SignalConnection
	presence domain.Presence
	binding  Binding
}

// Registry is the connection registry: it maps a transport connection to the
// room and participant it represents. It never touches the room store.
type Registry struct {
	mu      sync.RWMutex
	conns   map[core.ConnID]*connEntry
	metrics *Metrics
}

func NewRegistry(m *Metrics) *Registry {
	return &Registry{
		conns:   make(map[core.ConnID]*connEntry),
		metrics: m,
	}
}

// Register issues a fresh connection id; the connection starts unbound.
func (r *Registry) Register(conn core.SignalConnection) core.ConnID {
	id := core.ConnID(uuid.NewString())
	r.mu.Lock()
	r.conns[id] = &connEntry{conn: conn, presence: domain.PresenceAbsent}
	r.mu.Unlock()
	r.metrics.connectionOpened()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("registered connection")
	return id
}

// BeginJoin moves an unbound connection to Joining.
// A connection that is joining, joined or leaving gets ErrAlreadyBound.
func (r *Registry) BeginJoin(id core.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.ErrUnknownConnection
	}
	if e.presence != domain.PresenceAbsent {
		return domain.ErrAlreadyBound
	}
	e.presence = domain.PresenceJoining
	return nil
}

// AbortJoin returns a Joining connection to Absent after a refused join.
func (r *Registry) AbortJoin(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.presence == domain.PresenceJoining {
		e.presence = domain.PresenceAbsent
	}
}

// Bind records the association after a successful join.
// Re-binding the same pair is a no-op; any other pair fails with ErrAlreadyBound.
func (r *Registry) Bind(id core.ConnID, room domain.RoomID, participant domain.ParticipantID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.ErrUnknownConnection
	}
	want := Binding{Room: room, Participant: participant}
	switch e.presence {
	case domain.PresenceActive, domain.PresenceLeaving:
		if e.binding == want {
			return nil
		}
		return domain.ErrAlreadyBound
	}
	e.binding = want
	e.presence = domain.PresenceActive
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(room)).Str("participant", string(participant)).Msg("bound connection")
	return nil
}

// BeginLeave moves an Active connection to Leaving and returns its binding.
func (r *Registry) BeginLeave(id core.ConnID) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok || e.presence != domain.PresenceActive {
		return Binding{}, false
	}
	e.presence = domain.PresenceLeaving
	return e.binding, true
}

// FinishLeave completes a leave: the connection is unbound and may join again.
func (r *Registry) FinishLeave(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok && e.presence == domain.PresenceLeaving {
		e.presence = domain.PresenceAbsent
		e.binding = Binding{}
		log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
	}
}

// Unbind drops the association and returns it. Idempotent: a second call
// returns false.
func (r *Registry) Unbind(id core.ConnID) (Binding, bool) {
	b, ok := r.BeginLeave(id)
	if ok {
		r.FinishLeave(id)
	}
	return b, ok
}

// Unregister forgets the connection entirely and returns the binding it held,
// if it was an active participant. Safe to call repeatedly.
func (r *Registry) Unregister(id core.ConnID) (Binding, bool) {
	r.mu.Lock()
	e, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()
	if !ok {
		return Binding{}, false
	}
	r.metrics.connectionClosed()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Stringer("presence", e.presence).Msg("unregistered connection")
	if e.presence != domain.PresenceActive {
		return Binding{}, false
	}
	return e.binding, true
}

// Lookup returns the binding of an Active connection.
func (r *Registry) Lookup(id core.ConnID) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.presence != domain.PresenceActive {
		return Binding{}, false
	}
	return e.binding, true
}

func (r *Registry) Presence(id core.ConnID) domain.Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.presence
	}
	return domain.PresenceAbsent
}

func (r *Registry) Connection(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
