package orch

import (
	"errors"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type JoinRequest struct {
	Room        domain.RoomID
	Participant domain.ParticipantID
	DisplayName string
}

// Join admits the connection into a room.
// The joiner gets the roster as it was before its insert; everyone else
// gets user-connected. Both are queued under the room lock, so no other
// membership event for the room can overtake them. A refused join leaves
// the connection unbound.
func (o *Orchestrator) Join(id core.ConnID, r JoinRequest) error {
	if err := o.Registry.BeginJoin(id); err != nil {
		return err
	}
	before, err := o.Rooms.Join(r.Room, r.Participant, r.DisplayName, id, func(joined core.ParticipantDTO, before []core.ParticipantDTO, peers []core.Recipient) {
		if err := o.Broadcaster.Notify(id, domain.EventRoomParticipants, core.NewRoster(before)); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("roster delivery failed")
		}
		o.Broadcaster.Fanout(r.Room, joined.ID, peers, domain.EventUserConnected, userConnected{
			ParticipantID: joined.ID,
			DisplayName:   joined.DisplayName,
		})
	})
	if err != nil {
		o.Registry.AbortJoin(id)
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("room", string(r.Room)).Str("participant", string(r.Participant)).Msg("join refused")
		return err
	}
	if err := o.Registry.Bind(id, r.Room, r.Participant); err != nil {
		o.Rooms.Leave(r.Room, r.Participant, o.announceLeft(r.Room, r.Participant))
		o.Registry.AbortJoin(id)
		return err
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(r.Room)).Str("participant", string(r.Participant)).Int("peers", len(before)).Msg("joined")
	return nil
}

// Leave removes the participant but keeps the transport open; the connection
// may join again afterwards.
func (o *Orchestrator) Leave(id core.ConnID) error {
	b, ok := o.Registry.BeginLeave(id)
	if !ok {
		return domain.ErrNotBound
	}
	o.teardown(id, b)
	o.Registry.FinishLeave(id)
	if err := o.Broadcaster.Notify(id, domain.EventLeft, nil); err != nil && !errors.Is(err, core.ErrConnectionClosed) {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("left ack failed")
	}
	return nil
}

// teardown removes the membership and tells the rest of the room.
func (o *Orchestrator) teardown(id core.ConnID, b app.Binding) {
	deleted := o.Rooms.Leave(b.Room, b.Participant, o.announceLeft(b.Room, b.Participant))
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(b.Room)).Str("participant", string(b.Participant)).Bool("room_deleted", deleted).Msg("left")
}

// announceLeft queues user-disconnected to whoever remains, under the room lock.
func (o *Orchestrator) announceLeft(room domain.RoomID, pid domain.ParticipantID) core.LeaveHook {
	return func(rest []core.Recipient) {
		o.Broadcaster.Fanout(room, pid, rest, domain.EventUserDisconnected, participantRef{ParticipantID: pid})
	}
}
