package orch

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Signal relays an opaque payload to one room member. The sender identity is
// always the bound participant; claimedFrom is only checked for logging.
func (o *Orchestrator) Signal(id core.ConnID, to, claimedFrom domain.ParticipantID, payload json.RawMessage) error {
	b, err := o.bound(id)
	if err != nil {
		return err
	}
	if claimedFrom != "" && claimedFrom != b.Participant {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("claimed", string(claimedFrom)).Str("participant", string(b.Participant)).Msg("signal from mismatch, overriding")
	}
	return o.Router.Relay(b.Room, b.Participant, to, payload)
}

// SendChat relays a chat line to everyone else in the room.
// The sender is not echoed; its client renders the message locally.
func (o *Orchestrator) SendChat(id core.ConnID, content string) error {
	b, err := o.bound(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return domain.ErrMessageEmpty
	}
	p, ok := o.Rooms.Participant(b.Room, b.Participant)
	if !ok {
		return domain.ErrNotBound
	}
	msg := domain.NewChatMessage(b.Participant, p.DisplayName, content, o.now())
	o.Broadcaster.Broadcast(b.Room, b.Participant, domain.EventReceiveMessage, msg)
	return nil
}
