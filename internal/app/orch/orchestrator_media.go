package orch

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Media itself never passes through the server; only the toggles do.
// The stored flag is updated before the broadcast so later joiners see it.

func (o *Orchestrator) ToggleAudio(id core.ConnID, enabled bool) error {
	return o.toggle(id, domain.FlagAudio, enabled, domain.EventUserToggleAudio)
}

func (o *Orchestrator) ToggleVideo(id core.ConnID, enabled bool) error {
	return o.toggle(id, domain.FlagVideo, enabled, domain.EventUserToggleVideo)
}

func (o *Orchestrator) StartSharing(id core.ConnID) error {
	return o.sharing(id, true, domain.EventUserStartedSharing)
}

func (o *Orchestrator) StopSharing(id core.ConnID) error {
	return o.sharing(id, false, domain.EventUserStoppedSharing)
}

func (o *Orchestrator) toggle(id core.ConnID, f domain.Flag, v bool, event string) error {
	b, err := o.bound(id)
	if err != nil {
		return err
	}
	o.Rooms.SetFlag(b.Room, b.Participant, f, v)
	o.Broadcaster.Broadcast(b.Room, b.Participant, event, mediaToggled{ParticipantID: b.Participant, Enabled: v})
	log.Debug().Str("module", "orch").Str("room", string(b.Room)).Str("participant", string(b.Participant)).Stringer("flag", f).Bool("value", v).Msg("media toggled")
	return nil
}

func (o *Orchestrator) sharing(id core.ConnID, v bool, event string) error {
	b, err := o.bound(id)
	if err != nil {
		return err
	}
	o.Rooms.SetFlag(b.Room, b.Participant, domain.FlagScreenSharing, v)
	o.Broadcaster.Broadcast(b.Room, b.Participant, event, participantRef{ParticipantID: b.Participant})
	return nil
}
