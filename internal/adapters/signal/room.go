package signal

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	RoomID        string `json:"roomId" validate:"required,max=64"`
	ParticipantID string `json:"participantId" validate:"required,max=64"`
	DisplayName   string `json:"displayName" validate:"required,max=64"`
}

func (ctl *SignalWSController) handleJoin(id core.ConnID, c *WsSignalConn, data []byte) {
	if !ctl.limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join rate limited")
		ctl.sendError(c, codeRateLimited, "too many join attempts")
		return
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad join payload")
		ctl.sendError(c, codeBadPayload, "join-room expects {roomId, participantId, displayName}")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.sendError(c, codeBadPayload, err.Error())
		return
	}

	err := ctl.Orch.Join(id, orch.JoinRequest{
		Room:        domain.RoomID(p.RoomID),
		Participant: domain.ParticipantID(p.ParticipantID),
		DisplayName: p.DisplayName,
	})
	if err != nil {
		ctl.replyError(c, err)
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(id core.ConnID, c *WsSignalConn, _ []byte) {
	if err := ctl.Orch.Leave(id); err != nil {
		ctl.replyError(c, err)
	}
}
