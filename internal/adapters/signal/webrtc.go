package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// signalPayload carries offers, answers and candidates. Signal is never decoded.
type signalPayload struct {
	To     string          `json:"to" validate:"required,max=64"`
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

func (ctl *SignalWSController) handleRelay(id core.ConnID, c *WsSignalConn, data []byte) {
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, codeBadPayload, "signal expects {to, signal}")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.sendError(c, codeBadPayload, err.Error())
		return
	}
	err := ctl.Orch.Signal(id, domain.ParticipantID(p.To), domain.ParticipantID(p.From), p.Signal)
	switch {
	case err == nil, errors.Is(err, domain.ErrUnknownRecipient):
		// Dropped relays are logged by the router and never bounce back.
	case errors.Is(err, domain.ErrNotBound):
		ctl.replyError(c, err)
	}
}
