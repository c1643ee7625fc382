package signal

import (
	"errors"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

const (
	codeDuplicateParticipant = "duplicate_participant"
	codeAlreadyBound         = "already_bound"
	codeNotJoined            = "not_joined"
	codeBadPayload           = "bad_payload"
	codeRateLimited          = "rate_limited"
	codeUnknownEvent         = "unknown_event"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ctl *SignalWSController) handlePing(_ core.ConnID, c *WsSignalConn, _ []byte) {
	ctl.send(c, domain.EventPong, nil)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, code, msg string) {
	ctl.send(c, domain.EventError, errorPayload{Code: code, Message: msg})
}

// replyError maps an orchestrator error onto an error envelope.
func (ctl *SignalWSController) replyError(c *WsSignalConn, err error) {
	ctl.sendError(c, errorCode(err), err.Error())
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateParticipant):
		return codeDuplicateParticipant
	case errors.Is(err, domain.ErrAlreadyBound):
		return codeAlreadyBound
	case errors.Is(err, domain.ErrNotBound):
		return codeNotJoined
	default:
		return codeBadPayload
	}
}
