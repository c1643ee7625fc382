package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Meet/internal/core"
)

var errBadPayload = errors.New("bad payload")

// decodeContent accepts {"content": "..."} or a bare JSON string.
func decodeContent(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj.Content == nil {
		return "", errBadPayload
	}
	return *obj.Content, nil
}

// decodeEnabled accepts a bare boolean or {"enabled": bool}.
func decodeEnabled(data []byte) (bool, error) {
	var b *bool
	if err := json.Unmarshal(data, &b); err == nil && b != nil {
		return *b, nil
	}
	var obj struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj.Enabled == nil {
		return false, errBadPayload
	}
	return *obj.Enabled, nil
}

func (ctl *SignalWSController) handleChat(id core.ConnID, c *WsSignalConn, data []byte) {
	content, err := decodeContent(data)
	if err != nil {
		ctl.sendError(c, codeBadPayload, "send-message expects a string or {content}")
		return
	}
	if err := ctl.Orch.SendChat(id, content); err != nil {
		ctl.replyError(c, err)
	}
}

func (ctl *SignalWSController) handleToggleAudio(id core.ConnID, c *WsSignalConn, data []byte) {
	ctl.toggle(c, data, func(v bool) error { return ctl.Orch.ToggleAudio(id, v) })
}

func (ctl *SignalWSController) handleToggleVideo(id core.ConnID, c *WsSignalConn, data []byte) {
	ctl.toggle(c, data, func(v bool) error { return ctl.Orch.ToggleVideo(id, v) })
}

func (ctl *SignalWSController) toggle(c *WsSignalConn, data []byte, apply func(bool) error) {
	v, err := decodeEnabled(data)
	if err != nil {
		ctl.sendError(c, codeBadPayload, "expected a boolean or {enabled}")
		return
	}
	if err := apply(v); err != nil {
		ctl.replyError(c, err)
	}
}

func (ctl *SignalWSController) handleStartSharing(id core.ConnID, c *WsSignalConn, _ []byte) {
	if err := ctl.Orch.StartSharing(id); err != nil {
		ctl.replyError(c, err)
	}
}

func (ctl *SignalWSController) handleStopSharing(id core.ConnID, c *WsSignalConn, _ []byte) {
	if err := ctl.Orch.StopSharing(id); err != nil {
		ctl.replyError(c, err)
	}
}
