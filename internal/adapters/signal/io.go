package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(ctl.opts.WriteWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("ping failed")
				return
			}
		}
	}
}

// readPump is the only reader of the connection, so events of one connection
// reach the orchestrator strictly in order. Its exit is the disconnect.
func (ctl *SignalWSController) readPump(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	defer func() {
		ctl.Orch.Disconnect(id)
		ctl.limiter.Forget(id)
		c.Close()
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("connection closed")
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		ctl.dispatch(id, c, data)
	}
}

func (ctl *SignalWSController) dispatch(id core.ConnID, c *WsSignalConn, data []byte) {
	env, err := core.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad envelope")
		ctl.sendError(c, codeBadPayload, err.Error())
		return
	}
	h, ok := ctl.handlers[env.Event]
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("event", env.Event).Msg("unknown event")
		ctl.sendError(c, codeUnknownEvent, env.Event)
		return
	}
	h(id, c, env.Data)
}

func (ctl *SignalWSController) send(c *WsSignalConn, event string, data any) {
	f, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send encode")
		return
	}
	if err := c.TrySend(f); err != nil && !errors.Is(err, core.ErrConnectionClosed) {
		log.Warn().Err(err).Str("module", "signal").Str("event", event).Msg("send failed")
	}
}

func (ctl *SignalWSController) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		domain.EventJoinRoom:     ctl.handleJoin,
		domain.EventLeaveRoom:    ctl.handleLeave,
		domain.EventSignal:       ctl.handleRelay,
		domain.EventSendMessage:  ctl.handleChat,
		domain.EventToggleAudio:  ctl.handleToggleAudio,
		domain.EventToggleVideo:  ctl.handleToggleVideo,
		domain.EventStartSharing: ctl.handleStartSharing,
		domain.EventStopSharing:  ctl.handleStopSharing,
		domain.EventPing:         ctl.handlePing,
	}
}
