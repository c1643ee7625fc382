package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

// ConnectionLookup resolves a connection id to its transport.
type ConnectionLookup interface {
	Connection(id core.ConnID) (core.SignalConnection, bool)
}

// deliverer performs the non-blocking send shared by relay and broadcast.
type deliverer struct {
	conns  ConnectionLookup
	policy Policy
}

func (d deliverer) deliver(id core.ConnID, f core.Frame) error {
	conn, ok := d.conns.Connection(id)
	if !ok {
		return core.ErrConnectionClosed
	}
	err := conn.TrySend(f)
	if err == nil {
		return nil
	}
	if d.policy != nil && d.policy.OnDeliveryFailure(id, err) == DisconnectRecipient {
		log.Warn().Err(err).Str("module", "app.delivery").Str("conn", string(id)).Msg("closing slow connection")
		conn.Close()
	}
	return err
}
