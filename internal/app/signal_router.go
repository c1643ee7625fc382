package app

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type relayedSignal struct {
	From   domain.ParticipantID `json:"from"`
	Signal json.RawMessage      `json:"signal"`
}

// SignalRouter relays opaque signaling payloads to exactly one recipient in
// the sender's room. Frames go straight into the recipient's queue, so the
// order between a fixed sender and recipient is the send order.
type SignalRouter struct {
	deliverer
	store   *RoomStore
	metrics *Metrics
}

func NewSignalRouter(store *RoomStore, conns ConnectionLookup, policy Policy, m *Metrics) *SignalRouter {
	return &SignalRouter{
		deliverer: deliverer{conns: conns, policy: policy},
		store:     store,
		metrics:   m,
	}
}

// Relay delivers payload, tagged with from, to the connection of to.
// A recipient outside the room yields ErrUnknownRecipient and nothing is sent.
func (r *SignalRouter) Relay(roomID domain.RoomID, from, to domain.ParticipantID, payload json.RawMessage) error {
	l := log.With().Str("module", "app.router").Str("room", string(roomID)).Str("from", string(from)).Str("to", string(to)).Logger()

	conn, ok := r.store.ResolveConnection(roomID, to)
	if !ok {
		r.metrics.relayed(relayUnknownRecipient)
		l.Warn().Msg("signal dropped: unknown recipient")
		return fmt.Errorf("relay to %s: %w", to, domain.ErrUnknownRecipient)
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	frame, err := core.Encode(domain.EventSignal, relayedSignal{From: from, Signal: payload})
	if err != nil {
		r.metrics.relayed(relayFailed)
		l.Error().Err(err).Msg("signal encode")
		return err
	}
	if err := r.deliver(conn, frame); err != nil {
		r.metrics.relayed(relayFailed)
		l.Warn().Err(err).Str("conn", string(conn)).Msg("signal delivery failed")
		return fmt.Errorf("relay to %s: %w", to, err)
	}
	r.metrics.relayed(relayDelivered)
	l.Debug().Int("bytes", len(payload)).Msg("signal relayed")
	return nil
}
