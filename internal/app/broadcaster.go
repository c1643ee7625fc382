package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Broadcaster fans room events out to every member but the originator.
// A failed delivery is logged and skipped; it never stops the fan-out.
type Broadcaster struct {
	deliverer
	store   *RoomStore
	metrics *Metrics
}

func NewBroadcaster(store *RoomStore, conns ConnectionLookup, policy Policy, m *Metrics) *Broadcaster {
	return &Broadcaster{
		deliverer: deliverer{conns: conns, policy: policy},
		store:     store,
		metrics:   m,
	}
}

func (b *Broadcaster) Broadcast(roomID domain.RoomID, exclude domain.ParticipantID, event string, payload any) core.PublishResult {
	return b.Fanout(roomID, exclude, b.store.Recipients(roomID, exclude), event, payload)
}

// Fanout delivers to an explicit recipient list, typically one captured under
// the room lock. It never blocks, so it is safe to call from a room hook.
func (b *Broadcaster) Fanout(roomID domain.RoomID, from domain.ParticipantID, to []core.Recipient, event string, payload any) core.PublishResult {
	res := core.PublishResult{}
	if len(to) == 0 {
		return res
	}
	frame, err := core.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("event", event).Msg("encode")
		return res
	}
	for _, rc := range to {
		if err := b.deliver(rc.Conn, frame); err != nil {
			log.Warn().Err(err).
				Str("module", "app.broadcast").
				Str("room", string(roomID)).
				Str("event", event).
				Str("participant", string(rc.Participant)).
				Msg("delivery failed, skipping recipient")
			res.Dropped = append(res.Dropped, rc.Conn)
			b.metrics.delivered(event, deliveryDropped)
			continue
		}
		res.SendTo++
		b.metrics.delivered(event, deliveryOK)
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(roomID)).Str("from", string(from)).Str("event", event).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// Notify sends one event to a single connection.
func (b *Broadcaster) Notify(conn core.ConnID, event string, payload any) error {
	frame, err := core.Encode(event, payload)
	if err != nil {
		return err
	}
	if err := b.deliver(conn, frame); err != nil {
		b.metrics.delivered(event, deliveryDropped)
		return err
	}
	b.metrics.delivered(event, deliveryOK)
	return nil
}
