package app

import "github.com/prometheus/client_golang/prometheus"

const (
	relayDelivered        = "delivered"
	relayUnknownRecipient = "unknown_recipient"
	relayFailed           = "failed"

	deliveryOK      = "delivered"
	deliveryDropped = "dropped"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	rooms        prometheus.Gauge
	participants prometheus.Gauge
	connections  prometheus.Gauge
	relays       *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meet",
			Name:      "rooms_active",
			Help:      "Rooms with at least one participant.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meet",
			Name:      "participants_active",
			Help:      "Participants across all rooms.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meet",
			Name:      "connections_active",
			Help:      "Open signaling connections, joined or not.",
		}),
		relays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meet",
			Name:      "signals_relayed_total",
			Help:      "Point-to-point signaling relays by result.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meet",
			Name:      "events_delivered_total",
			Help:      "Room event deliveries by event and result.",
		}, []string{"event", "result"}),
	}
	reg.MustRegister(m.rooms, m.participants, m.connections, m.relays, m.deliveries)
	return m
}

func (m *Metrics) roomOpened() {
	if m != nil {
		m.rooms.Inc()
	}
}

func (m *Metrics) roomClosed() {
	if m != nil {
		m.rooms.Dec()
	}
}

func (m *Metrics) participantJoined() {
	if m != nil {
		m.participants.Inc()
	}
}

func (m *Metrics) participantLeft() {
	if m != nil {
		m.participants.Dec()
	}
}

func (m *Metrics) connectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) connectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) relayed(result string) {
	if m != nil {
		m.relays.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) delivered(event, result string) {
	if m != nil {
		m.deliveries.WithLabelValues(event, result).Inc()
	}
}
