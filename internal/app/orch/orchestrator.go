package orch

import (
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// Orchestrator drives the participant state machine for every inbound event.
// Calls for one connection must be serialized by the caller; calls for
// different connections may interleave freely.
type Orchestrator struct {
	Registry    *app.Registry
	Rooms       *app.RoomStore
	Router      *app.SignalRouter
	Broadcaster *app.Broadcaster
	Now         func() time.Time
}

func New(reg *app.Registry, rooms *app.RoomStore, router *app.SignalRouter, bcast *app.Broadcaster) *Orchestrator {
	return &Orchestrator{
		Registry:    reg,
		Rooms:       rooms,
		Router:      router,
		Broadcaster: bcast,
		Now:         time.Now,
	}
}

type participantRef struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
}

type userConnected struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
	DisplayName   string               `json:"displayName"`
}

type mediaToggled struct {
	ParticipantID domain.ParticipantID `json:"participantId"`
	Enabled       bool                 `json:"enabled"`
}

// Connect registers a freshly accepted transport.
func (o *Orchestrator) Connect(conn core.SignalConnection) core.ConnID {
	return o.Registry.Register(conn)
}

// Disconnect tears down everything the connection owned. Repeated calls are no-ops.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	b, ok := o.Registry.Unregister(id)
	if !ok {
		return
	}
	o.teardown(id, b)
}

func (o *Orchestrator) Presence(id core.ConnID) domain.Presence {
	return o.Registry.Presence(id)
}

// bound returns the caller's binding or ErrNotBound.
func (o *Orchestrator) bound(id core.ConnID) (app.Binding, error) {
	b, ok := o.Registry.Lookup(id)
	if !ok {
		return app.Binding{}, domain.ErrNotBound
	}
	return b, nil
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
