package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/stretchr/testify/require"
)

// recordingConn is an in-memory SignalConnection that keeps every frame.
type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (c *recordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recordingConn) envelopes(t *testing.T) []core.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := core.Decode(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func decodeData[T any](t *testing.T, env core.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type fixture struct {
	registry *Registry
	store    *RoomStore
	router   *SignalRouter
	bcast    *Broadcaster
}

func newFixture(policy Policy) fixture {
	reg := NewRegistry(nil)
	store := NewRoomStore(nil)
	return fixture{
		registry: reg,
		store:    store,
		router:   NewSignalRouter(store, reg, policy, nil),
		bcast:    NewBroadcaster(store, reg, policy, nil),
	}
}

// member registers a connection and joins it to room as id.
func (f fixture) member(t *testing.T, room, id string) (*recordingConn, core.ConnID) {
	t.Helper()
	conn := &recordingConn{}
	cid := f.registry.Register(conn)
	_, err := f.store.Join(domainRoom(room), domainParticipant(id), "name-"+id, cid, nil)
	require.NoError(t, err)
	return conn, cid
}
