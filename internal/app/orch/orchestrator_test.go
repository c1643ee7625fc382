package orch

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// drain returns and forgets the envelopes received so far.
func (c *fakeConn) drain(t *testing.T) []core.Envelope {
	t.Helper()
	c.mu.Lock()
	frames := c.frames
	c.frames = nil
	c.mu.Unlock()
	out := make([]core.Envelope, 0, len(frames))
	for _, f := range frames {
		env, err := core.Decode(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func decode[T any](t *testing.T, env core.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func newOrchestrator() *Orchestrator {
	reg := app.NewRegistry(nil)
	store := app.NewRoomStore(nil)
	o := New(reg, store,
		app.NewSignalRouter(store, reg, app.SkipPolicy{}, nil),
		app.NewBroadcaster(store, reg, app.SkipPolicy{}, nil),
	)
	o.Now = func() time.Time { return time.Date(2024, 3, 1, 9, 20, 30, 0, time.UTC) }
	return o
}

type client struct {
	conn *fakeConn
	id   core.ConnID
}

func connect(o *Orchestrator) client {
	c := &fakeConn{}
	return client{conn: c, id: o.Connect(c)}
}

func join(t *testing.T, o *Orchestrator, room, pid string) client {
	t.Helper()
	c := connect(o)
	require.NoError(t, o.Join(c.id, JoinRequest{Room: domain.RoomID(room), Participant: domain.ParticipantID(pid), DisplayName: "name-" + pid}))
	return c
}

func TestOrchestrator_JoinSignalDisconnectScenario(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()

	// Given A joins r1 and sees an empty roster
	a := join(t, o, "r1", "A")
	envs := a.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventRoomParticipants, envs[0].Event)
	req.Empty(decode[core.Roster](t, envs[0]))

	// When B joins r1
	b := join(t, o, "r1", "B")

	// Then B sees only A
	envs = b.conn.drain(t)
	req.Len(envs, 1)
	roster := decode[core.Roster](t, envs[0])
	req.Len(roster, 1)
	req.Equal("name-A", roster["A"].DisplayName)
	req.True(roster["A"].AudioEnabled)

	// And A is told about B
	envs = a.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventUserConnected, envs[0].Event)
	req.Equal(userConnected{ParticipantID: "B", DisplayName: "name-B"}, decode[userConnected](t, envs[0]))

	// When B signals A
	req.NoError(o.Signal(b.id, "A", "B", json.RawMessage(`{"sdp":"X"}`)))

	// Then A receives it tagged with B
	envs = a.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventSignal, envs[0].Event)
	req.JSONEq(`{"from":"B","signal":{"sdp":"X"}}`, string(envs[0].Data))

	// When B disconnects
	o.Disconnect(b.id)

	// Then A receives user-disconnected and r1 holds only A
	envs = a.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventUserDisconnected, envs[0].Event)
	req.Equal(participantRef{ParticipantID: "B"}, decode[participantRef](t, envs[0]))

	list, ok := o.Rooms.Participants("r1")
	req.True(ok)
	req.Len(list, 1)
	req.Equal(domain.ParticipantID("A"), list[0].ID)
}

func TestOrchestrator_ToggleAudioNotEchoed(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	b := join(t, o, "r1", "B")
	c := join(t, o, "r1", "C")
	a.conn.drain(t)
	b.conn.drain(t)
	c.conn.drain(t)

	req.NoError(o.ToggleAudio(a.id, false))

	req.Empty(a.conn.drain(t))
	for _, peer := range []client{b, c} {
		envs := peer.conn.drain(t)
		req.Len(envs, 1)
		req.Equal(domain.EventUserToggleAudio, envs[0].Event)
		req.Equal(mediaToggled{ParticipantID: "A", Enabled: false}, decode[mediaToggled](t, envs[0]))
	}

	// Stored state follows the toggle
	p, ok := o.Rooms.Participant("r1", "A")
	req.True(ok)
	req.False(p.AudioEnabled)
	req.True(p.VideoEnabled)
}

func TestOrchestrator_LateJoinerSeesCurrentFlags(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	req.NoError(o.ToggleVideo(a.id, false))
	req.NoError(o.StartSharing(a.id))

	b := join(t, o, "r1", "B")
	roster := decode[core.Roster](t, b.conn.drain(t)[0])
	req.Equal(domain.MediaState{AudioEnabled: true, VideoEnabled: false, ScreenSharing: true}, roster["A"].MediaState)

	a.conn.drain(t)
	req.NoError(o.StopSharing(a.id))
	envs := b.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventUserStoppedSharing, envs[0].Event)
	req.Equal(participantRef{ParticipantID: "A"}, decode[participantRef](t, envs[0]))
}

func TestOrchestrator_ChatNotEchoed(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	b := join(t, o, "r1", "B")
	a.conn.drain(t)
	b.conn.drain(t)

	req.NoError(o.SendChat(a.id, "hi"))

	req.Empty(a.conn.drain(t))
	envs := b.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventReceiveMessage, envs[0].Event)
	msg := decode[domain.ChatMessage](t, envs[0])
	req.Equal("hi", msg.Content)
	req.Equal("name-A", msg.Sender)
	req.Equal(domain.ParticipantID("A"), msg.SenderID)
	req.Equal("2024-03-01T09:20:30.000Z", msg.Timestamp)
	req.NotEmpty(msg.ID)

	req.ErrorIs(o.SendChat(a.id, "   "), domain.ErrMessageEmpty)
}

func TestOrchestrator_DuplicateJoinRefused(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	a.conn.drain(t)

	dup := connect(o)
	err := o.Join(dup.id, JoinRequest{Room: "r1", Participant: "A", DisplayName: "impostor"})
	req.ErrorIs(err, domain.ErrDuplicateParticipant)

	// Back to Absent; nobody else heard about it
	req.Equal(domain.PresenceAbsent, o.Presence(dup.id))
	req.Empty(a.conn.drain(t))
	req.Empty(dup.conn.drain(t))

	// The refused connection can still join under another id
	req.NoError(o.Join(dup.id, JoinRequest{Room: "r1", Participant: "A2", DisplayName: "second"}))
}

func TestOrchestrator_SecondJoinAlreadyBound(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")

	err := o.Join(a.id, JoinRequest{Room: "r2", Participant: "A", DisplayName: "again"})
	req.ErrorIs(err, domain.ErrAlreadyBound)

	// Still only in r1
	_, ok := o.Rooms.Info("r2")
	req.False(ok)
	req.Equal(domain.PresenceActive, o.Presence(a.id))
}

func TestOrchestrator_SignalErrors(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	stranger := connect(o)
	a := join(t, o, "r1", "A")
	b := join(t, o, "r1", "B")
	a.conn.drain(t)
	b.conn.drain(t)

	req.ErrorIs(o.Signal(stranger.id, "A", "", json.RawMessage(`1`)), domain.ErrNotBound)
	req.ErrorIs(o.Signal(a.id, "ghost", "", json.RawMessage(`1`)), domain.ErrUnknownRecipient)

	// A forged from is replaced by the bound id
	req.NoError(o.Signal(a.id, "B", "Mallory", json.RawMessage(`"x"`)))
	envs := b.conn.drain(t)
	req.Len(envs, 1)
	req.JSONEq(`{"from":"A","signal":"x"}`, string(envs[0].Data))
}

func TestOrchestrator_LeaveThenRejoin(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	b := join(t, o, "r1", "B")
	a.conn.drain(t)
	b.conn.drain(t)

	req.NoError(o.Leave(b.id))
	envs := b.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventLeft, envs[0].Event)
	req.Equal(domain.EventUserDisconnected, a.conn.drain(t)[0].Event)
	req.Equal(domain.PresenceAbsent, o.Presence(b.id))
	req.ErrorIs(o.Leave(b.id), domain.ErrNotBound)

	req.NoError(o.Join(b.id, JoinRequest{Room: "r2", Participant: "B", DisplayName: "Bob"}))
	req.Equal(domain.PresenceActive, o.Presence(b.id))
}

func TestOrchestrator_LastLeaveDeletesRoom(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")

	o.Disconnect(a.id)
	_, ok := o.Rooms.Info("r1")
	req.False(ok)
	req.Empty(o.Rooms.List())
}

func TestOrchestrator_DisconnectIdempotent(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	a := join(t, o, "r1", "A")
	b := join(t, o, "r1", "B")
	a.conn.drain(t)

	o.Disconnect(b.id)
	o.Disconnect(b.id)

	envs := a.conn.drain(t)
	req.Len(envs, 1)
	req.Equal(domain.EventUserDisconnected, envs[0].Event)

	// Reconnecting under the same participant id sees no stale entry
	again := join(t, o, "r1", "B")
	roster := decode[core.Roster](t, again.conn.drain(t)[0])
	req.Len(roster, 1)
	req.Contains(roster, domain.ParticipantID("A"))
}

func TestOrchestrator_NotJoinedToggles(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	c := connect(o)

	req.ErrorIs(o.ToggleAudio(c.id, true), domain.ErrNotBound)
	req.ErrorIs(o.ToggleVideo(c.id, true), domain.ErrNotBound)
	req.ErrorIs(o.StartSharing(c.id), domain.ErrNotBound)
	req.ErrorIs(o.StopSharing(c.id), domain.ErrNotBound)
	req.ErrorIs(o.SendChat(c.id, "hi"), domain.ErrNotBound)
}

func TestOrchestrator_ConcurrentRoomsIndependent(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	const rooms, perRoom = 8, 16

	var wg sync.WaitGroup
	errs := make(chan error, rooms*perRoom)
	for r := range rooms {
		for p := range perRoom {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := connect(o)
				errs <- o.Join(c.id, JoinRequest{
					Room:        domain.RoomID(string(rune('a' + r))),
					Participant: domain.ParticipantID(string(rune('A' + p))),
					DisplayName: "n",
				})
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}
	list := o.Rooms.List()
	req.Len(list, rooms)
	for _, info := range list {
		req.Equal(perRoom, info.ParticipantCount)
	}
}

// replayView applies a client's frames the way a browser does: the roster
// replaces the whole view, the deltas patch it.
func replayView(t *testing.T, envs []core.Envelope) map[domain.ParticipantID]bool {
	t.Helper()
	view := map[domain.ParticipantID]bool{}
	for _, env := range envs {
		switch env.Event {
		case domain.EventRoomParticipants:
			view = map[domain.ParticipantID]bool{}
			for id := range decode[core.Roster](t, env) {
				view[id] = true
			}
		case domain.EventUserConnected:
			id := decode[userConnected](t, env).ParticipantID
			require.False(t, view[id], "user-connected for %s already in view", id)
			view[id] = true
		case domain.EventUserDisconnected:
			id := decode[participantRef](t, env).ParticipantID
			require.True(t, view[id], "user-disconnected for %s not in view", id)
			delete(view, id)
		case domain.EventLeft:
			view = map[domain.ParticipantID]bool{}
		}
	}
	return view
}

func TestOrchestrator_SameRoomChurnViewsMatchStore(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	const n, rounds = 8, 20

	clients := make([]client, n)
	for i := range clients {
		clients[i] = connect(o)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n*rounds*2)
	for i, c := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pid := domain.ParticipantID(fmt.Sprintf("P%d", i))
			for round := range rounds {
				errs <- o.Join(c.id, JoinRequest{Room: "r1", Participant: pid, DisplayName: string(pid)})
				// odd clients stay in after the final round
				if round < rounds-1 || i%2 == 0 {
					errs <- o.Leave(c.id)
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	members, ok := o.Rooms.Participants("r1")
	req.True(ok)
	inStore := map[domain.ParticipantID]bool{}
	for _, p := range members {
		inStore[p.ID] = true
	}
	req.Len(inStore, n/2)

	for i, c := range clients {
		pid := domain.ParticipantID(fmt.Sprintf("P%d", i))
		view := replayView(t, c.conn.drain(t))
		if i%2 == 0 {
			req.Empty(view, "%s left but still sees peers", pid)
			continue
		}
		want := map[domain.ParticipantID]bool{}
		for id := range inStore {
			if id != pid {
				want[id] = true
			}
		}
		req.Equal(want, view, "view of %s", pid)
	}
}

func TestOrchestrator_DisconnectDuringChurnViewsMatchStore(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	const stayers, leavers = 4, 4

	stay := make([]client, stayers)
	var wg sync.WaitGroup
	errs := make(chan error, stayers+leavers)
	for i := range stayers {
		stay[i] = connect(o)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- o.Join(stay[i].id, JoinRequest{Room: "r1", Participant: domain.ParticipantID(fmt.Sprintf("S%d", i)), DisplayName: "s"})
		}()
	}
	for i := range leavers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := connect(o)
			errs <- o.Join(c.id, JoinRequest{Room: "r1", Participant: domain.ParticipantID(fmt.Sprintf("L%d", i)), DisplayName: "l"})
			o.Disconnect(c.id)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	for i, c := range stay {
		pid := domain.ParticipantID(fmt.Sprintf("S%d", i))
		want := map[domain.ParticipantID]bool{}
		for j := range stayers {
			if j != i {
				want[domain.ParticipantID(fmt.Sprintf("S%d", j))] = true
			}
		}
		req.Equal(want, replayView(t, c.conn.drain(t)), "view of %s", pid)
	}
}
