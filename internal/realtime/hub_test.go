package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(userID uint, hub *Hub) *Client {
	return &Client{
		userID: userID,
		send:   make(chan Event, sendBufferSize),
		hub:    hub,
	}
}

func TestEmitToUserReachesAllConnections(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	c1 := newTestClient(7, hub)
	c2 := newTestClient(7, hub)
	hub.Register(c1)
	hub.Register(c2)
	require.Equal(t, 2, hub.ConnectionCount(7))

	hub.EmitToUser(7, "notification", map[string]string{"hello": "world"})

	for _, c := range []*Client{c1, c2} {
		select {
		case ev := <-c.send:
			require.Equal(t, "notification", ev.Event)
		default:
			t.Fatal("expected event on client send channel")
		}
	}
}

func TestEmitToAbsentUserIsNoOp(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	// Must not panic or block.
	hub.EmitToUser(42, "notification", nil)
	require.Equal(t, 0, hub.ConnectionCount(42))
}

func TestUnregisterRemovesRoomWithLastConnection(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	c1 := newTestClient(9, hub)
	c2 := newTestClient(9, hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Unregister(c1)
	require.Equal(t, 1, hub.ConnectionCount(9))

	hub.Unregister(c2)
	require.Equal(t, 0, hub.ConnectionCount(9))

	// A push racing the disconnect is dropped silently.
	hub.EmitToUser(9, "notification", nil)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	c := newTestClient(3, hub)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)
	require.Equal(t, 0, hub.ConnectionCount(3))
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	hub := NewHub(zap.NewNop().Sugar())

	c := &Client{userID: 5, send: make(chan Event, 1), hub: hub}
	hub.Register(c)

	hub.EmitToUser(5, "notification", 1)
	hub.EmitToUser(5, "notification", 2) // buffer full, dropped

	ev := <-c.send
	require.Equal(t, 1, ev.Payload)
	select {
	case <-c.send:
		t.Fatal("second event should have been dropped")
	default:
	}
}
