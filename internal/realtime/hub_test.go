package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHubClient(h *Hub, id string) *Client {
	c := &Client{
		ID:   id,
		hub:  h,
		send: make(chan WSMessage, 8),
	}
	h.Register(c)
	return c
}

func drain(c *Client) []WSMessage {
	var out []WSMessage
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(zap.NewNop())
	c1 := newHubClient(h, "c1")
	c2 := newHubClient(h, "c2")

	h.Broadcast("timer_update", map[string]int{"remaining_seconds": 9})

	for _, c := range []*Client{c1, c2} {
		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, "timer_update", msgs[0].Event)
		var body map[string]int
		require.NoError(t, json.Unmarshal(msgs[0].Data, &body))
		assert.Equal(t, 9, body["remaining_seconds"])
	}
}

func TestHub_SendTo(t *testing.T) {
	h := NewHub(zap.NewNop())
	c1 := newHubClient(h, "c1")
	c2 := newHubClient(h, "c2")

	h.SendTo("c1", "joined", map[string]string{"id": "c1"})
	h.SendTo("ghost", "joined", nil) // no-op

	assert.Len(t, drain(c1), 1)
	assert.Empty(t, drain(c2))
}

func TestHub_IsConnected(t *testing.T) {
	h := NewHub(zap.NewNop())
	c1 := newHubClient(h, "c1")

	assert.True(t, h.IsConnected("c1"))
	assert.False(t, h.IsConnected("ghost"))

	h.Unregister(c1)
	assert.False(t, h.IsConnected("c1"))
	assert.Zero(t, h.Count())
}

func TestHub_CloseClientFlushesQueued(t *testing.T) {
	h := NewHub(zap.NewNop())
	c1 := newHubClient(h, "c1")

	h.SendTo("c1", "kicked", struct{}{})
	h.CloseClient("c1")

	// Queued message is still readable, then the channel reports closed.
	msg, ok := <-c1.send
	require.True(t, ok)
	assert.Equal(t, "kicked", msg.Event)
	_, ok = <-c1.send
	assert.False(t, ok)

	// Sends after close are dropped, not a panic.
	h.Broadcast("timer_update", map[string]int{"remaining_seconds": 1})
	h.CloseClient("c1")
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	h := NewHub(zap.NewNop())
	c1 := newHubClient(h, "c1")

	for i := 0; i < 20; i++ {
		h.Broadcast("timer_update", map[string]int{"remaining_seconds": i})
	}
	// Buffer capacity is 8 in this test; the rest were dropped.
	assert.Len(t, drain(c1), 8)
}
