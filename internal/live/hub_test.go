package live

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("g1")
	b := h.Subscribe("g1")
	other := h.Subscribe("g2")
	require.Equal(t, 2, h.Watchers("g1"))

	h.Publish("g1", "state", map[string]int{"cell": 4})

	for _, c := range []*Client{a, b} {
		raw := <-c.Send()
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.Equal(t, "state", msg.Type)
		require.JSONEq(t, `{"cell":4}`, string(msg.Payload))
	}
	require.Empty(t, other.Send())
}

func TestHubDropsWhenClientIsSlow(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("g")
	for i := 0; i < h.buffer+10; i++ {
		h.Publish("g", "state", i)
	}
	require.Len(t, c.Send(), h.buffer)
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	c := h.Subscribe("g")
	h.Unsubscribe(c)
	require.Zero(t, h.Watchers("g"))

	_, ok := <-c.Send()
	require.False(t, ok, "queue is closed")

	// second unsubscribe and publishing to nobody are harmless
	h.Unsubscribe(c)
	h.Publish("g", "state", 1)
}

func TestHubSendReachesOneClient(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("g")
	b := h.Subscribe("g")

	h.Send(b, "state", "hello")

	var msg Message
	require.NoError(t, json.Unmarshal(<-b.Send(), &msg))
	require.Equal(t, "state", msg.Type)
	require.JSONEq(t, `"hello"`, string(msg.Payload))
	require.Empty(t, a.Send())

	// sending to an unsubscribed client must not panic on its closed queue
	h.Unsubscribe(b)
	h.Send(b, "state", "late")
}
