package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, id uint, buffer int) *Client {
	return &Client{ID: id, Send: make(chan []byte, buffer), Hub: hub}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.GetConnectedClients() == want
	}, time.Second, 10*time.Millisecond)
}

func TestHubTracksConnectedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub, 1, 1)
	second := newTestClient(hub, 2, 1)
	hub.register <- first
	hub.register <- second
	waitForClients(t, hub, 2)

	hub.unregister <- first
	waitForClients(t, hub, 1)
}

func TestBroadcastToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	owner := newTestClient(hub, 7, 1)
	other := newTestClient(hub, 8, 1)
	hub.register <- owner
	hub.register <- other
	waitForClients(t, hub, 2)

	hub.BroadcastToUser(7, []byte(`{"type":"booking.created"}`))

	select {
	case msg := <-owner.Send:
		assert.JSONEq(t, `{"type":"booking.created"}`, string(msg))
	default:
		t.Fatal("owner's socket received nothing")
	}

	select {
	case <-other.Send:
		t.Fatal("message leaked to another user's socket")
	default:
	}
}

func TestBroadcastToUserDropsStalledClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	stalled := newTestClient(hub, 3, 1)
	stalled.Send <- []byte("backlog") // fill the buffer before registering
	hub.register <- stalled
	waitForClients(t, hub, 1)

	hub.BroadcastToUser(3, []byte("fresh"))

	assert.Equal(t, 0, hub.GetConnectedClients())

	<-stalled.Send // drain the backlog
	_, open := <-stalled.Send
	assert.False(t, open, "dropped client's channel must be closed")
}
