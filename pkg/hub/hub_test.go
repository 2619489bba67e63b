package hub

import (
	"testing"
	"time"
)

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test")
	go h.Run()

	fast := &Client{id: "fast", hub: h, send: make(chan Message, 16)}
	slow := &Client{id: "slow", hub: h, send: make(chan Message)} // never read
	h.register <- fast
	h.register <- slow
	waitFor(t, "both clients registered", func() bool { return h.ClientCount() == 2 })

	// Count concurrently with the broadcast-and-drop.
	counted := make(chan struct{})
	go func() {
		defer close(counted)
		for i := 0; i < 100; i++ {
			h.ClientCount()
		}
	}()

	h.Broadcast(NewJSONMessage([]byte(`{}`)))
	<-counted
	waitFor(t, "slow client dropped", func() bool { return h.ClientCount() == 1 })

	select {
	case msg := <-fast.send:
		if msg.Type != JSONMessage {
			t.Errorf("message type = %v, want JSONMessage", msg.Type)
		}
	case <-time.After(time.Second):
		t.Error("fast client did not receive the broadcast")
	}

	// The dropped client's channel must be closed.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("slow client received a message after being dropped")
		}
	case <-time.After(time.Second):
		t.Error("slow client's channel was not closed")
	}
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{id: "c", hub: h, send: make(chan Message, 1)}
	h.register <- c
	waitFor(t, "client registered", func() bool { return h.ClientCount() == 1 })

	h.unregister <- c
	waitFor(t, "client unregistered", func() bool { return h.ClientCount() == 0 })
}
