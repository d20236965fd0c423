package ws

import (
	"errors"
	"testing"
	"time"
)

type fakeClient struct {
	received chan []byte
	fail     bool
	closed   chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{received: make(chan []byte, 8), closed: make(chan struct{})}
}

func (c *fakeClient) Send(p []byte) error {
	if c.fail {
		return errors.New("send failed")
	}
	c.received <- p
	return nil
}

func (c *fakeClient) Close() { close(c.closed) }

func expectPayload(t *testing.T, c *fakeClient, want string) {
	t.Helper()
	select {
	case got := <-c.received:
		if string(got) != want {
			t.Fatalf("expected payload %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
	}
}

func TestBroadcastReachesAllStreamSubscribers(t *testing.T) {
	hub := NewHub()
	a := newFakeClient()
	b := newFakeClient()
	hub.Register(StreamActivity, a)
	hub.Register(StreamActivity, b)

	hub.Broadcast(StreamActivity, []byte("deploy started"))
	expectPayload(t, a, "deploy started")
	expectPayload(t, b, "deploy started")
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newFakeClient()
	b := newFakeClient()
	hub.Register(StreamActivity, a)
	hub.Register(StreamActivity, b)
	hub.Unregister(StreamActivity, b)

	hub.Broadcast(StreamActivity, []byte("traffic shifted"))
	expectPayload(t, a, "traffic shifted")
	select {
	case got := <-b.received:
		t.Fatalf("unregistered client received %q", got)
	default:
	}
}

func TestFailingSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	bad := newFakeClient()
	bad.fail = true
	hub.Register(StreamActivity, bad)

	hub.Broadcast(StreamActivity, []byte("x"))
	select {
	case <-bad.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("failing subscriber should be closed and dropped")
	}
}
