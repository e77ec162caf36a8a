package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrazmi/minimaltodo/sdk/broadcast"
)

func receive[T any](t *testing.T, s *broadcast.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-s.C():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func expectClosed[T any](t *testing.T, s *broadcast.Subscription[T]) {
	t.Helper()
	select {
	case _, ok := <-s.C():
		if ok {
			t.Fatal("expected closed channel, got value")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestBroadcaster_ReplayLatest(t *testing.T) {
	b := broadcast.New[int](broadcast.WithReplay())
	b.Publish(1)
	b.Publish(2)

	sub := b.Subscribe(context.Background())
	defer sub.Close()

	if got := receive(t, sub); got != 2 {
		t.Errorf("first value = %d, want latest 2", got)
	}
	b.Publish(3)
	if got := receive(t, sub); got != 3 {
		t.Errorf("second value = %d, want 3", got)
	}
}

func TestBroadcaster_NoReplay(t *testing.T) {
	b := broadcast.New[string]()
	b.Publish("old")

	sub := b.Subscribe(context.Background())
	defer sub.Close()

	b.Publish("new")
	if got := receive(t, sub); got != "new" {
		t.Errorf("got %q, want only values published after subscribe", got)
	}
}

func TestBroadcaster_EveryValueInOrder(t *testing.T) {
	b := broadcast.New[int](broadcast.WithReplay())
	slow := b.Subscribe(context.Background())
	fast := b.Subscribe(context.Background())
	defer slow.Close()
	defer fast.Close()

	const n = 200
	for i := range n {
		b.Publish(i)
	}

	for i := range n {
		if got := receive(t, fast); got != i {
			t.Fatalf("fast subscriber value %d = %d", i, got)
		}
	}
	// slow subscriber has not read anything yet and must still see everything
	for i := range n {
		if got := receive(t, slow); got != i {
			t.Fatalf("slow subscriber value %d = %d", i, got)
		}
	}
}

func TestBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	b := broadcast.New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)

	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	cancel()
	expectClosed(t, sub)

	deadline := time.Now().Add(time.Second)
	for b.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not removed after cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroadcaster_CloseDrainsQueued(t *testing.T) {
	b := broadcast.New[int]()
	sub := b.Subscribe(context.Background())

	b.Publish(1)
	b.Publish(2)
	b.Close()
	b.Publish(3)

	if got := receive(t, sub); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := receive(t, sub); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
	expectClosed(t, sub)

	late := b.Subscribe(context.Background())
	expectClosed(t, late)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	b := broadcast.New[int]()
	sub := b.Subscribe(context.Background())
	sub.Close()
	sub.Close()
	expectClosed(t, sub)
	if b.Len() != 0 {
		t.Errorf("Len = %d after close", b.Len())
	}
}
