package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(4)
	want := Message{Type: TypeDeviceSeen, Body: []byte("dev-123")}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case got := <-msgs:
		if got.Type != want.Type || string(got.Body) != string(want.Body) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	_ = q.Publish(ctx, Message{Type: TypeDeviceSeen, Body: []byte("a")})
	cancel()
	// Buffer full and context cancelled: Publish must return, not block.
	if err := q.Publish(ctx, Message{Type: TypeDeviceSeen, Body: []byte("b")}); err == nil {
		t.Error("expected error publishing to full queue with cancelled context")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: "device_seen", Body: []byte("id|with|pipes")}
	got, err := deserialize(serialize(msg))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.Type != msg.Type || string(got.Body) != string(msg.Body) {
		t.Errorf("got %+v, want %+v", got, msg)
	}
}
