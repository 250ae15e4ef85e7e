package memorybus

import "testing"

func TestBus_PublishReachesSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish("sync", []byte(`{"state":"running"}`))

	evt := <-ch
	if evt.Topic != "sync" || string(evt.Payload) != `{"state":"running"}` {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestBus_SlowSubscriberLosesEvents(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Un de plus que la capacité du canal: le dernier est perdu,
	// Publish ne bloque jamais.
	for i := 0; i < cap(ch)+1; i++ {
		b.Publish("sync", []byte("x"))
	}
	if len(ch) != cap(ch) {
		t.Fatalf("want full channel (%d), got %d", cap(ch), len(ch))
	}
}

func TestBus_CancelIsIdempotent(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()
	cancel()

	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after cancel")
	}
	// Un bus sans abonné accepte toujours Publish.
	b.Publish("sync", []byte("x"))
}

func TestBus_CloseStopsEverything(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Close()
	if _, open := <-ch; open {
		t.Fatalf("channel should be closed after Close")
	}

	b.Publish("sync", []byte("x"))

	late, lateCancel := b.Subscribe()
	defer lateCancel()
	if _, open := <-late; open {
		t.Fatalf("post-Close subscription should come back closed")
	}
}
