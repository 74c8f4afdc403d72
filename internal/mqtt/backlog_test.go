package mqtt

import "testing"

func TestBacklogEmptyDrain(t *testing.T) {
	b := newBacklog(10)
	if got := b.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestBacklogPushAndDrain(t *testing.T) {
	b := newBacklog(10)
	for i := 0; i < 5; i++ {
		b.push(message{topic: "t", payload: []byte{byte(i)}})
	}

	got := b.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}
	if b.len() != 0 {
		t.Errorf("len after drain: %d", b.len())
	}
	if got := b.drain(); got != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got))
	}
}

func TestBacklogOverflowKeepsNewest(t *testing.T) {
	const capacity = 5
	b := newBacklog(capacity)
	for i := 0; i < capacity+3; i++ {
		b.push(message{topic: "t", payload: []byte{byte(i)}})
	}

	if b.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", b.dropped)
	}
	got := b.drain()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := range got {
		if want := byte(i + 3); got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}

func TestBacklogMultipleCycles(t *testing.T) {
	b := newBacklog(5)
	for i := 0; i < 3; i++ {
		b.push(message{topic: "t", payload: []byte{byte(i)}})
	}
	if got := b.drain(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	for i := 10; i < 14; i++ {
		b.push(message{topic: "t", payload: []byte{byte(i)}})
	}
	got := b.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(10 + i); msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestBacklogPreservesFields(t *testing.T) {
	b := newBacklog(2)
	b.push(message{topic: TopicSystem, payload: []byte(`{"x":1}`), qos: 1, retained: true})

	got := b.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem || string(got[0].payload) != `{"x":1}` || got[0].qos != 1 || !got[0].retained {
		t.Errorf("fields not preserved: %+v", got[0])
	}
}

func TestBacklogMinimumCapacity(t *testing.T) {
	b := newBacklog(0)
	b.push(message{topic: "a"})
	b.push(message{topic: "b"})
	got := b.drain()
	if len(got) != 1 || got[0].topic != "b" {
		t.Errorf("got %+v, want only the newest", got)
	}
}

func TestBacklogOverflowDropsHeartbeatsFirst(t *testing.T) {
	b := newBacklog(3)
	b.push(message{topic: Topic, payload: []byte("on")})
	b.push(message{topic: TopicSystem, payload: []byte("hb1"), droppable: true})
	b.push(message{topic: Topic, payload: []byte("paused")})
	b.push(message{topic: TopicSystem, payload: []byte("hb2"), droppable: true})
	b.push(message{topic: Topic, payload: []byte("off")})

	if b.dropped != 2 {
		t.Errorf("dropped: got %d, want 2", b.dropped)
	}
	var got []string
	for _, m := range b.drain() {
		got = append(got, string(m.payload))
	}
	want := []string{"on", "paused", "off"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBacklogOverflowWithoutHeartbeatsDropsOldest(t *testing.T) {
	b := newBacklog(2)
	b.push(message{topic: Topic, payload: []byte("a")})
	b.push(message{topic: Topic, payload: []byte("b")})
	b.push(message{topic: TopicSystem, payload: []byte("hb"), droppable: true})

	got := b.drain()
	if len(got) != 2 || string(got[0].payload) != "b" || string(got[1].payload) != "hb" {
		t.Errorf("got %+v, want [b hb]", got)
	}
}
