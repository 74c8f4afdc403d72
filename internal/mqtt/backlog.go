package mqtt

import "log"

// message is a serialized MQTT message held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	// droppable marks periodic status messages that a later one supersedes.
	droppable bool
}

// backlog queues messages published while the broker was unreachable. When
// full it evicts the oldest heartbeat, so alarm transitions survive an
// outage that outlasts many heartbeat periods. Only when no heartbeat is
// queued does it drop the oldest message.
// Not safe for concurrent use.
type backlog struct {
	msgs     []message
	capacity int
	overflow bool // a message was dropped since the last drain
	dropped  int
}

func newBacklog(capacity int) *backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &backlog{msgs: make([]message, 0, capacity), capacity: capacity}
}

func (b *backlog) push(msg message) {
	if len(b.msgs) == b.capacity {
		if !b.overflow {
			log.Printf("mqtt: backlog full (%d messages), dropping", b.capacity)
			b.overflow = true
		}
		b.evict()
		b.dropped++
	}
	b.msgs = append(b.msgs, msg)
}

// evict removes the oldest droppable message, or the oldest one.
func (b *backlog) evict() {
	victim := 0
	for i, m := range b.msgs {
		if m.droppable {
			victim = i
			break
		}
	}
	copy(b.msgs[victim:], b.msgs[victim+1:])
	b.msgs[len(b.msgs)-1] = message{}
	b.msgs = b.msgs[:len(b.msgs)-1]
}

// drain removes and returns all messages, oldest first.
func (b *backlog) drain() []message {
	if len(b.msgs) == 0 {
		return nil
	}
	out := append([]message(nil), b.msgs...)
	clear(b.msgs)
	b.msgs = b.msgs[:0]
	b.overflow = false
	return out
}

func (b *backlog) len() int {
	return len(b.msgs)
}
