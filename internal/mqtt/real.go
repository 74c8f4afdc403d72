package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/thermo-alarm/internal/logic"
)

const (
	clientID       = "thermo-alarm"
	publishTimeout = 5 * time.Second
	backlogSize    = 64
)

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are kept in a backlog and replayed, oldest
// first, when it comes back.
type RealPublisher struct {
	client paho.Client

	mu       sync.Mutex
	pending  *backlog
	connects int
}

// NewRealPublisher creates a publisher for the given broker. It does not
// wait for the connection; paho keeps retrying in the background.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{pending: newBacklog(backlogSize)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("mqtt: connect to %s: %v", broker, err)
		}
	}()
	return p
}

// willPayload is the retained OFFLINE message. The broker sends it long
// after it was registered, so it carries no timestamp.
func willPayload() []byte {
	will, _ := FormatSystemPayload(SystemEvent{Event: EventOffline})
	return will
}

// Publish sends an alarm event. Alarm events are sent at-least-once.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(message{topic: Topic, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(message{
		topic:     TopicSystem,
		payload:   payload,
		qos:       1,
		retained:  event.Retained,
		droppable: event.Event == EventHeartbeat,
	})
}

// send publishes msg now or queues it for the next connect. The check and
// the push happen under mu so onConnect cannot drain between them.
func (p *RealPublisher) send(msg message) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.pending.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg message) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// onConnect runs on paho's goroutine after every successful connect.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	p.connects++
	reconnect := p.connects > 1
	msgs := p.pending.drain()
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected, replaying %d messages", len(msgs))
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
		if err := p.publish(message{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			log.Printf("mqtt: %v", err)
		}
	}
	for _, msg := range msgs {
		if err := p.publish(msg); err != nil {
			log.Printf("mqtt: replay: %v", err)
		}
	}
}

// IsConnected reports whether the client currently holds a connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
