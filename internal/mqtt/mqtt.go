// Package mqtt publishes alarm events and lifecycle events to a broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/thermo-alarm/internal/logic"
)

// Topic is the MQTT topic for alarm events.
const Topic = "home/thermo-alarm/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/thermo-alarm/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an alarm event to the broker.
	// A failure is reported, never fatal.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// System event names.
const (
	EventStartup     = "STARTUP"
	EventShutdown    = "SHUTDOWN"
	EventHeartbeat   = "HEARTBEAT"
	EventReconnected = "RECONNECTED"
	EventOffline     = "OFFLINE"
)

// SystemEvent is a lifecycle event such as startup, shutdown or heartbeat.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	// Reason is the signal name, shutdown only.
	Reason string
	// RawPayload, if set, is sent as is. Used for full status snapshots.
	RawPayload []byte
	// Retained asks the broker to keep the message for late subscribers.
	Retained bool
}

// Payload is the alarm event message.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload contains the alarm event details.
type AlarmPayload struct {
	Timestamp    string  `json:"timestamp"`
	Event        string  `json:"event"`
	TemperatureC float64 `json:"temperature_c"`
	ThresholdC   float64 `json:"threshold_c"`
	Enabled      bool    `json:"enabled"`
}

// FormatPayload creates the JSON payload for an alarm event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Alarm: AlarmPayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			TemperatureC: event.Temperature.Celsius(),
			ThresholdC:   event.Threshold.Celsius(),
			Enabled:      event.Enabled,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the message for system events that carry no status
// snapshot, such as the will message and RECONNECTED.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly. A zero Timestamp
// leaves the field out.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}
