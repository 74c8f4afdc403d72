// Package logic contains the alarm/display controller: the cooperative main
// loop that turns sensor readings and button presses into display updates,
// alarm output and persisted settings.
//
// All hardware is reached through interfaces. Time is injectable through
// Config.Now so events carry deterministic timestamps in tests.
package logic

import (
	"time"

	"github.com/sweeney/thermo-alarm/internal/sensor"
)

// EventType names a controller state change.
type EventType string

const (
	EventAlarmOn          EventType = "ALARM_ON"
	EventAlarmOff         EventType = "ALARM_OFF"
	EventAlarmPaused      EventType = "ALARM_PAUSED"
	EventAlarmResumed     EventType = "ALARM_RESUMED"
	EventAlarmEnabled     EventType = "ALARM_ENABLED"
	EventAlarmDisabled    EventType = "ALARM_DISABLED"
	EventThresholdChanged EventType = "THRESHOLD_CHANGED"
)

// Event is a state change to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature sensor.Temperature
	Threshold   sensor.Temperature
	Enabled     bool
}

// State is a point-in-time view of the controller.
type State struct {
	Temperature sensor.Temperature
	// HaveReading is false until the first conversion has been read.
	HaveReading bool
	Threshold   sensor.Temperature
	Enabled     bool
	Active      bool
	Paused      bool
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	AlarmOn          int
	AlarmOff         int
	Paused           int
	Resumed          int
	Enabled          int
	Disabled         int
	ThresholdChanges int
}

func (c *EventCounts) add(t EventType) {
	switch t {
	case EventAlarmOn:
		c.AlarmOn++
	case EventAlarmOff:
		c.AlarmOff++
	case EventAlarmPaused:
		c.Paused++
	case EventAlarmResumed:
		c.Resumed++
	case EventAlarmEnabled:
		c.Enabled++
	case EventAlarmDisabled:
		c.Disabled++
	case EventThresholdChanged:
		c.ThresholdChanges++
	}
}
