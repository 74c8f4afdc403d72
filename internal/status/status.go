// Package status provides a thread-safe view of the thermo-alarm daemon for
// the HTTP status page and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermo-alarm/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	SampleMs    int64
	ConvertMs   int64
	Resolution  int
	HeartbeatMs int64
	Beep        bool
	Broker      string
	HTTPAddr    string
	EEPROMPath  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	// MQTTDropped counts events the publish queue had no room for.
	MQTTDropped uint64
	Config      Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. The control loop
// writes it, HTTP handlers read it.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the controller state and event counts.
func (t *Tracker) Update(state logic.State, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTT records the MQTT connection status and drop count.
func (t *Tracker) SetMQTT(connected bool, dropped uint64) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.snap.MQTTDropped = dropped
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
