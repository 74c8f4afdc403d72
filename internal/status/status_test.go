package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/thermo-alarm/internal/logic"
	"github.com/sweeney/thermo-alarm/internal/sensor"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{SampleMs: 8, ConvertMs: 500, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config != cfg {
		t.Errorf("Config: got %+v, want %+v", snap.Config, cfg)
	}
	if snap.State.HaveReading {
		t.Error("expected no reading initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	state := logic.State{Temperature: sensor.Whole(21), HaveReading: true, Threshold: sensor.Whole(23), Enabled: true}
	tr.Update(state, logic.EventCounts{AlarmOn: 3, ThresholdChanges: 1})

	snap := tr.Snapshot()
	if snap.State != state {
		t.Errorf("State: got %+v, want %+v", snap.State, state)
	}
	if snap.Counts.AlarmOn != 3 || snap.Counts.ThresholdChanges != 1 {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
}

func TestSetMQTT(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTT(true, 2)
	snap := tr.Snapshot()
	if !snap.MQTTConnected || snap.MQTTDropped != 2 {
		t.Errorf("got connected=%v dropped=%d", snap.MQTTConnected, snap.MQTTDropped)
	}

	tr.SetMQTT(false, 2)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(15 * time.Minute)}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestAlarmText(t *testing.T) {
	tests := []struct {
		state logic.State
		want  string
	}{
		{logic.State{}, "OFF"},
		{logic.State{Active: true, Paused: true}, "OFF"},
		{logic.State{Enabled: true}, "ARMED"},
		{logic.State{Enabled: true, Active: true}, "ACTIVE"},
		{logic.State{Enabled: true, Active: true, Paused: true}, "PAUSED"},
	}
	for _, tt := range tests {
		if got := (Snapshot{State: tt.state}).AlarmText(); got != tt.want {
			t.Errorf("%+v: got %s, want %s", tt.state, got, tt.want)
		}
	}
}

func testSnapshot() Snapshot {
	start := time.Date(2026, 2, 3, 19, 0, 0, 0, time.UTC)
	return Snapshot{
		State: logic.State{
			Temperature: sensor.Whole(26) + 8,
			HaveReading: true,
			Threshold:   sensor.Whole(25),
			Enabled:     true,
			Active:      true,
		},
		Counts:        logic.EventCounts{AlarmOn: 1, Enabled: 1, ThresholdChanges: 2},
		StartTime:     start,
		Now:           start.Add(90 * time.Second),
		MQTTConnected: true,
		Config: Config{
			SampleMs:    8,
			ConvertMs:   500,
			Resolution:  12,
			HeartbeatMs: 900000,
			Beep:        true,
			Broker:      "tcp://localhost:1883",
			HTTPAddr:    ":80",
			EEPROMPath:  "/var/lib/thermo-alarm/eeprom.bin",
		},
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(testSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	s := parsed.Status
	if s.TemperatureC == nil || *s.TemperatureC != 26.5 {
		t.Errorf("temperature_c: got %v", s.TemperatureC)
	}
	if s.ThresholdC != 25 {
		t.Errorf("threshold_c: got %v", s.ThresholdC)
	}
	if s.Alarm != "ACTIVE" || !s.Enabled || !s.Active || s.Paused {
		t.Errorf("alarm fields: %+v", s)
	}
	if s.UptimeSeconds != 90 {
		t.Errorf("uptime_seconds: got %d, want 90", s.UptimeSeconds)
	}
	if s.StartTime != "2026-02-03T19:00:00Z" || s.Timestamp != "2026-02-03T19:01:30Z" {
		t.Errorf("times: %s %s", s.StartTime, s.Timestamp)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("mqtt: %+v", s.MQTT)
	}
	if s.Counts.AlarmOn != 1 || s.Counts.Enabled != 1 || s.Counts.ThresholdChanges != 2 {
		t.Errorf("counts: %+v", s.Counts)
	}
	if s.Config.Resolution != 12 || s.Config.EEPROMPath != "/var/lib/thermo-alarm/eeprom.bin" {
		t.Errorf("config: %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON must not carry event or reason")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("web JSON should be indented")
	}
}

func TestFormatJSONBeforeFirstReading(t *testing.T) {
	snap := testSnapshot()
	snap.State.HaveReading = false

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	v, ok := parsed["status"]["temperature_c"]
	if !ok || v != nil {
		t.Errorf("temperature_c: got %v (present=%v), want null", v, ok)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "SHUTDOWN", "SIGTERM")

	if strings.Contains(string(data), "\n") {
		t.Error("event JSON should be compact")
	}
	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: %q %q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "HEARTBEAT", "")

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["status"]["reason"]; exists {
		t.Error("reason should be omitted")
	}
	if parsed["status"]["event"] != "HEARTBEAT" {
		t.Errorf("event: %v", parsed["status"]["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(logic.State{Temperature: sensor.Temperature(n*100 + j)}, logic.EventCounts{AlarmOn: j})
				tr.SetMQTT(j%2 == 0, uint64(j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				FormatJSON(tr.Snapshot())
			}
		}()
	}
	wg.Wait()
}
