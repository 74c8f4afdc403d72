package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event  string `json:"event,omitempty"`
	Reason string `json:"reason,omitempty"`
	// TemperatureC is null until the first reading.
	TemperatureC  *float64   `json:"temperature_c"`
	ThresholdC    float64    `json:"threshold_c"`
	Alarm         string     `json:"alarm"`
	Enabled       bool       `json:"enabled"`
	Active        bool       `json:"active"`
	Paused        bool       `json:"paused"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Dropped   uint64 `json:"dropped"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	AlarmOn          int `json:"alarm_on"`
	AlarmOff         int `json:"alarm_off"`
	Paused           int `json:"paused"`
	Resumed          int `json:"resumed"`
	Enabled          int `json:"enabled"`
	Disabled         int `json:"disabled"`
	ThresholdChanges int `json:"threshold_changes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleMs    int64  `json:"sample_ms"`
	ConvertMs   int64  `json:"convert_ms"`
	Resolution  int    `json:"resolution_bits"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Beep        bool   `json:"beep"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	EEPROMPath  string `json:"eeprom_path"`
}

// AlarmText summarises the alarm as OFF, ARMED, ACTIVE or PAUSED.
func (s Snapshot) AlarmText() string {
	switch {
	case !s.State.Enabled:
		return "OFF"
	case s.State.Paused:
		return "PAUSED"
	case s.State.Active:
		return "ACTIVE"
	default:
		return "ARMED"
	}
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		ThresholdC:    snap.State.Threshold.Celsius(),
		Alarm:         snap.AlarmText(),
		Enabled:       snap.State.Enabled,
		Active:        snap.State.Active,
		Paused:        snap.State.Paused,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Dropped:   snap.MQTTDropped,
		},
		Counts: CountsJSON{
			AlarmOn:          snap.Counts.AlarmOn,
			AlarmOff:         snap.Counts.AlarmOff,
			Paused:           snap.Counts.Paused,
			Resumed:          snap.Counts.Resumed,
			Enabled:          snap.Counts.Enabled,
			Disabled:         snap.Counts.Disabled,
			ThresholdChanges: snap.Counts.ThresholdChanges,
		},
		Config: ConfigJSON{
			SampleMs:    snap.Config.SampleMs,
			ConvertMs:   snap.Config.ConvertMs,
			Resolution:  snap.Config.Resolution,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Beep:        snap.Config.Beep,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			EEPROMPath:  snap.Config.EEPROMPath,
		},
	}
	if snap.State.HaveReading {
		c := snap.State.Temperature.Celsius()
		inner.TemperatureC = &c
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
