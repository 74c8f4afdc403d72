package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/thermo-alarm/internal/sensor"
	"github.com/sweeney/thermo-alarm/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"celsius": func(t sensor.Temperature) string {
		return fmt.Sprintf("%.1f °C", t.Celsius())
	},
	"alarmClass": func(text string) string {
		switch text {
		case "ACTIVE":
			return "active"
		case "PAUSED":
			return "paused"
		case "ARMED":
			return "armed"
		}
		return "off"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Thermo Alarm</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: red; font-weight: bold; }
.paused { color: orange; font-weight: bold; }
.armed { color: green; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Thermo Alarm</h1>

<h2>State</h2>
<table>
<tr><th>Temperature</th><td id="temperature">{{if .State.HaveReading}}{{celsius .State.Temperature}}{{else}}waiting{{end}}</td></tr>
<tr><th>Threshold</th><td id="threshold">{{celsius .State.Threshold}}</td></tr>
<tr><th>Alarm</th><td id="alarm" class="{{alarmClass .Alarm}}">{{.Alarm}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Dropped</th><td>{{.MQTTDropped}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Alarm on</th><td>{{.Counts.AlarmOn}}</td></tr>
<tr><th>Alarm off</th><td>{{.Counts.AlarmOff}}</td></tr>
<tr><th>Paused</th><td>{{.Counts.Paused}}</td></tr>
<tr><th>Resumed</th><td>{{.Counts.Resumed}}</td></tr>
<tr><th>Enabled</th><td>{{.Counts.Enabled}}</td></tr>
<tr><th>Disabled</th><td>{{.Counts.Disabled}}</td></tr>
<tr><th>Threshold changes</th><td>{{.Counts.ThresholdChanges}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Conversion</th><td>{{.Config.ConvertMs}}ms at {{.Config.Resolution}} bits</td></tr>
<tr><th>Beeper</th><td>{{if .Config.Beep}}on{{else}}steady{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>EEPROM</th><td>{{.Config.EEPROMPath}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and AlarmText() methods; the template reads fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Alarm  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Alarm:    snap.AlarmText(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
