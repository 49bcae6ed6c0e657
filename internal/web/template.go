package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/desk-alarm/internal/notify"
	"github.com/sweeney/desk-alarm/internal/status"
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
	"isIdle": func(s notify.State) bool { return s == notify.Idle },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Desk Alarm</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: #888; }
.active { color: green; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.swatch { display: inline-block; width: 12px; height: 12px; border: 1px solid #999; vertical-align: middle; margin-right: 6px; }
.panel { image-rendering: pixelated; width: 384px; height: 192px; background: #000; }
</style>
</head>
<body>
<h1>Desk Alarm</h1>
{{if .Display}}<p><img class="panel" src="/display.png" alt="display"></p>{{end}}

<h2>Notification</h2>
<table>
<tr><th>State</th><td id="state" class="{{if isIdle .State}}idle{{else}}active{{end}}">{{.State}}</td></tr>
<tr><th>Since</th><td>{{.Since.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{if .MelodyTitle}}<tr><th>Position</th><td>{{.Command.Position}}</td></tr>
<tr><th>Melody</th><td>{{.MelodyTitle}}</td></tr>{{end}}
{{if .Command.Username}}<tr><th>User</th><td>{{.Command.Username}}</td></tr>{{end}}
<tr><th>LED</th><td><span class="swatch" style="background: {{.LED}}"></span>{{.LED}}</td></tr>
<tr><th>Button presses</th><td>{{.Presses}}</td></tr>
</table>

<h2>Counts</h2>
<table>
{{range .ShownRows}}<tr><th>{{.Name}} shown</th><td>{{.Count}}</td></tr>
{{end}}{{range .DismissedRows}}<tr><th>dismissed by {{.Name}}</th><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Timeout</th><td>{{.Config.TimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Command API</th><td>{{if .Config.Listen}}{{.Config.Listen}}{{else}}disabled{{end}}</td></tr>
<tr><th>Command source</th><td>{{if .Config.Demo}}demo{{else}}network{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type countRow struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot, display bool) error {
	data := struct {
		status.Snapshot
		Uptime        time.Duration
		Display       bool
		ShownRows     []countRow
		DismissedRows []countRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Display:  display,
	}
	for _, s := range []notify.State{notify.DeskError, notify.PreAlarm, notify.Alarm, notify.Login, notify.Logout} {
		data.ShownRows = append(data.ShownRows, countRow{s.String(), snap.Counts.Shown[s]})
	}
	for _, r := range []notify.Reason{notify.ReasonButton, notify.ReasonTimeout, notify.ReasonMelodyDone, notify.ReasonCleared} {
		data.DismissedRows = append(data.DismissedRows, countRow{string(r), snap.Counts.Dismissed[r]})
	}
	return indexTmpl.Execute(w, data)
}
