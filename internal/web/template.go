package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/anybutton/internal/button"
	"github.com/sweeney/anybutton/internal/status"
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
	"valueClass": func(v int) string {
		switch v {
		case button.ValueCleared:
			return "cleared"
		case button.ValueOff:
			return "off"
		}
		return "on"
	},
	"pressed": func(l button.Level) bool {
		return l == button.LevelHigh
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>anybutton</title>
<style>
body { font-family: monospace; max-width: 720px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.cleared { color: #bbb; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>anybutton</h1>

<h2>Buttons</h2>
<table>
<tr><th>Name</th><th>Behavior</th><th>Value</th><th>Pressed</th><th>Phase</th><th>Reports</th></tr>
{{range .Buttons}}<tr>
<td>{{.Name}}</td>
<td>{{.Kind}} / {{.Mode}} / {{.Span}}</td>
<td class="{{valueClass .Value}}">{{.Value}}</td>
<td>{{if pressed .Level}}yes{{else}}no{{end}}</td>
<td>{{.Phase}}</td>
<td>{{.Reports}}{{if .Clears}} ({{.Clears}} cleared){{end}}</td>
</tr>
{{else}}<tr><td colspan="6">no buttons</td></tr>
{{end}}</table>
{{if .Indicator.Present}}<p>Indicator: {{if .Indicator.Active}}{{.Indicator.Color}}{{else}}off{{end}}</p>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Client ID</th><td>{{.Config.ClientID}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Reports</th><td>{{.Reports}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
