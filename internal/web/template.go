package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/footswitch/internal/status"
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
	"line": status.LineJSONFrom,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Footswitch</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.PULLED_DOWN, .CLOSED { color: green; font-weight: bold; }
.FLOATING, .OPEN { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Footswitch{{if .Config.DryRun}} (dry run){{end}}</h1>

<h2>Lines</h2>
<table>
<tr><th>Line</th><th>Pin</th><th>Mode</th><th>Drive</th><th>State</th><th>Changes</th></tr>
{{range .Lines}}{{$l := line .}}<tr><td><a href="/lines/{{$l.Name}}">{{$l.Name}}</a></td><td>{{$l.Pin}}</td><td>{{$l.Mode}}</td><td>{{$l.Drive}}</td><td class="{{$l.State}}">{{$l.State}}</td><td>{{$l.Changes}}</td></tr>
{{end}}</table>

<h2>Switches</h2>
<table>
<tr><th>Switch</th><th>Pin</th><th>State</th><th>Closed</th><th>Opened</th><th>Lines</th></tr>
{{range .Switches}}<tr><td>{{.Name}}</td><td>{{.Pin}}</td><td class="{{.State}}">{{.State}}</td><td>{{.Counts.Closed}}</td><td>{{.Counts.Opened}}</td><td>{{range $i, $n := .Lines}}{{if $i}}, {{end}}{{$n}}{{end}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Events</th><td>{{.EventCount}}{{with .LastEvent}} (last: {{.Switch}} {{.Edge}}){{end}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}} {{.Config.Chip}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
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
	if err := indexTmpl.Execute(w, data); err != nil {
		log.WithError(err).Error("render status page")
	}
}
