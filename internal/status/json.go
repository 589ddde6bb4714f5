package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/footswitch/internal/bridge"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Lines         []LineJSON     `json:"lines"`
	Switches      []SwitchJSON   `json:"switches"`
	EventCount    int            `json:"event_count"`
	LastEvent     *LastEventJSON `json:"last_event,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// LineJSON is the JSON representation of one control line.
type LineJSON struct {
	Name    string `json:"name"`
	Pin     string `json:"pin"`
	Mode    string `json:"mode"`
	Drive   string `json:"drive"`
	State   string `json:"state"`
	Changes int    `json:"changes"`
}

// SwitchJSON is the JSON representation of one pedal switch.
type SwitchJSON struct {
	Name   string   `json:"name"`
	Pin    string   `json:"pin"`
	State  string   `json:"state"`
	Closed int      `json:"closed"`
	Opened int      `json:"opened"`
	Lines  []string `json:"lines"`
}

// LastEventJSON summarises the most recent switch edge.
type LastEventJSON struct {
	Timestamp string `json:"timestamp"`
	Switch    string `json:"switch"`
	Edge      string `json:"edge"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs     int64  `json:"poll_ms"`
	DebounceMs int64  `json:"debounce_ms"`
	Backend    string `json:"backend"`
	Chip       string `json:"chip"`
	Broker     string `json:"broker"`
	HTTPAddr   string `json:"http_addr"`
	DryRun     bool   `json:"dry_run"`
}

// LineJSONFrom converts a bridge line snapshot to its JSON form.
func LineJSONFrom(l bridge.LineSnapshot) LineJSON {
	mode := "momentary"
	if l.Latching {
		mode = "latching"
	}
	drive := "direct"
	if l.Inverted {
		drive = "opto"
	}
	return LineJSON{
		Name:    l.Name,
		Pin:     l.Pin,
		Mode:    mode,
		Drive:   drive,
		State:   string(l.State),
		Changes: l.Changes,
	}
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Lines:         make([]LineJSON, 0, len(snap.Lines)),
		Switches:      make([]SwitchJSON, 0, len(snap.Switches)),
		EventCount:    snap.EventCount,
		Config: ConfigJSON{
			PollMs:     snap.Config.PollMs,
			DebounceMs: snap.Config.DebounceMs,
			Backend:    snap.Config.Backend,
			Chip:       snap.Config.Chip,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
			DryRun:     snap.Config.DryRun,
		},
	}

	for _, l := range snap.Lines {
		inner.Lines = append(inner.Lines, LineJSONFrom(l))
	}
	for _, s := range snap.Switches {
		lines := s.Lines
		if lines == nil {
			lines = []string{}
		}
		inner.Switches = append(inner.Switches, SwitchJSON{
			Name:   s.Name,
			Pin:    s.Pin,
			State:  string(s.State),
			Closed: s.Counts.Closed,
			Opened: s.Counts.Opened,
			Lines:  lines,
		})
	}
	if snap.LastEvent != nil {
		inner.LastEvent = &LastEventJSON{
			Timestamp: snap.LastEvent.Time.UTC().Format(time.RFC3339Nano),
			Switch:    snap.LastEvent.Switch,
			Edge:      snap.LastEvent.Edge.String(),
		}
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
