// Package mqtt publishes footswitch events with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/footswitch/internal/bridge"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "footswitch"

// Topics returns the event and system topics under prefix.
func Topics(prefix string) (events, system string) {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "/events", prefix + "/system"
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a switch edge and its line changes to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event bridge.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a lifecycle event (startup, shutdown, offline).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload is the MQTT message for one switch edge.
type Payload struct {
	Footswitch EdgePayload `json:"footswitch"`
}

// EdgePayload contains the edge details.
type EdgePayload struct {
	Timestamp string        `json:"timestamp"`
	Switch    string        `json:"switch"`
	Edge      string        `json:"edge"`
	Lines     []LinePayload `json:"lines"`
}

// LinePayload is the effect of an edge on one bound line.
type LinePayload struct {
	Line    string `json:"line"`
	From    string `json:"from"`
	To      string `json:"to"`
	Changed bool   `json:"changed"`
}

// FormatPayload creates the JSON payload for a switch edge.
func FormatPayload(event bridge.Event) ([]byte, error) {
	p := Payload{
		Footswitch: EdgePayload{
			Timestamp: event.Time.UTC().Format(time.RFC3339Nano),
			Switch:    event.Switch,
			Edge:      event.Edge.String(),
			Lines:     make([]LinePayload, 0, len(event.Lines)),
		},
	}
	for _, lc := range event.Lines {
		p.Footswitch.Lines = append(p.Footswitch.Lines, LinePayload{
			Line:    lc.Line,
			From:    string(lc.From),
			To:      string(lc.To),
			Changed: lc.Changed(),
		})
	}
	return json.Marshal(p)
}

// SystemPayload is the MQTT message for simple system events that don't
// carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
