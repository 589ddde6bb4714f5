package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/footswitch/internal/bridge"
	"github.com/sweeney/footswitch/internal/logic"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func sampleEvent() bridge.Event {
	return bridge.Event{
		Time:   t0,
		Switch: "pedal1",
		Edge:   logic.ClosedEdge,
		Lines: []bridge.LineChange{
			{Line: "channel", From: logic.Floating, To: logic.PulledDown},
			{Line: "tap", From: logic.PulledDown, To: logic.PulledDown},
		},
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(sampleEvent())
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	want := `{"footswitch":{"timestamp":"2026-01-01T12:00:00Z","switch":"pedal1","edge":"CLOSED","lines":[` +
		`{"line":"channel","from":"FLOATING","to":"PULLED_DOWN","changed":true},` +
		`{"line":"tap","from":"PULLED_DOWN","to":"PULLED_DOWN","changed":false}]}}`
	if string(payload) != want {
		t.Errorf("payload:\ngot  %s\nwant %s", payload, want)
	}
}

func TestFormatPayload_NoLines(t *testing.T) {
	event := bridge.Event{Time: t0, Switch: "pedal4", Edge: logic.OpenedEdge}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Footswitch.Edge != "OPENED" {
		t.Errorf("edge: got %q, want OPENED", p.Footswitch.Edge)
	}
	if p.Footswitch.Lines == nil || len(p.Footswitch.Lines) != 0 {
		t.Errorf("lines: got %v, want empty array", p.Footswitch.Lines)
	}
}

func TestFormatPayload_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := bridge.Event{Time: time.Date(2026, 1, 1, 14, 0, 0, 0, loc), Switch: "pedal1", Edge: logic.ClosedEdge}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Footswitch.Timestamp != "2026-01-01T12:00:00Z" {
		t.Errorf("timestamp: got %q, want 2026-01-01T12:00:00Z", p.Footswitch.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			name:  "startup",
			event: SystemEvent{Timestamp: t0, Event: "STARTUP"},
			want:  `{"system":{"timestamp":"2026-01-01T12:00:00Z","event":"STARTUP"}}`,
		},
		{
			name:  "shutdown with reason",
			event: SystemEvent{Timestamp: t0, Event: "SHUTDOWN", Reason: "SIGTERM"},
			want:  `{"system":{"timestamp":"2026-01-01T12:00:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			name:  "raw payload passes through",
			event: SystemEvent{Timestamp: t0, Event: "STARTUP", RawPayload: []byte(`{"custom":true}`)},
			want:  `{"custom":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatSystemPayload(tt.event)
			if err != nil {
				t.Fatalf("FormatSystemPayload: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	events, system := Topics("studio/amp")
	if events != "studio/amp/events" || system != "studio/amp/system" {
		t.Errorf("got %q %q", events, system)
	}

	events, system = Topics("")
	if events != "footswitch/events" || system != "footswitch/system" {
		t.Errorf("default prefix: got %q %q", events, system)
	}
}

func TestFakePublisher_Records(t *testing.T) {
	f := NewFakePublisher()
	if !f.IsConnected() {
		t.Error("new fake should report connected")
	}

	if err := f.Publish(sampleEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: t0, Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}

	if len(f.Events) != 1 || len(f.Payloads) != 1 {
		t.Fatalf("events: got %d/%d, want 1/1", len(f.Events), len(f.Payloads))
	}
	if f.Events[0].Switch != "pedal1" {
		t.Errorf("switch: got %q, want pedal1", f.Events[0].Switch)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("system events: got %v", f.SystemEvents)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("Close should mark publisher closed")
	}
}

func TestFakePublisher_Errors(t *testing.T) {
	errBroker := errors.New("broker gone")
	f := NewFakePublisher()
	f.PublishError = errBroker
	f.PublishSystemError = errBroker

	if err := f.Publish(sampleEvent()); !errors.Is(err, errBroker) {
		t.Errorf("Publish: got %v, want %v", err, errBroker)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: t0, Event: "STARTUP"}); !errors.Is(err, errBroker) {
		t.Errorf("PublishSystem: got %v, want %v", err, errBroker)
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

var (
	_ Publisher        = (*FakePublisher)(nil)
	_ Publisher        = (*RealPublisher)(nil)
	_ ConnectionStatus = (*FakePublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
