package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/footswitch/internal/gpio"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestDetector(t *testing.T) (*EdgeDetector, *gpio.FakePin) {
	t.Helper()
	pin := gpio.NewFakePin(16)
	d, err := NewEdgeDetector(pin, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewEdgeDetector: %v", err)
	}
	return d, pin
}

func TestNewEdgeDetector(t *testing.T) {
	pin := gpio.NewFakePin(16)
	pin.SetMode(gpio.Output)

	d, err := NewEdgeDetector(pin, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Debounce() != DefaultDebounce {
		t.Errorf("expected default debounce %v, got %v", DefaultDebounce, d.Debounce())
	}
	if pin.Mode() != gpio.Input {
		t.Errorf("expected pin set to INPUT, got %s", pin.Mode())
	}
	if d.IsSwitchClosed() {
		t.Error("new detector should start open")
	}
	if d.State() != SwitchOpen {
		t.Errorf("expected OPEN, got %s", d.State())
	}
	if d.Pin() != "GPIO16" {
		t.Errorf("unexpected pin %q", d.Pin())
	}
}

func TestNewEdgeDetectorModeError(t *testing.T) {
	pin := gpio.NewFakePin(16)
	pin.WriteError = errors.New("simulated error")

	if _, err := NewEdgeDetector(pin, time.Millisecond); err == nil {
		t.Error("expected error when pin mode cannot be set")
	}
}

func TestPollSteadyOpenReportsNothing(t *testing.T) {
	d, _ := newTestDetector(t)

	for i := 0; i < 10; i++ {
		edge, err := d.Poll(t0.Add(time.Duration(i) * time.Millisecond))
		if err != nil {
			t.Fatalf("poll %d: unexpected error: %v", i, err)
		}
		if edge != NoChange {
			t.Errorf("poll %d: expected NO_CHANGE, got %s", i, edge)
		}
	}
	if !d.LastEvent().IsZero() {
		t.Errorf("steady input should not stamp the timer, got %v", d.LastEvent())
	}
}

func TestPollClosedThenOpened(t *testing.T) {
	d, pin := newTestDetector(t)

	pin.SetInput(gpio.High)
	edge, _ := d.Poll(t0)
	if edge != ClosedEdge {
		t.Fatalf("expected CLOSED, got %s", edge)
	}
	if !d.IsSwitchClosed() {
		t.Error("switch should be closed")
	}
	if !d.LastEvent().Equal(t0) {
		t.Errorf("expected last event %v, got %v", t0, d.LastEvent())
	}

	pin.SetInput(gpio.Low)
	edge, _ = d.Poll(t0.Add(10 * time.Millisecond))
	if edge != OpenedEdge {
		t.Fatalf("expected OPENED at the window boundary, got %s", edge)
	}
	if d.State() != SwitchOpen {
		t.Errorf("expected OPEN, got %s", d.State())
	}
}

func TestPollInsideWindowDoesNotSample(t *testing.T) {
	d, pin := newTestDetector(t)

	pin.SetInput(gpio.High)
	d.Poll(t0)
	reads := pin.Reads()

	pin.SetInput(gpio.Low)
	for _, offset := range []time.Duration{0, time.Millisecond, 5 * time.Millisecond, 9 * time.Millisecond} {
		edge, err := d.Poll(t0.Add(offset))
		if err != nil {
			t.Fatalf("+%v: unexpected error: %v", offset, err)
		}
		if edge != NoChange {
			t.Errorf("+%v: expected NO_CHANGE inside debounce window, got %s", offset, edge)
		}
	}
	if pin.Reads() != reads {
		t.Errorf("pin read %d times inside the window", pin.Reads()-reads)
	}
	if !d.IsSwitchClosed() {
		t.Error("state should not change inside the window")
	}
}

func TestPollTwiceWithinWindow(t *testing.T) {
	levels := []gpio.Level{gpio.High, gpio.Low}
	for _, first := range levels {
		for _, second := range levels {
			d, pin := newTestDetector(t)

			// Accept one transition so the window is armed.
			pin.SetInput(gpio.High)
			d.Poll(t0)

			pin.SetInput(first)
			d.Poll(t0.Add(2 * time.Millisecond))
			pin.SetInput(second)
			edge, _ := d.Poll(t0.Add(6 * time.Millisecond))
			if edge != NoChange {
				t.Errorf("levels %s/%s: expected NO_CHANGE, got %s", first, second, edge)
			}
		}
	}
}

func TestBounceAfterCloseIsSuppressed(t *testing.T) {
	d, pin := newTestDetector(t)

	// Contact bounce for the first few milliseconds, then held down.
	bounce := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High, gpio.Low}

	var edges []Edge
	for ms := 0; ms < 25; ms++ {
		level := gpio.High
		if ms < len(bounce) {
			level = bounce[ms]
		}
		pin.SetInput(level)

		edge, _ := d.Poll(t0.Add(time.Duration(ms) * time.Millisecond))
		if edge != NoChange {
			edges = append(edges, edge)
		}
	}

	if len(edges) != 1 || edges[0] != ClosedEdge {
		t.Errorf("expected a single CLOSED edge, got %v", edges)
	}
}

func TestSteadyInputDoesNotRearmWindow(t *testing.T) {
	d, pin := newTestDetector(t)

	pin.SetInput(gpio.High)
	d.Poll(t0)

	for i := 10; i <= 50; i += 10 {
		edge, _ := d.Poll(t0.Add(time.Duration(i) * time.Millisecond))
		if edge != NoChange {
			t.Errorf("+%dms: expected NO_CHANGE on steady input, got %s", i, edge)
		}
	}
	if !d.LastEvent().Equal(t0) {
		t.Errorf("steady polls moved the timer to %v", d.LastEvent())
	}

	// A genuine release is reported on the very next poll.
	pin.SetInput(gpio.Low)
	edge, _ := d.Poll(t0.Add(51 * time.Millisecond))
	if edge != OpenedEdge {
		t.Errorf("expected OPENED, got %s", edge)
	}
}

func TestPollReadError(t *testing.T) {
	d, pin := newTestDetector(t)
	pin.SetInput(gpio.High)
	pin.ReadError = errors.New("simulated error")

	edge, err := d.Poll(t0)
	if err == nil {
		t.Fatal("expected read error")
	}
	if edge != NoChange {
		t.Errorf("expected NO_CHANGE on error, got %s", edge)
	}
	if d.IsSwitchClosed() || !d.LastEvent().IsZero() {
		t.Error("read error should leave state untouched")
	}

	pin.ReadError = nil
	edge, err = d.Poll(t0.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edge != ClosedEdge {
		t.Errorf("expected CLOSED after recovery, got %s", edge)
	}
}

func TestEdgeString(t *testing.T) {
	tests := map[Edge]string{
		NoChange:   "NO_CHANGE",
		ClosedEdge: "CLOSED",
		OpenedEdge: "OPENED",
		Edge(42):   "UNKNOWN",
	}
	for e, want := range tests {
		if e.String() != want {
			t.Errorf("Edge(%d): expected %q, got %q", int(e), want, e.String())
		}
	}
}
