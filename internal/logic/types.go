// Package logic contains the footswitch core: debounced edge detection on
// pedal inputs and the control-line state machine driving the amplifier.
// This package does not log, sleep or read the clock. Time is always
// injectable via time.Time parameters and hardware is reached only through
// the gpio.Pin each component owns.
package logic

// Edge is the result of polling an EdgeDetector.
type Edge int

const (
	NoChange Edge = iota
	ClosedEdge
	OpenedEdge
)

func (e Edge) String() string {
	switch e {
	case NoChange:
		return "NO_CHANGE"
	case ClosedEdge:
		return "CLOSED"
	case OpenedEdge:
		return "OPENED"
	default:
		return "UNKNOWN"
	}
}

// LineState is the electrical state of a control line.
type LineState string

const (
	// PulledDown means the line is actively driven to the "pressed" level.
	PulledDown LineState = "PULLED_DOWN"
	// Floating means the line is released and the amp's pull-up wins.
	Floating LineState = "FLOATING"
)

// SwitchState is the debounced state of a pedal switch.
type SwitchState string

const (
	SwitchOpen   SwitchState = "OPEN"
	SwitchClosed SwitchState = "CLOSED"
)
