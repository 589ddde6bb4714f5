package logic

import (
	"time"

	"github.com/sweeney/footswitch/internal/gpio"
)

// DefaultDebounce is the quiet period after an accepted transition.
const DefaultDebounce = 10 * time.Millisecond

// EdgeDetector tracks one momentary pedal switch and reports debounced
// transitions. A HIGH input means the pedal is pressed.
type EdgeDetector struct {
	pin            gpio.Pin
	debounce       time.Duration
	isSwitchClosed bool
	lastEvent      time.Time
}

// NewEdgeDetector binds pin as an input and starts with the switch open.
// A debounce of zero or less selects DefaultDebounce.
func NewEdgeDetector(pin gpio.Pin, debounce time.Duration) (*EdgeDetector, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := pin.SetMode(gpio.Input); err != nil {
		return nil, err
	}
	return &EdgeDetector{
		pin:      pin,
		debounce: debounce,
	}, nil
}

// Poll samples the switch and returns at most one transition.
//
// Within the debounce window after the last accepted transition the pin is
// not even sampled. The window is only re-armed by an accepted transition,
// so a steady input never pushes it forward. On a read error the state is
// left untouched and NoChange is returned with the error.
func (d *EdgeDetector) Poll(now time.Time) (Edge, error) {
	if now.Sub(d.lastEvent) < d.debounce {
		return NoChange, nil
	}

	level, err := d.pin.Read()
	if err != nil {
		return NoChange, err
	}

	closed := level == gpio.High
	if closed == d.isSwitchClosed {
		return NoChange, nil
	}

	d.isSwitchClosed = closed
	d.lastEvent = now
	if closed {
		return ClosedEdge, nil
	}
	return OpenedEdge, nil
}

// IsSwitchClosed returns the last accepted switch state.
func (d *EdgeDetector) IsSwitchClosed() bool {
	return d.isSwitchClosed
}

// State returns the last accepted switch state.
func (d *EdgeDetector) State() SwitchState {
	if d.isSwitchClosed {
		return SwitchClosed
	}
	return SwitchOpen
}

// LastEvent returns the time of the last accepted transition.
func (d *EdgeDetector) LastEvent() time.Time {
	return d.lastEvent
}

// Debounce returns the configured quiet period.
func (d *EdgeDetector) Debounce() time.Duration {
	return d.debounce
}

// Pin returns the pin name.
func (d *EdgeDetector) Pin() string {
	return d.pin.String()
}
