package logic

import (
	"github.com/sweeney/footswitch/internal/gpio"
)

// LineConfig describes one control line to the amplifier.
type LineConfig struct {
	// Name identifies the amp function (e.g. "reverb"). Diagnostic only.
	Name string

	// Latching lines toggle on every switch closure and ignore releases.
	// Momentary lines follow the switch.
	Latching bool

	// Inverted selects the opto-coupled drive, where the isolation stage
	// flips the sense between the pin and the amp.
	Inverted bool
}

// ControlLine owns one output line to the amplifier. The amp puts a pull-up
// on every control line; a pedal activates a function by grounding it.
type ControlLine struct {
	cfg          LineConfig
	pin          gpio.Pin
	drive        driveStrategy
	isPulledDown bool
}

// NewControlLine binds pin and immediately drives the line to its rest
// state: floating when inverted, pulled down otherwise.
func NewControlLine(cfg LineConfig, pin gpio.Pin) (*ControlLine, error) {
	l := &ControlLine{
		cfg:   cfg,
		pin:   pin,
		drive: strategyFor(cfg.Inverted),
	}

	if err := l.Rest(); err != nil {
		return nil, err
	}
	return l, nil
}

// Rest drives the line to its off state for its polarity: floating when
// inverted, pulled down otherwise. The pin is written even if the line is
// already there.
func (l *ControlLine) Rest() error {
	if l.cfg.Inverted {
		return l.float()
	}
	return l.pullDown()
}

// SwitchGotClosed handles the bound pedal closing.
func (l *ControlLine) SwitchGotClosed() error {
	// Polarity does not matter for a toggle: another press undoes it.
	if l.cfg.Latching {
		if l.isPulledDown {
			return l.float()
		}
		return l.pullDown()
	}

	if l.cfg.Inverted {
		if !l.isPulledDown {
			return nil // already floating
		}
		return l.float()
	}
	if l.isPulledDown {
		return nil // already down
	}
	return l.pullDown()
}

// SwitchGotOpened handles the bound pedal opening. Latching lines ignore it.
func (l *ControlLine) SwitchGotOpened() error {
	if l.cfg.Latching {
		return nil
	}

	if l.cfg.Inverted {
		if l.isPulledDown {
			return nil
		}
		return l.pullDown()
	}
	if !l.isPulledDown {
		return nil
	}
	return l.float()
}

func (l *ControlLine) pullDown() error {
	if err := l.drive.pullDown(l.pin); err != nil {
		return err
	}
	l.isPulledDown = true
	return nil
}

func (l *ControlLine) float() error {
	if err := l.drive.float(l.pin); err != nil {
		return err
	}
	l.isPulledDown = false
	return nil
}

// IsPulledDown reports whether the line is being actively driven.
func (l *ControlLine) IsPulledDown() bool {
	return l.isPulledDown
}

// State returns the electrical state of the line.
func (l *ControlLine) State() LineState {
	if l.isPulledDown {
		return PulledDown
	}
	return Floating
}

// Name returns the amp function the line controls.
func (l *ControlLine) Name() string {
	return l.cfg.Name
}

// IsLatching reports whether the line toggles on each closure.
func (l *ControlLine) IsLatching() bool {
	return l.cfg.Latching
}

// IsInverted reports whether the line uses the opto-coupled drive.
func (l *ControlLine) IsInverted() bool {
	return l.cfg.Inverted
}

// Pin returns the pin name.
func (l *ControlLine) Pin() string {
	return l.pin.String()
}
