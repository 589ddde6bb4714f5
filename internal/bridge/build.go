package bridge

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sweeney/footswitch/internal/gpio"
	"github.com/sweeney/footswitch/internal/logic"
)

// SwitchSpec names a pedal switch and the GPIO line it is wired to.
type SwitchSpec struct {
	Name string
	Line int
}

// LineSpec names an amp control line and how it is driven.
type LineSpec struct {
	Name     string
	Line     int
	Latching bool
	Inverted bool
}

// Spec is a complete pedalboard layout.
type Spec struct {
	Debounce time.Duration
	Switches []SwitchSpec
	Lines    []LineSpec
	Bindings []Binding
}

// Build claims every pin from bank and assembles a Bridge. Control lines are
// configured first so the amp sees every function off as early as possible.
func Build(bank gpio.Bank, spec Spec) (*Bridge, error) {
	lines := make(map[string]*logic.ControlLine, len(spec.Lines))
	for _, ls := range spec.Lines {
		if _, dup := lines[ls.Name]; dup {
			return nil, fmt.Errorf("%w: line %q", ErrDuplicateName, ls.Name)
		}
		pin, err := bank.Claim(ls.Line)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", ls.Name, err)
		}
		l, err := logic.NewControlLine(logic.LineConfig{
			Name:     ls.Name,
			Latching: ls.Latching,
			Inverted: ls.Inverted,
		}, pin)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", ls.Name, err)
		}
		lines[ls.Name] = l
		log.WithFields(log.Fields{
			"line":     ls.Name,
			"pin":      pin.String(),
			"latching": ls.Latching,
			"inverted": ls.Inverted,
			"state":    l.State(),
		}).Info("configured control line")
	}

	switches := make(map[string]*logic.EdgeDetector, len(spec.Switches))
	for _, ss := range spec.Switches {
		if _, dup := switches[ss.Name]; dup {
			return nil, fmt.Errorf("%w: switch %q", ErrDuplicateName, ss.Name)
		}
		pin, err := bank.Claim(ss.Line)
		if err != nil {
			return nil, fmt.Errorf("switch %s: %w", ss.Name, err)
		}
		d, err := logic.NewEdgeDetector(pin, spec.Debounce)
		if err != nil {
			return nil, fmt.Errorf("switch %s: %w", ss.Name, err)
		}
		switches[ss.Name] = d
		log.WithFields(log.Fields{
			"switch":   ss.Name,
			"pin":      pin.String(),
			"debounce": d.Debounce(),
		}).Info("configured pedal switch")
	}

	return New(switches, lines, spec.Bindings)
}
