// Package bridge wires pedal switches to amp control lines. It polls every
// EdgeDetector once per Step and delivers each edge to the bound lines
// before the next switch is polled.
package bridge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sweeney/footswitch/internal/logic"
)

// Binding routes one switch to zero or more lines, in order.
type Binding struct {
	Switch string
	Lines  []string
}

// LineChange records what an edge did to one bound line. From equals To
// when the event was absorbed as spurious.
type LineChange struct {
	Line string
	From logic.LineState
	To   logic.LineState
}

// Changed reports whether the line moved.
func (c LineChange) Changed() bool {
	return c.From != c.To
}

// Event is one debounced switch edge and its effect on the bound lines.
type Event struct {
	Time   time.Time
	Switch string
	Edge   logic.Edge
	Lines  []LineChange
}

// SwitchCounts tracks the edges seen on one switch since startup.
type SwitchCounts struct {
	Closed int
	Opened int
}

type boundSwitch struct {
	name     string
	detector *logic.EdgeDetector
	lines    []*logic.ControlLine
	counts   SwitchCounts
}

// Bridge is the dispatcher. It is not safe for concurrent use; the poll
// loop owns it and hands snapshots to other goroutines.
type Bridge struct {
	switches []*boundSwitch
	lines    []*logic.ControlLine
	changes  map[string]int
	lastPoll time.Time
	polled   bool
}

// New binds named switches to named lines. Every binding must reference a
// known switch and known lines. Switches without a binding are still polled.
func New(switches map[string]*logic.EdgeDetector, lines map[string]*logic.ControlLine, bindings []Binding) (*Bridge, error) {
	b := &Bridge{changes: make(map[string]int)}

	byName := make(map[string]*boundSwitch, len(switches))
	for name, d := range switches {
		bs := &boundSwitch{name: name, detector: d}
		byName[name] = bs
		b.switches = append(b.switches, bs)
	}
	sort.Slice(b.switches, func(i, j int) bool {
		return b.switches[i].name < b.switches[j].name
	})

	for name, l := range lines {
		b.lines = append(b.lines, l)
		b.changes[name] = 0
	}
	sort.Slice(b.lines, func(i, j int) bool {
		return b.lines[i].Name() < b.lines[j].Name()
	})

	for _, binding := range bindings {
		bs, ok := byName[binding.Switch]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSwitch, binding.Switch)
		}
		for _, lineName := range binding.Lines {
			l, ok := lines[lineName]
			if !ok {
				return nil, fmt.Errorf("%w: %q (bound to switch %q)", ErrUnknownLine, lineName, binding.Switch)
			}
			bs.lines = append(bs.lines, l)
		}
	}

	return b, nil
}

// Step polls every switch once at now. Pin errors are collected and do not
// stop the remaining switches from being polled.
func (b *Bridge) Step(now time.Time) ([]Event, error) {
	if b.polled && now.Before(b.lastPoll) {
		return nil, fmt.Errorf("%w: %v before %v", ErrTimeWentBackwards, now, b.lastPoll)
	}
	b.lastPoll = now
	b.polled = true

	var events []Event
	var errs []error

	for _, bs := range b.switches {
		edge, err := bs.detector.Poll(now)
		if err != nil {
			errs = append(errs, fmt.Errorf("switch %s: %w", bs.name, err))
			continue
		}
		if edge == logic.NoChange {
			continue
		}

		switch edge {
		case logic.ClosedEdge:
			bs.counts.Closed++
		case logic.OpenedEdge:
			bs.counts.Opened++
		}

		event := Event{Time: now, Switch: bs.name, Edge: edge}
		for _, l := range bs.lines {
			from := l.State()
			if err := deliver(l, edge); err != nil {
				errs = append(errs, fmt.Errorf("line %s: %w", l.Name(), err))
			}
			change := LineChange{Line: l.Name(), From: from, To: l.State()}
			if change.Changed() {
				b.changes[l.Name()]++
			}
			event.Lines = append(event.Lines, change)
		}
		events = append(events, event)
	}

	return events, errors.Join(errs...)
}

// Rest drives every line to its off state, as at startup. Every line is
// attempted; failures are joined.
func (b *Bridge) Rest() error {
	var errs []error
	for _, l := range b.lines {
		from := l.State()
		if err := l.Rest(); err != nil {
			errs = append(errs, fmt.Errorf("line %s: %w", l.Name(), err))
			continue
		}
		if from != l.State() {
			b.changes[l.Name()]++
		}
	}
	return errors.Join(errs...)
}

func deliver(l *logic.ControlLine, edge logic.Edge) error {
	if edge == logic.ClosedEdge {
		return l.SwitchGotClosed()
	}
	return l.SwitchGotOpened()
}
