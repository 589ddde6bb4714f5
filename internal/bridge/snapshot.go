package bridge

import "github.com/sweeney/footswitch/internal/logic"

// LineSnapshot is a point-in-time view of one control line.
type LineSnapshot struct {
	Name     string
	Pin      string
	Latching bool
	Inverted bool
	State    logic.LineState
	Changes  int
}

// SwitchSnapshot is a point-in-time view of one pedal switch.
type SwitchSnapshot struct {
	Name   string
	Pin    string
	State  logic.SwitchState
	Counts SwitchCounts
	Lines  []string
}

// Lines returns every line, sorted by name.
func (b *Bridge) Lines() []LineSnapshot {
	out := make([]LineSnapshot, 0, len(b.lines))
	for _, l := range b.lines {
		out = append(out, LineSnapshot{
			Name:     l.Name(),
			Pin:      l.Pin(),
			Latching: l.IsLatching(),
			Inverted: l.IsInverted(),
			State:    l.State(),
			Changes:  b.changes[l.Name()],
		})
	}
	return out
}

// Switches returns every switch, sorted by name.
func (b *Bridge) Switches() []SwitchSnapshot {
	out := make([]SwitchSnapshot, 0, len(b.switches))
	for _, bs := range b.switches {
		s := SwitchSnapshot{
			Name:   bs.name,
			Pin:    bs.detector.Pin(),
			State:  bs.detector.State(),
			Counts: bs.counts,
		}
		for _, l := range bs.lines {
			s.Lines = append(s.Lines, l.Name())
		}
		out = append(out, s)
	}
	return out
}
