// Package status provides a thread-safe status tracker for the footswitch
// daemon. The poll loop writes to it; HTTP handlers read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/footswitch/internal/bridge"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs     int64
	DebounceMs int64
	Backend    string
	Chip       string
	Broker     string
	HTTPAddr   string
	DryRun     bool
}

// Snapshot is a point-in-time view of daemon state. The slices are replaced
// wholesale on every Update, so a Snapshot is safe to read after the lock is
// released.
type Snapshot struct {
	Lines         []bridge.LineSnapshot
	Switches      []bridge.SwitchSnapshot
	LastEvent     *bridge.Event
	EventCount    int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Line returns the named line snapshot.
func (s Snapshot) Line(name string) (bridge.LineSnapshot, bool) {
	for _, l := range s.Lines {
		if l.Name == name {
			return l, true
		}
	}
	return bridge.LineSnapshot{}, false
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the line and switch views. Called from the run loop on
// every tick.
func (t *Tracker) Update(lines []bridge.LineSnapshot, switches []bridge.SwitchSnapshot) {
	t.mu.Lock()
	t.snap.Lines = lines
	t.snap.Switches = switches
	t.mu.Unlock()
}

// RecordEvent stores the most recent switch event.
func (t *Tracker) RecordEvent(e bridge.Event) {
	t.mu.Lock()
	t.snap.LastEvent = &e
	t.snap.EventCount++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
