package gpio

import (
	"fmt"
	"sync"
)

// OpKind identifies a recorded pin operation.
type OpKind string

const (
	OpMode  OpKind = "mode"
	OpWrite OpKind = "write"
)

// Op is one recorded SetMode or Write call on a FakePin.
type Op struct {
	Kind  OpKind
	Mode  Mode
	Level Level
}

// FakeBank is an in-memory Bank for tests and dry runs.
type FakeBank struct {
	mu     sync.Mutex
	pins   map[int]*FakePin
	closed bool

	// ClaimError, if set, will be returned by Claim.
	ClaimError error
}

// NewFakeBank creates an empty FakeBank.
func NewFakeBank() *FakeBank {
	return &FakeBank{pins: make(map[int]*FakePin)}
}

// Claim creates a FakePin for the line.
func (b *FakeBank) Claim(line int) (Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ClaimError != nil {
		return nil, b.ClaimError
	}
	if b.closed {
		return nil, ErrBankClosed
	}
	if _, ok := b.pins[line]; ok {
		return nil, fmt.Errorf("%w: GPIO%d", ErrPinClaimed, line)
	}

	p := NewFakePin(line)
	b.pins[line] = p
	return p, nil
}

// Pin returns the claimed pin for line, or nil.
func (b *FakeBank) Pin(line int) *FakePin {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pins[line]
}

// Close marks the bank closed and leaves every pin as it was last driven,
// like the hardware backends.
func (b *FakeBank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// Closed reports whether Close was called.
func (b *FakeBank) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// FakePin records every mode change and write, and returns injected levels
// from Read.
type FakePin struct {
	mu    sync.Mutex
	line  int
	mode  Mode
	out   Level
	in    Level
	ops   []Op
	reads int

	// Samples, if set, are returned by successive Read calls.
	// Once exhausted the last sample repeats.
	Samples []Level
	index   int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// WriteError, if set, will be returned by Write and SetMode.
	WriteError error
}

// NewFakePin creates an input pin reading Low.
func NewFakePin(line int) *FakePin {
	return &FakePin{line: line}
}

// SetInput sets the level returned by Read when no Samples are scripted.
func (p *FakePin) SetInput(l Level) {
	p.mu.Lock()
	p.in = l
	p.mu.Unlock()
}

func (p *FakePin) SetMode(m Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.WriteError != nil {
		return p.WriteError
	}
	p.mode = m
	p.ops = append(p.ops, Op{Kind: OpMode, Mode: m})
	return nil
}

func (p *FakePin) Read() (Level, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ReadError != nil {
		return Low, p.ReadError
	}
	p.reads++

	if len(p.Samples) > 0 {
		l := p.Samples[p.index]
		if p.index < len(p.Samples)-1 {
			p.index++
		}
		return l, nil
	}
	return p.in, nil
}

func (p *FakePin) Write(l Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.WriteError != nil {
		return p.WriteError
	}
	p.out = l
	p.ops = append(p.ops, Op{Kind: OpWrite, Level: l})
	return nil
}

func (p *FakePin) String() string {
	return fmt.Sprintf("GPIO%d", p.line)
}

// Mode returns the current pin direction.
func (p *FakePin) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Driven returns the last written level.
func (p *FakePin) Driven() Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

// Ops returns a copy of the recorded operations.
func (p *FakePin) Ops() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Op(nil), p.ops...)
}

// Writes returns the number of recorded Write calls.
func (p *FakePin) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, op := range p.ops {
		if op.Kind == OpWrite {
			n++
		}
	}
	return n
}

// Reads returns the number of successful Read calls.
func (p *FakePin) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// Reset clears recorded operations and rewinds Samples.
func (p *FakePin) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = nil
	p.index = 0
	p.reads = 0
}
