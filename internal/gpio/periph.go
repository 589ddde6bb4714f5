package gpio

import (
	"fmt"
	"strconv"
	"sync"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphBank claims pins through the periph.io registry.
type PeriphBank struct {
	mu     sync.Mutex
	pins   map[int]*periphPin
	closed bool
}

type periphPin struct {
	pin     pgpio.PinIO
	mode    Mode
	written Level
}

// NewPeriphBank initializes the periph.io host drivers.
func NewPeriphBank() (*PeriphBank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeriphInit, err)
	}
	return &PeriphBank{pins: make(map[int]*periphPin)}, nil
}

// Claim looks the line up by its number and leaves it floating.
func (b *PeriphBank) Claim(line int) (Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBankClosed
	}
	if _, ok := b.pins[line]; ok {
		return nil, fmt.Errorf("%w: GPIO%d", ErrPinClaimed, line)
	}

	pin := gpioreg.ByName(strconv.Itoa(line))
	if pin == nil {
		return nil, fmt.Errorf("%w: GPIO%d", ErrPinNotFound, line)
	}

	p := &periphPin{pin: pin}
	if err := p.SetMode(Input); err != nil {
		return nil, err
	}
	b.pins[line] = p
	return p, nil
}

// Close stops handing out pins. periph keeps each pin as it was last
// driven, so callers put control lines into their rest state first.
func (b *PeriphBank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

func (p *periphPin) SetMode(m Mode) error {
	var err error
	switch m {
	case Input:
		err = p.pin.In(pgpio.Float, pgpio.NoEdge)
	case Output:
		err = p.pin.Out(pgpio.Level(p.written))
	default:
		return fmt.Errorf("%s: unknown mode %d", p.pin.Name(), m)
	}
	if err != nil {
		return fmt.Errorf("set %s to %s: %w", p.pin.Name(), m, err)
	}
	p.mode = m
	return nil
}

func (p *periphPin) Read() (Level, error) {
	return Level(p.pin.Read()), nil
}

func (p *periphPin) Write(l Level) error {
	if err := p.pin.Out(pgpio.Level(l)); err != nil {
		return fmt.Errorf("write %s: %w", p.pin.Name(), err)
	}
	p.written = l
	p.mode = Output
	return nil
}

func (p *periphPin) String() string {
	return p.pin.Name()
}
