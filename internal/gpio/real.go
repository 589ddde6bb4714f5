//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// ChipBank claims lines from a Linux GPIO character device.
type ChipBank struct {
	mu     sync.Mutex
	chip   *gpiocdev.Chip
	lines  map[int]*chipPin
	closed bool
}

// chipPin is a single requested line.
type chipPin struct {
	line    *gpiocdev.Line
	offset  int
	mode    Mode
	written Level
}

// NewChipBank opens the named chip (e.g. "gpiochip0").
func NewChipBank(name string) (*ChipBank, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("footswitch"))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrChipOpen, name, err)
	}
	return &ChipBank{
		chip:  chip,
		lines: make(map[int]*chipPin),
	}, nil
}

// Claim requests the line as an input with bias disabled, so an unconfigured
// line never drives the amp.
func (b *ChipBank) Claim(offset int) (Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBankClosed
	}
	if _, ok := b.lines[offset]; ok {
		return nil, fmt.Errorf("%w: GPIO%d", ErrPinClaimed, offset)
	}

	line, err := b.chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithBiasDisabled)
	if err != nil {
		return nil, fmt.Errorf("%w GPIO%d: %v", ErrLineRequest, offset, err)
	}

	p := &chipPin{line: line, offset: offset, mode: Input}
	b.lines[offset] = p
	return p, nil
}

// Close releases every line as it was last driven. Callers put control lines
// into their rest state first.
func (b *ChipBank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for offset, p := range b.lines {
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close GPIO%d: %w", offset, err))
		}
	}
	if err := b.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	return errors.Join(errs...)
}

func (p *chipPin) SetMode(m Mode) error {
	var err error
	switch m {
	case Input:
		err = p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled)
	case Output:
		err = p.line.Reconfigure(gpiocdev.AsOutput(levelToValue(p.written)))
	default:
		return fmt.Errorf("GPIO%d: unknown mode %d", p.offset, m)
	}
	if err != nil {
		return fmt.Errorf("set GPIO%d to %s: %w", p.offset, m, err)
	}
	p.mode = m
	return nil
}

func (p *chipPin) Read() (Level, error) {
	v, err := p.line.Value()
	if err != nil {
		return Low, fmt.Errorf("read GPIO%d: %w", p.offset, err)
	}
	return v != 0, nil
}

func (p *chipPin) Write(l Level) error {
	if err := p.line.SetValue(levelToValue(l)); err != nil {
		return fmt.Errorf("write GPIO%d: %w", p.offset, err)
	}
	p.written = l
	return nil
}

func (p *chipPin) String() string {
	return fmt.Sprintf("GPIO%d", p.offset)
}

func levelToValue(l Level) int {
	if l {
		return 1
	}
	return 0
}
