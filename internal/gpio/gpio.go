// Package gpio provides digital pin access with hardware abstraction.
// Each Pin is a capability claimed from a Bank by exactly one owner.
// The real implementations use the Linux GPIO character device or periph.io.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the electrical level of a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// Mode is the direction of a pin.
type Mode int

const (
	// Input leaves the pin high impedance with no bias.
	Input Mode = iota
	Output
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// Pin is the digital I/O surface a single component needs.
type Pin interface {
	// SetMode switches the pin between input and output.
	SetMode(m Mode) error

	// Read samples the current level of the pin.
	Read() (Level, error)

	// Write drives the pin. The pin should be in Output mode.
	Write(l Level) error

	String() string
}

// Bank hands out pins. A line can be claimed once; a second claim fails
// with ErrPinClaimed.
type Bank interface {
	// Claim binds a line number and returns it as an input.
	Claim(line int) (Pin, error)

	// Close releases every claimed line, leaving it high impedance.
	Close() error
}

// Backend names accepted by NewBank.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendPeriph   = "periph"
	BackendFake     = "fake"
)

// DefaultChip is the GPIO chip used by the gpiocdev backend.
const DefaultChip = "gpiochip0"

// NewBank opens the named backend.
func NewBank(backend, chip string) (Bank, error) {
	switch backend {
	case BackendGPIOCDev, "":
		if chip == "" {
			chip = DefaultChip
		}
		return NewChipBank(chip)
	case BackendPeriph:
		return NewPeriphBank()
	case BackendFake:
		return NewFakeBank(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// ParsePinNumber parses a pin name (e.g., "GPIO16") and returns the line number.
// Both "GPIO<number>" and "<number>" are accepted.
func ParsePinNumber(pinName string) (int, error) {
	name := strings.TrimSpace(pinName)
	if lineNum, err := strconv.Atoi(name); err == nil && lineNum >= 0 {
		return lineNum, nil
	}

	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "GPIO") {
		if lineNum, err := strconv.Atoi(strings.TrimPrefix(upper, "GPIO")); err == nil && lineNum >= 0 {
			return lineNum, nil
		}
	}

	return 0, fmt.Errorf("%w: %q (expected GPIO<number> or <number>)", ErrInvalidPin, pinName)
}
