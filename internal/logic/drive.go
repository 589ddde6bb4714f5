package logic

import "github.com/sweeney/footswitch/internal/gpio"

// driveStrategy maps the two logical line operations onto pin writes for
// one wiring topology.
type driveStrategy interface {
	pullDown(p gpio.Pin) error
	float(p gpio.Pin) error
}

func strategyFor(inverted bool) driveStrategy {
	if inverted {
		return optoDrive{}
	}
	return directDrive{}
}

// directDrive wires the pin straight to the amp. The pin never drives HIGH:
// it either grounds the line or lets go of it entirely.
type directDrive struct{}

func (directDrive) pullDown(p gpio.Pin) error {
	if err := p.SetMode(gpio.Output); err != nil {
		return err
	}
	return p.Write(gpio.Low)
}

func (directDrive) float(p gpio.Pin) error {
	return p.SetMode(gpio.Input)
}

// optoDrive goes through an inverting opto-coupler. Lighting the LED (pin
// HIGH) grounds the amp side; turning it off releases the line.
type optoDrive struct{}

func (optoDrive) pullDown(p gpio.Pin) error {
	if err := p.SetMode(gpio.Output); err != nil {
		return err
	}
	return p.Write(gpio.High)
}

func (optoDrive) float(p gpio.Pin) error {
	if err := p.SetMode(gpio.Output); err != nil {
		return err
	}
	return p.Write(gpio.Low)
}
