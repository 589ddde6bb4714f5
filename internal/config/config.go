// Package config loads the pedalboard layout and daemon settings.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/sweeney/footswitch/internal/bridge"
	"github.com/sweeney/footswitch/internal/gpio"
	"github.com/sweeney/footswitch/internal/logic"
)

// Config holds the footswitch daemon configuration.
type Config struct {
	ConfigFile   string          `mapstructure:"config-file"`
	Backend      string          `mapstructure:"backend"`
	Chip         string          `mapstructure:"chip"`
	PollInterval time.Duration   `mapstructure:"poll-interval"`
	Debounce     time.Duration   `mapstructure:"debounce"`
	HTTP         string          `mapstructure:"http"`
	LogLevel     string          `mapstructure:"log-level"`
	DryRun       bool            `mapstructure:"dry-run"`
	MQTT         MQTTConfig      `mapstructure:"mqtt"`
	Switches     []SwitchConfig  `mapstructure:"switches"`
	Lines        []LineConfig    `mapstructure:"lines"`
	Bindings     []BindingConfig `mapstructure:"bindings"`
}

// MQTTConfig configures event publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker" toml:"broker"`
	ClientID    string `mapstructure:"client-id" toml:"client-id"`
	TopicPrefix string `mapstructure:"topic-prefix" toml:"topic-prefix"`
}

// SwitchConfig is one pedal switch input.
type SwitchConfig struct {
	Name string `mapstructure:"name" toml:"name"`
	Pin  string `mapstructure:"pin" toml:"pin"`
}

// LineConfig is one control line to the amp.
type LineConfig struct {
	Name     string `mapstructure:"name" toml:"name"`
	Pin      string `mapstructure:"pin" toml:"pin"`
	Latching bool   `mapstructure:"latching" toml:"latching"`
	Inverted bool   `mapstructure:"inverted" toml:"inverted"`
}

// BindingConfig routes a switch to lines.
type BindingConfig struct {
	Switch string   `mapstructure:"switch" toml:"switch"`
	Lines  []string `mapstructure:"lines" toml:"lines"`
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/footswitch/footswitch.toml.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "footswitch", "footswitch.toml")
}

// Default returns a four-button board: three latching amp functions and a
// momentary tap-tempo line, all on direct drive.
func Default() *Config {
	return &Config{
		Backend:      gpio.BackendGPIOCDev,
		Chip:         gpio.DefaultChip,
		PollInterval: time.Millisecond,
		Debounce:     logic.DefaultDebounce,
		HTTP:         ":8080",
		LogLevel:     "info",
		MQTT: MQTTConfig{
			ClientID:    "footswitch",
			TopicPrefix: "footswitch",
		},
		Switches: []SwitchConfig{
			{Name: "pedal1", Pin: "GPIO16"},
			{Name: "pedal2", Pin: "GPIO20"},
			{Name: "pedal3", Pin: "GPIO21"},
			{Name: "pedal4", Pin: "GPIO26"},
		},
		Lines: []LineConfig{
			{Name: "channel", Pin: "GPIO5", Latching: true},
			{Name: "reverb", Pin: "GPIO6", Latching: true},
			{Name: "solo", Pin: "GPIO13", Latching: true},
			{Name: "tap", Pin: "GPIO19"},
		},
		Bindings: []BindingConfig{
			{Switch: "pedal1", Lines: []string{"channel"}},
			{Switch: "pedal2", Lines: []string{"reverb"}},
			{Switch: "pedal3", Lines: []string{"solo"}},
			{Switch: "pedal4", Lines: []string{"tap"}},
		},
	}
}

// AddFlags adds command-line flags for the scalar options.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", DefaultConfigFile(), "Config file to use")
	fs.StringVar(&c.Backend, "backend", c.Backend, "GPIO backend (gpiocdev, periph, fake)")
	fs.StringVar(&c.Chip, "chip", c.Chip, "GPIO chip for the gpiocdev backend")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "Switch polling interval")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Quiet period after an accepted switch transition")
	fs.StringVar(&c.HTTP, "http", c.HTTP, "HTTP status address (empty to disable)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolVarP(&c.DryRun, "dry-run", "n", c.DryRun, "Use the in-memory GPIO backend")
	fs.StringVar(&c.MQTT.Broker, "mqtt.broker", c.MQTT.Broker, "MQTT broker URL (empty to disable)")
	fs.StringVar(&c.MQTT.ClientID, "mqtt.client-id", c.MQTT.ClientID, "MQTT client id")
	fs.StringVar(&c.MQTT.TopicPrefix, "mqtt.topic-prefix", c.MQTT.TopicPrefix, "MQTT topic prefix")
}

// EffectiveBackend returns the backend to open, honouring DryRun.
func (c *Config) EffectiveBackend() string {
	if c.DryRun {
		return gpio.BackendFake
	}
	return c.Backend
}

// Validate checks names, pins and bindings. Every pin may be used by one
// component only.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll-interval %v: %w", ErrInvalidConfig, c.PollInterval, ErrInvalidInterval)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce %v: %w", ErrInvalidConfig, c.Debounce, ErrInvalidInterval)
	}
	switch c.EffectiveBackend() {
	case gpio.BackendGPIOCDev, gpio.BackendPeriph, gpio.BackendFake:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, gpio.ErrUnknownBackend, c.Backend)
	}

	pins := make(map[int]string)
	claim := func(owner, pin string) error {
		n, err := gpio.ParsePinNumber(pin)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, owner, err)
		}
		if prev, ok := pins[n]; ok {
			return fmt.Errorf("%w: %w: GPIO%d (%s and %s)", ErrInvalidConfig, ErrPinShared, n, prev, owner)
		}
		pins[n] = owner
		return nil
	}

	switches := make(map[string]bool)
	for i, s := range c.Switches {
		if s.Name == "" {
			return fmt.Errorf("%w: switch #%d: %w", ErrInvalidConfig, i, ErrEmptyName)
		}
		if switches[s.Name] {
			return fmt.Errorf("%w: %w: switch %q", ErrInvalidConfig, ErrDuplicateName, s.Name)
		}
		switches[s.Name] = true
		if err := claim("switch "+s.Name, s.Pin); err != nil {
			return err
		}
	}

	lines := make(map[string]bool)
	for i, l := range c.Lines {
		if l.Name == "" {
			return fmt.Errorf("%w: line #%d: %w", ErrInvalidConfig, i, ErrEmptyName)
		}
		if lines[l.Name] {
			return fmt.Errorf("%w: %w: line %q", ErrInvalidConfig, ErrDuplicateName, l.Name)
		}
		lines[l.Name] = true
		if err := claim("line "+l.Name, l.Pin); err != nil {
			return err
		}
	}

	for _, b := range c.Bindings {
		if !switches[b.Switch] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownSwitch, b.Switch)
		}
		for _, name := range b.Lines {
			if !lines[name] {
				return fmt.Errorf("%w: %w: %q (switch %s)", ErrInvalidConfig, ErrUnknownLine, name, b.Switch)
			}
		}
	}

	return nil
}

// BridgeSpec converts the layout into a bridge.Spec. Call Validate first.
func (c *Config) BridgeSpec() (bridge.Spec, error) {
	spec := bridge.Spec{Debounce: c.Debounce}

	for _, s := range c.Switches {
		n, err := gpio.ParsePinNumber(s.Pin)
		if err != nil {
			return bridge.Spec{}, fmt.Errorf("switch %s: %w", s.Name, err)
		}
		spec.Switches = append(spec.Switches, bridge.SwitchSpec{Name: s.Name, Line: n})
	}
	for _, l := range c.Lines {
		n, err := gpio.ParsePinNumber(l.Pin)
		if err != nil {
			return bridge.Spec{}, fmt.Errorf("line %s: %w", l.Name, err)
		}
		spec.Lines = append(spec.Lines, bridge.LineSpec{
			Name:     l.Name,
			Line:     n,
			Latching: l.Latching,
			Inverted: l.Inverted,
		})
	}
	for _, b := range c.Bindings {
		spec.Bindings = append(spec.Bindings, bridge.Binding{
			Switch: b.Switch,
			Lines:  append([]string(nil), b.Lines...),
		})
	}

	return spec, nil
}
