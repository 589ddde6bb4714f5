package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// fileConfig is the on-disk shape written by Encode. Durations are strings
// so the file reads back through the duration hook.
type fileConfig struct {
	Backend      string          `toml:"backend"`
	Chip         string          `toml:"chip"`
	PollInterval string          `toml:"poll-interval"`
	Debounce     string          `toml:"debounce"`
	HTTP         string          `toml:"http"`
	LogLevel     string          `toml:"log-level"`
	MQTT         MQTTConfig      `toml:"mqtt"`
	Switches     []SwitchConfig  `toml:"switches"`
	Lines        []LineConfig    `toml:"lines"`
	Bindings     []BindingConfig `toml:"bindings"`
}

// Encode writes c as a TOML config file.
func (c *Config) Encode(w io.Writer) error {
	fc := fileConfig{
		Backend:      c.Backend,
		Chip:         c.Chip,
		PollInterval: c.PollInterval.String(),
		Debounce:     c.Debounce.String(),
		HTTP:         c.HTTP,
		LogLevel:     c.LogLevel,
		MQTT:         c.MQTT,
		Switches:     c.Switches,
		Lines:        c.Lines,
		Bindings:     c.Bindings,
	}
	if err := toml.NewEncoder(w).Encode(fc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
