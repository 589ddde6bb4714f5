package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader merges defaults, a config file and explicitly set flags, in that
// order of precedence, and decodes the result strictly.
type Loader struct {
	configFile string
	required   bool
	defaults   map[string]any
}

// NewLoader creates a Loader with no defaults.
func NewLoader() *Loader {
	return &Loader{defaults: make(map[string]any)}
}

// SetConfigFile sets the file to read. When required is false a missing
// file is skipped.
func (l *Loader) SetConfigFile(path string, required bool) {
	l.configFile = path
	l.required = required
}

// SetDefaults sets multiple default values at once.
func (l *Loader) SetDefaults(defaults map[string]any) {
	for key, value := range defaults {
		l.defaults[key] = value
	}
}

// Load populates out, which must be a pointer to a struct with mapstructure
// tags. Unknown keys in the file are an error.
func (l *Loader) Load(flags *pflag.FlagSet, out any) error {
	v := viper.New()

	for key, value := range l.defaults {
		v.SetDefault(key, value)
	}

	if l.configFile != "" {
		_, statErr := os.Stat(l.configFile)
		if statErr == nil || l.required || !errors.Is(statErr, fs.ErrNotExist) {
			v.SetConfigFile(l.configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("%w %s: %v", ErrConfigFileRead, l.configFile, err)
			}
		}
	}

	// Only flags the user actually set override the file.
	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			if !f.Changed || f.Name == "config" {
				return
			}
			v.Set(f.Name, flagValue(f))
		})
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		ZeroFields:       true,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create decoder: %v", ErrConfigUnmarshal, err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		if l.configFile != "" {
			return fmt.Errorf("%w: %s: %v", ErrConfigUnmarshal, l.configFile, err)
		}
		return fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	return nil
}

// flagValue returns the typed value behind a flag rather than its string form.
func flagValue(f *pflag.Flag) any {
	s := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case "int", "int8", "int16", "int32", "int64":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "uint", "uint8", "uint16", "uint32", "uint64":
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case "duration":
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	case "stringSlice":
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			return sv.GetSlice()
		}
	}
	return s
}

// settings flattens c into viper keys for use as defaults.
func (c *Config) settings() map[string]any {
	switches := make([]map[string]any, 0, len(c.Switches))
	for _, s := range c.Switches {
		switches = append(switches, map[string]any{"name": s.Name, "pin": s.Pin})
	}
	lines := make([]map[string]any, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, map[string]any{
			"name":     l.Name,
			"pin":      l.Pin,
			"latching": l.Latching,
			"inverted": l.Inverted,
		})
	}
	bindings := make([]map[string]any, 0, len(c.Bindings))
	for _, b := range c.Bindings {
		bindings = append(bindings, map[string]any{"switch": b.Switch, "lines": b.Lines})
	}

	return map[string]any{
		"backend":           c.Backend,
		"chip":              c.Chip,
		"poll-interval":     c.PollInterval,
		"debounce":          c.Debounce,
		"http":              c.HTTP,
		"log-level":         c.LogLevel,
		"dry-run":           c.DryRun,
		"mqtt.broker":       c.MQTT.Broker,
		"mqtt.client-id":    c.MQTT.ClientID,
		"mqtt.topic-prefix": c.MQTT.TopicPrefix,
		"switches":          switches,
		"lines":             lines,
		"bindings":          bindings,
	}
}

// LoadConfigWithFlagSet loads the config file named by --config (or the
// default path) and applies explicitly set flags from fs.
func (c *Config) LoadConfigWithFlagSet(flags *pflag.FlagSet) error {
	configFile := c.ConfigFile
	explicit := flags != nil && flags.Changed("config")

	loader := NewLoader()
	loader.SetConfigFile(configFile, explicit)
	loader.SetDefaults(Default().settings())

	if err := loader.Load(flags, c); err != nil {
		return err
	}
	c.ConfigFile = configFile
	return nil
}
