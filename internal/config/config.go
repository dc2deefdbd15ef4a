// Package config loads the daemon configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/anybutton/internal/button"
	"github.com/sweeney/anybutton/internal/gpio"
	"github.com/sweeney/anybutton/internal/indicator"
)

// Config is the top-level daemon configuration.
type Config struct {
	Poll      time.Duration    `yaml:"poll"`
	Heartbeat time.Duration    `yaml:"heartbeat"`
	Chip      string           `yaml:"chip"`
	HTTP      string           `yaml:"http"`
	MQTT      MQTTConfig       `yaml:"mqtt"`
	Indicator *IndicatorConfig `yaml:"indicator,omitempty"` // nil = no LED
	Buttons   []ButtonConfig   `yaml:"buttons"`
}

// MQTTConfig holds broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`    // empty disables publishing
	ClientID string `yaml:"client_id"` // also the topic segment
}

// IndicatorConfig wires an RGB LED. A missing pin leaves that color unwired.
type IndicatorConfig struct {
	Chip      string        `yaml:"chip"`
	Red       *int          `yaml:"red"`
	Green     *int          `yaml:"green"`
	Blue      *int          `yaml:"blue"`
	ActiveLow bool          `yaml:"active_low"`
	Flash     time.Duration `yaml:"flash"` // how long a report lights the LED
}

// ButtonConfig describes one input line and its button behavior.
type ButtonConfig struct {
	Name          string         `yaml:"name"`
	Pin           int            `yaml:"pin"`
	ActiveLow     bool           `yaml:"active_low"`
	Bias          string         `yaml:"bias"`
	Kind          string         `yaml:"kind"`
	Mode          string         `yaml:"mode"`
	Span          string         `yaml:"span"`
	SelectCeiling int            `yaml:"select_ceiling"`
	Oneshot       time.Duration  `yaml:"oneshot"`
	Debounce      *time.Duration `yaml:"debounce"` // nil = button default
	Color         string         `yaml:"color"`
}

// Defaults used when a field is left out.
const (
	DefaultPoll      = 10 * time.Millisecond
	DefaultHeartbeat = 15 * time.Minute
	DefaultHTTP      = ":8080"
	DefaultClientID  = "anybutton"
	DefaultFlash     = 100 * time.Millisecond
	DefaultColor     = "green"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Default returns a configuration with a single push button on BCM 26.
func Default() Config {
	c := Config{
		Heartbeat: DefaultHeartbeat,
		HTTP:      DefaultHTTP,
		Buttons:   []ButtonConfig{{Name: "button", Pin: 26, ActiveLow: true, Bias: string(gpio.BiasPullUp)}},
	}
	c.applyDefaults()
	return c
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML, fills defaults and validates.
func Parse(data []byte) (Config, error) {
	// Keys left out keep these; an explicit zero or "" disables.
	c := Config{Heartbeat: DefaultHeartbeat, HTTP: DefaultHTTP}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Poll == 0 {
		c.Poll = DefaultPoll
	}
	if c.Chip == "" {
		c.Chip = gpio.DefaultChip
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}
	if ind := c.Indicator; ind != nil {
		if ind.Chip == "" {
			ind.Chip = c.Chip
		}
		if ind.Flash == 0 {
			ind.Flash = DefaultFlash
		}
	}
	for i := range c.Buttons {
		b := &c.Buttons[i]
		if b.Kind == "" {
			b.Kind = button.Push.String()
		}
		if b.Mode == "" {
			b.Mode = button.Direct.String()
		}
		if b.Span == "" {
			b.Span = button.Persistent.String()
		}
		if b.SelectCeiling == 0 {
			b.SelectCeiling = button.DefaultSelectCeiling
		}
		if b.Oneshot == 0 {
			b.Oneshot = button.DefaultOneshotDuration
		}
		if b.Color == "" {
			b.Color = DefaultColor
		}
	}
}

// Validate checks the whole configuration, including every button's
// behavior settings.
func (c Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("%w: poll %v must be positive", ErrInvalid, c.Poll)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("%w: heartbeat %v is negative", ErrInvalid, c.Heartbeat)
	}
	if len(c.Buttons) == 0 {
		return fmt.Errorf("%w: no buttons configured", ErrInvalid)
	}

	names := make(map[string]bool, len(c.Buttons))
	pins := make(map[int]string, len(c.Buttons))
	for i, b := range c.Buttons {
		if b.Name == "" {
			return fmt.Errorf("%w: button %d has no name", ErrInvalid, i)
		}
		if names[b.Name] {
			return fmt.Errorf("%w: duplicate button name %q", ErrInvalid, b.Name)
		}
		names[b.Name] = true
		if b.Pin < 0 {
			return fmt.Errorf("%w: button %q: pin %d is negative", ErrInvalid, b.Name, b.Pin)
		}
		if other, ok := pins[b.Pin]; ok {
			return fmt.Errorf("%w: buttons %q and %q share pin %d", ErrInvalid, other, b.Name, b.Pin)
		}
		pins[b.Pin] = b.Name
		if _, err := b.Line(); err != nil {
			return fmt.Errorf("%w: button %q: %v", ErrInvalid, b.Name, err)
		}
		if _, err := b.Settings(); err != nil {
			return fmt.Errorf("%w: button %q: %v", ErrInvalid, b.Name, err)
		}
		if _, err := indicator.ParseColor(b.Color); err != nil {
			return fmt.Errorf("%w: button %q: %v", ErrInvalid, b.Name, err)
		}
	}

	if ind := c.Indicator; ind != nil {
		if ind.Red == nil && ind.Green == nil && ind.Blue == nil {
			return fmt.Errorf("%w: indicator has no pins", ErrInvalid)
		}
		if ind.Flash < 0 {
			return fmt.Errorf("%w: indicator flash %v is negative", ErrInvalid, ind.Flash)
		}
		for _, p := range []*int{ind.Red, ind.Green, ind.Blue} {
			if p == nil {
				continue
			}
			if *p < 0 {
				return fmt.Errorf("%w: indicator pin %d is negative", ErrInvalid, *p)
			}
			if name, ok := pins[*p]; ok && ind.Chip == c.Chip {
				return fmt.Errorf("%w: indicator pin %d is used by button %q", ErrInvalid, *p, name)
			}
		}
	}
	return nil
}

// Settings converts the button section into a core button configuration.
func (b ButtonConfig) Settings() (button.Config, error) {
	kind, err := button.ParseInputKind(b.Kind)
	if err != nil {
		return button.Config{}, err
	}
	mode, err := button.ParseOutputMode(b.Mode)
	if err != nil {
		return button.Config{}, err
	}
	span, err := button.ParseSpan(b.Span)
	if err != nil {
		return button.Config{}, err
	}
	cfg := button.DefaultConfig()
	cfg.Kind = kind
	cfg.Mode = mode
	cfg.Span = span
	cfg.SelectCeiling = b.SelectCeiling
	cfg.OneshotDuration = b.Oneshot
	if b.Debounce != nil {
		cfg.DebounceWindow = *b.Debounce
	}
	if err := cfg.Validate(); err != nil {
		return button.Config{}, err
	}
	return cfg, nil
}

// Line converts the button section into a GPIO input line.
func (b ButtonConfig) Line() (gpio.Line, error) {
	bias, err := gpio.ParseBias(b.Bias)
	if err != nil {
		return gpio.Line{}, err
	}
	return gpio.Line{Offset: b.Pin, ActiveLow: b.ActiveLow, Bias: bias}, nil
}

// LEDColor returns the indicator color flashed for this button's reports.
func (b ButtonConfig) LEDColor() indicator.Color {
	c, err := indicator.ParseColor(b.Color)
	if err != nil {
		return indicator.Off
	}
	return c
}

// Lines returns every button's input line in order.
func (c Config) Lines() ([]gpio.Line, error) {
	out := make([]gpio.Line, 0, len(c.Buttons))
	for _, b := range c.Buttons {
		l, err := b.Line()
		if err != nil {
			return nil, fmt.Errorf("button %q: %w", b.Name, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// LEDPins converts the indicator section; unwired colors get -1.
func (i IndicatorConfig) LEDPins() gpio.LEDPins {
	pin := func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	}
	return gpio.LEDPins{Red: pin(i.Red), Green: pin(i.Green), Blue: pin(i.Blue), ActiveLow: i.ActiveLow}
}
