package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ingyamilmolinar/unmute/internal/menu"
	"github.com/ingyamilmolinar/unmute/internal/unlock"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds bootstrap configuration.
type Config struct {
	Log    LogConfig
	Unlock UnlockConfig
	Menu   MenuConfig
	Host   HostConfig
}

type LogConfig struct {
	Level string
}

// UnlockConfig lists the gesture events to listen for and the global
// constructors to intercept.
type UnlockConfig struct {
	Events       []string
	Constructors []string
}

// MenuConfig describes the placeholder track and its fade.
type MenuConfig struct {
	Element       string
	Source        string
	InitialVolume float64 `mapstructure:"initial_volume"`
	Step          float64
	Floor         float64
	Interval      time.Duration
}

// HostConfig holds settings for the hosted application handoff.
type HostConfig struct {
	Title      string
	ReadyHook  string `mapstructure:"ready_hook"`
	SampleRate int    `mapstructure:"sample_rate"`
	Width      int
	Height     int
}

func setDefaults(v *viper.Viper) {
	d := menu.DefaultSettings()
	v.SetDefault("log.level", "INFO")
	v.SetDefault("unlock.events", unlock.GestureEvents)
	v.SetDefault("unlock.constructors", []string{"AudioContext", "webkitAudioContext"})
	v.SetDefault("menu.element", "menu-music")
	v.SetDefault("menu.source", "assets/menu.wav")
	v.SetDefault("menu.initial_volume", d.InitialVolume)
	v.SetDefault("menu.step", d.Step)
	v.SetDefault("menu.floor", d.Floor)
	v.SetDefault("menu.interval", d.Interval)
	v.SetDefault("host.title", "unmute")
	v.SetDefault("host.ready_hook", "menuMusicFadeAndStop")
	v.SetDefault("host.sample_rate", 44100)
	v.SetDefault("host.width", 640)
	v.SetDefault("host.height", 480)
}

// Load builds a Config from defaults, an optional override document of the
// given format ("yaml", "json", ...) and UNMUTE_* environment variables.
// A nil r means no override document.
func Load(r io.Reader, format string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("UNMUTE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if r != nil {
		v.SetConfigType(format)
		if err := v.ReadConfig(r); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile loads the YAML file named by UNMUTE_CONFIG when set, and the
// defaults otherwise.
func LoadFile() (Config, error) {
	path := os.Getenv("UNMUTE_CONFIG")
	if path == "" {
		return Load(nil, "")
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	format := "yaml"
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		format = "json"
	}
	return Load(f, format)
}

// Validate rejects settings that would make the fade never terminate or
// leave nothing to listen on.
func (c Config) Validate() error {
	m := c.Menu
	switch {
	case m.InitialVolume < 0 || m.InitialVolume > 1:
		return fmt.Errorf("%w: menu.initial_volume %v outside [0,1]", ErrInvalidConfig, m.InitialVolume)
	case m.Step <= 0:
		return fmt.Errorf("%w: menu.step must be positive", ErrInvalidConfig)
	case m.Floor < 0 || m.Floor >= 1:
		return fmt.Errorf("%w: menu.floor %v outside [0,1)", ErrInvalidConfig, m.Floor)
	case m.Interval < time.Millisecond:
		// A bare number decodes as nanoseconds; durations need a unit.
		return fmt.Errorf("%w: menu.interval %v below 1ms (use a duration such as \"200ms\")", ErrInvalidConfig, m.Interval)
	case len(c.Unlock.Events) == 0:
		return fmt.Errorf("%w: unlock.events is empty", ErrInvalidConfig)
	case c.Host.SampleRate <= 0:
		return fmt.Errorf("%w: host.sample_rate must be positive", ErrInvalidConfig)
	}
	return nil
}

// FadeSettings converts the menu section for menu.NewFader.
func (c Config) FadeSettings() menu.Settings {
	return menu.Settings{
		InitialVolume: c.Menu.InitialVolume,
		Step:          c.Menu.Step,
		Floor:         c.Menu.Floor,
		Interval:      c.Menu.Interval,
	}
}
