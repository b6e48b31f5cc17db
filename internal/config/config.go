package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultDebounceMS = 400
	MinDebounceMS     = 300
	MaxDebounceMS     = 500
)

// Config controls the header engine, its persistence and the terminal UI.
type Config struct {
	Disclosure  DisclosureConfig  `koanf:"disclosure"`
	Layout      LayoutConfig      `koanf:"layout"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Log         LogConfig         `koanf:"log"`
	UI          UIConfig          `koanf:"ui"`
}

type DisclosureConfig struct {
	AutoGroupThreshold int  `koanf:"auto_group_threshold"`
	MaxVisibleLevels   int  `koanf:"max_visible_levels"`
	SemanticGrouping   bool `koanf:"semantic_grouping"`
	LazyLoading        bool `koanf:"lazy_loading"`
	LazyLoadingBuffer  int  `koanf:"lazy_loading_buffer"`
}

type LayoutConfig struct {
	TotalWidth float64 `koanf:"total_width"`
	BandHeight float64 `koanf:"band_height"`
	Allocator  string  `koanf:"allocator"`
}

type PersistenceConfig struct {
	Backend    string `koanf:"backend"`
	DebounceMS int    `koanf:"debounce_ms"`
	DataDir    string `koanf:"data_dir"`
}

type LogConfig struct {
	Path  string `koanf:"path"`
	Level string `koanf:"level"`
}

type UIConfig struct {
	StyleVariant string `koanf:"style_variant"`
	MotionLevel  string `koanf:"motion_level"`
}

func DefaultConfig() Config {
	return Config{
		Disclosure: DisclosureConfig{
			AutoGroupThreshold: 4,
			MaxVisibleLevels:   3,
			SemanticGrouping:   true,
			LazyLoading:        true,
			LazyLoadingBuffer:  1,
		},
		Layout: LayoutConfig{
			TotalWidth: 1200,
			BandHeight: 1,
			Allocator:  "equal",
		},
		Persistence: PersistenceConfig{
			Backend:    "sqlite",
			DebounceMS: DefaultDebounceMS,
		},
		Log: LogConfig{Level: "info"},
		UI: UIConfig{
			StyleVariant: "modern_arcade",
			MotionLevel:  "full",
		},
	}
}

// Validate rejects unknown enum values and fills empty fields with
// defaults.
func (c *Config) Validate() error {
	if c.Disclosure.AutoGroupThreshold < 0 {
		return fmt.Errorf("invalid auto group threshold %d", c.Disclosure.AutoGroupThreshold)
	}
	if c.Disclosure.AutoGroupThreshold == 0 {
		c.Disclosure.AutoGroupThreshold = 4
	}
	if c.Disclosure.MaxVisibleLevels < 0 {
		return fmt.Errorf("invalid max visible levels %d", c.Disclosure.MaxVisibleLevels)
	}
	if c.Disclosure.MaxVisibleLevels == 0 {
		c.Disclosure.MaxVisibleLevels = 3
	}
	if c.Disclosure.LazyLoadingBuffer < 0 {
		return fmt.Errorf("invalid lazy loading buffer %d", c.Disclosure.LazyLoadingBuffer)
	}

	if c.Layout.TotalWidth < 0 {
		return fmt.Errorf("invalid layout total width %v", c.Layout.TotalWidth)
	}
	if c.Layout.TotalWidth == 0 {
		c.Layout.TotalWidth = 1200
	}
	if c.Layout.BandHeight <= 0 {
		c.Layout.BandHeight = 1
	}
	c.Layout.Allocator = strings.ToLower(strings.TrimSpace(c.Layout.Allocator))
	switch c.Layout.Allocator {
	case "", "equal", "weighted":
	default:
		return fmt.Errorf("invalid layout allocator %q", c.Layout.Allocator)
	}
	if c.Layout.Allocator == "" {
		c.Layout.Allocator = "equal"
	}

	c.Persistence.Backend = strings.ToLower(strings.TrimSpace(c.Persistence.Backend))
	switch c.Persistence.Backend {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid persistence backend %q", c.Persistence.Backend)
	}
	if c.Persistence.Backend == "" {
		c.Persistence.Backend = "sqlite"
	}
	switch {
	case c.Persistence.DebounceMS <= 0:
		c.Persistence.DebounceMS = DefaultDebounceMS
	case c.Persistence.DebounceMS < MinDebounceMS:
		c.Persistence.DebounceMS = MinDebounceMS
	case c.Persistence.DebounceMS > MaxDebounceMS:
		c.Persistence.DebounceMS = MaxDebounceMS
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "modern_arcade"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}

	if c.Persistence.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.Persistence.DataDir = filepath.Join(home, ".local", "share", "headerzoom")
	}
	return nil
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.Persistence.DebounceMS) * time.Millisecond
}
