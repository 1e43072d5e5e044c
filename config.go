package spots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds engine settings.
type Config struct {
	Layout LayoutConfig `mapstructure:"layout"`
	Scroll ScrollConfig `mapstructure:"scroll"`
	Debug  bool         `mapstructure:"debug"`
}

// LayoutConfig holds sizing defaults.
type LayoutConfig struct {
	// HeaderHeight is reserved above the items of a titled component.
	HeaderHeight float64 `mapstructure:"header_height"`
	// ItemHeight is the default height declared by each built-in factory,
	// keyed by kind. Kinds without an entry use ItemHeight["default"].
	ItemHeight map[string]float64 `mapstructure:"item_height"`
	// CardWidth is the default width of a carousel card.
	CardWidth float64 `mapstructure:"card_width"`
	// ReflowPasses bounds the composer's re-flow loop.
	ReflowPasses int `mapstructure:"reflow_passes"`
}

// ScrollConfig holds scroll and edge-detection settings.
type ScrollConfig struct {
	// Bounce is how far above the top the surface may be pulled.
	Bounce float64 `mapstructure:"bounce"`
	// RefreshThreshold is the pull distance that triggers a refresh.
	RefreshThreshold float64 `mapstructure:"refresh_threshold"`
	// EndThreshold is the distance from the bottom that triggers
	// loading more items.
	EndThreshold float64 `mapstructure:"end_threshold"`
}

// DefaultConfig returns settings suitable for a terminal host, where one
// unit is one row.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			HeaderHeight: 1,
			ItemHeight: map[string]float64{
				"default":     1,
				KindList:      1,
				KindFeed:      2,
				KindGrid:      3,
				KindCarousel:  4,
				KindComposite: 0,
			},
			CardWidth:    20,
			ReflowPasses: 2,
		},
		Scroll: ScrollConfig{
			Bounce:           3,
			RefreshThreshold: 2,
			EndThreshold:     2,
		},
	}
}

// DefaultItemHeight returns the configured default height for kind.
func (c LayoutConfig) DefaultItemHeight(kind string) float64 {
	if h, ok := c.ItemHeight[kind]; ok {
		return h
	}
	return c.ItemHeight["default"]
}

// LoadConfig reads configuration from file and env. Env var overrides use
// prefix SPOTS_. The file is $SPOTS_CONFIG, or config.toml under the user
// config directory; a missing file is not an error.
func LoadConfig() (Config, error) {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("layout.header_height", def.Layout.HeaderHeight)
	v.SetDefault("layout.item_height", def.Layout.ItemHeight)
	v.SetDefault("layout.card_width", def.Layout.CardWidth)
	v.SetDefault("layout.reflow_passes", def.Layout.ReflowPasses)
	v.SetDefault("scroll.bounce", def.Scroll.Bounce)
	v.SetDefault("scroll.refresh_threshold", def.Scroll.RefreshThreshold)
	v.SetDefault("scroll.end_threshold", def.Scroll.EndThreshold)
	v.SetDefault("debug", false)

	v.SetConfigType("toml")
	if p := os.Getenv("SPOTS_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "spots"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SPOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit SPOTS_CONFIG pointing nowhere surfaces as a path error.
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	return c, nil
}

// normalize fills holes left by partial config files.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Layout.ItemHeight == nil {
		c.Layout.ItemHeight = def.Layout.ItemHeight
	}
	if _, ok := c.Layout.ItemHeight["default"]; !ok {
		c.Layout.ItemHeight["default"] = def.Layout.ItemHeight["default"]
	}
	if c.Layout.ReflowPasses < 1 {
		c.Layout.ReflowPasses = def.Layout.ReflowPasses
	}
	c.Layout.HeaderHeight = clampDim(c.Layout.HeaderHeight)
	c.Layout.CardWidth = clampDim(c.Layout.CardWidth)
}
