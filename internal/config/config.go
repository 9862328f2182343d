package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/recera/synapse/pkg/graphview"
)

// ErrInvalid is returned when a configuration fails validation
var ErrInvalid = errors.New("invalid configuration")

// FileNames are the config files looked up in a project directory, in order
var FileNames = []string{"synapse.yaml", "synapse.yml", "synapse.toml", "synapse.json"}

// Config represents the synapse configuration file
type Config struct {
	// Graph document to visualize
	Graph string `json:"graph,omitempty" yaml:"graph,omitempty" toml:"graph,omitempty"`

	// Simulation constants
	Physics *PhysicsConfig `json:"physics,omitempty" yaml:"physics,omitempty" toml:"physics,omitempty" validate:"required"`

	// View defaults
	View *ViewConfig `json:"view,omitempty" yaml:"view,omitempty" toml:"view,omitempty" validate:"required"`

	// Live server configuration
	Serve *ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty" toml:"serve,omitempty" validate:"required"`
}

// PhysicsConfig mirrors graphview.PhysicsConfig. Zero values take the
// engine defaults.
type PhysicsConfig struct {
	Repulsion       float64 `json:"repulsion,omitempty" yaml:"repulsion,omitempty" toml:"repulsion,omitempty" validate:"gte=0"`
	Attraction      float64 `json:"attraction,omitempty" yaml:"attraction,omitempty" toml:"attraction,omitempty" validate:"gte=0"`
	Centering       float64 `json:"centering,omitempty" yaml:"centering,omitempty" toml:"centering,omitempty"`
	Damping         float64 `json:"damping,omitempty" yaml:"damping,omitempty" toml:"damping,omitempty" validate:"gte=0,lt=1"`
	VelocityEpsilon float64 `json:"velocityEpsilon,omitempty" yaml:"velocityEpsilon,omitempty" toml:"velocityEpsilon,omitempty" validate:"gte=0"`
	BaseAlpha       float64 `json:"baseAlpha,omitempty" yaml:"baseAlpha,omitempty" toml:"baseAlpha,omitempty" validate:"gte=0,lte=1"`
	CoolingFactor   float64 `json:"coolingFactor,omitempty" yaml:"coolingFactor,omitempty" toml:"coolingFactor,omitempty" validate:"gte=0,lte=1"`
	MinAlpha        float64 `json:"minAlpha,omitempty" yaml:"minAlpha,omitempty" toml:"minAlpha,omitempty" validate:"gte=0,lte=1"`
	EnergizeBoost   float64 `json:"energizeBoost,omitempty" yaml:"energizeBoost,omitempty" toml:"energizeBoost,omitempty" validate:"gte=0,lte=1"`
}

// ViewConfig contains rendering and interaction defaults
type ViewConfig struct {
	// Minimum connection strength drawn
	Threshold float64 `json:"threshold" yaml:"threshold" toml:"threshold" validate:"gte=0,lte=1"`

	// Surface size for headless rendering
	Width  int `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty" validate:"gte=0"`
	Height int `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" validate:"gte=0"`

	// Frames per second of the render loop
	FPS int `json:"fps,omitempty" yaml:"fps,omitempty" toml:"fps,omitempty" validate:"gte=0,lte=240"`

	// Color overrides
	Palette map[string]string `json:"palette,omitempty" yaml:"palette,omitempty" toml:"palette,omitempty"`
}

// ServeConfig contains live server configuration
type ServeConfig struct {
	// Server port
	Port int `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty" validate:"gte=0,lte=65535"`

	// Server host
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`

	// Whether to expose /metrics
	Metrics bool `json:"metrics" yaml:"metrics" toml:"metrics"`

	// Whether to reload the graph file when it changes
	Watch bool `json:"watch" yaml:"watch" toml:"watch"`
}

// Load loads configuration from the first config file found in projectPath
func Load(projectPath string) (*Config, error) {
	for _, name := range FileNames {
		configPath := filepath.Join(projectPath, name)
		if _, err := os.Stat(configPath); err == nil {
			return LoadFile(configPath)
		}
	}
	// Return default config if no file exists
	return DefaultConfig(), nil
}

// LoadFile loads configuration from an explicit path, choosing the format
// by extension
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := decode(configPath, data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func decode(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		_, err := toml.Decode(string(data), v)
		return err
	case ".json":
		return json.Unmarshal(data, v)
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

// Save writes configuration to path, choosing the format by extension
func Save(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	case ".toml":
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(config)
		data = []byte(b.String())
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	p := graphview.DefaultPhysicsConfig()
	return &Config{
		Physics: &PhysicsConfig{
			Repulsion:       p.Repulsion,
			Attraction:      p.Attraction,
			Centering:       p.Centering,
			Damping:         p.Damping,
			VelocityEpsilon: p.VelocityEpsilon,
			BaseAlpha:       p.BaseAlpha,
			CoolingFactor:   p.CoolingFactor,
			MinAlpha:        p.MinAlpha,
			EnergizeBoost:   p.EnergizeBoost,
		},
		View: &ViewConfig{
			Threshold: 0,
			Width:     1200,
			Height:    800,
			FPS:       60,
			Palette:   make(map[string]string),
		},
		Serve: &ServeConfig{
			Port:    7070,
			Host:    "localhost",
			Metrics: true,
			Watch:   true,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	// Physics zero values are resolved by the engine itself
	if config.Physics == nil {
		config.Physics = defaults.Physics
	}

	// Apply view defaults
	if config.View == nil {
		config.View = defaults.View
	} else {
		if config.View.Width == 0 {
			config.View.Width = defaults.View.Width
		}
		if config.View.Height == 0 {
			config.View.Height = defaults.View.Height
		}
		if config.View.FPS == 0 {
			config.View.FPS = defaults.View.FPS
		}
		if config.View.Palette == nil {
			config.View.Palette = make(map[string]string)
		}
	}

	// Apply server defaults
	if config.Serve == nil {
		config.Serve = defaults.Serve
	} else {
		if config.Serve.Port == 0 {
			config.Serve.Port = defaults.Serve.Port
		}
		if config.Serve.Host == "" {
			config.Serve.Host = defaults.Serve.Host
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Physics.MinAlpha > 0 && c.Physics.BaseAlpha > 0 && c.Physics.MinAlpha > c.Physics.BaseAlpha {
		return fmt.Errorf("%w: minAlpha %.3f exceeds baseAlpha %.3f", ErrInvalid, c.Physics.MinAlpha, c.Physics.BaseAlpha)
	}
	for key := range c.View.Palette {
		if !paletteKeys[key] {
			return fmt.Errorf("%w: unknown palette color %q", ErrInvalid, key)
		}
	}
	return nil
}

var paletteKeys = map[string]bool{
	"background": true, "node": true, "hovered": true, "selected": true,
	"match": true, "outline": true, "connection": true, "surprising": true, "label": true,
}

// EnginePhysics converts the physics section for graphview
func (c *Config) EnginePhysics() graphview.PhysicsConfig {
	p := c.Physics
	if p == nil {
		return graphview.PhysicsConfig{}
	}
	return graphview.PhysicsConfig{
		Repulsion:       p.Repulsion,
		Attraction:      p.Attraction,
		Centering:       p.Centering,
		Damping:         p.Damping,
		VelocityEpsilon: p.VelocityEpsilon,
		BaseAlpha:       p.BaseAlpha,
		CoolingFactor:   p.CoolingFactor,
		MinAlpha:        p.MinAlpha,
		EnergizeBoost:   p.EnergizeBoost,
	}
}

// Palette converts the palette overrides for graphview
func (c *Config) Palette() graphview.Palette {
	var p graphview.Palette
	if c.View == nil {
		return p
	}
	pal := c.View.Palette
	p.Background = pal["background"]
	p.Node = pal["node"]
	p.Hovered = pal["hovered"]
	p.Selected = pal["selected"]
	p.Match = pal["match"]
	p.Outline = pal["outline"]
	p.Connection = pal["connection"]
	p.Surprising = pal["surprising"]
	p.Label = pal["label"]
	return p
}
