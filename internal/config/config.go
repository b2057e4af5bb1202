package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"gopkg.in/yaml.v3"
)

type Identity struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Application      Identity      `yaml:"application"`
	Engine           Identity      `yaml:"engine"`
	APIVersion       string        `yaml:"api_version"`
	Window           WindowConfig  `yaml:"window"`
	Validation       bool          `yaml:"validation"`
	Logging          LoggingConfig `yaml:"logging"`
	FrameLogInterval int           `yaml:"frame_log_interval"`
}

var apiVersions = map[string]common.APIVersion{
	"1.0": common.Vulkan1_0,
	"1.1": common.Vulkan1_1,
	"1.2": common.Vulkan1_2,
}

func Default() *Config {
	return &Config{
		Application: Identity{Name: "01_InitInstance", Version: "1.0.0"},
		Engine:      Identity{Name: "Vulkan.hpp", Version: "1.0.0"},
		APIVersion:  "1.1",
		Window: WindowConfig{
			Title:  "Vulkan Engine",
			Width:  800,
			Height: 600,
		},
		Validation: true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		FrameLogInterval: 120,
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, ok := apiVersions[c.APIVersion]; !ok {
		return errors.Newf("unsupported api_version %q", c.APIVersion)
	}
	if c.FrameLogInterval < 0 {
		return errors.Newf("frame_log_interval %d must not be negative", c.FrameLogInterval)
	}
	if _, err := ParseVersion(c.Application.Version); err != nil {
		return errors.Wrap(err, "application.version")
	}
	if _, err := ParseVersion(c.Engine.Version); err != nil {
		return errors.Wrap(err, "engine.version")
	}
	return nil
}

// API is the API version constant for APIVersion. Call Validate first.
func (c *Config) API() common.APIVersion {
	return apiVersions[c.APIVersion]
}

// ParseVersion parses "major.minor.patch"; a bare "major" or "major.minor" is also accepted.
func ParseVersion(version string) (common.Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		return 0, errors.Newf("version %q has more than three components", version)
	}

	var components [3]uint32
	for i, part := range parts {
		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(err, "version %q is not major.minor.patch", version)
		}
		components[i] = uint32(value)
	}
	return common.CreateVersion(components[0], components[1], components[2]), nil
}
