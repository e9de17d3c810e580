package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"browser-env-patch/patch"
)

// ProfileConfig tunes the values the patched context reports. Defaults are
// a stock desktop Chrome on Intel graphics.
type ProfileConfig struct {
	Languages           []string `mapstructure:"languages"`
	HardwareConcurrency int      `mapstructure:"hardware_concurrency"`
	DeviceMemory        int      `mapstructure:"device_memory"`
	SpoofWebGL          bool     `mapstructure:"spoof_webgl"`
	WebGLVendor         string   `mapstructure:"webgl_vendor"`
	WebGLRenderer       string   `mapstructure:"webgl_renderer"`
}

// BrowserConfig only matters for the live check; the library itself never
// launches anything.
type BrowserConfig struct {
	Headless  bool   `mapstructure:"headless"`
	Bin       string `mapstructure:"bin"`
	UserAgent string `mapstructure:"user_agent"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Profile ProfileConfig `mapstructure:"profile"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load reads the config file at path, layering it over defaults with env
// overrides. A missing file is fine: the patcher needs no input and the
// defaults are the full fixed profile. A file that exists but cannot be
// parsed or validated is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := patch.Default()

	v.SetDefault("profile.languages", def.Languages)
	v.SetDefault("profile.hardware_concurrency", def.HardwareConcurrency)
	v.SetDefault("profile.device_memory", def.DeviceMemory)
	v.SetDefault("profile.spoof_webgl", def.SpoofWebGL)
	v.SetDefault("profile.webgl_vendor", def.WebGLVendor)
	v.SetDefault("profile.webgl_renderer", def.WebGLRenderer)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36")
	v.SetDefault("browser.width", 1366)
	v.SetDefault("browser.height", 768)

	v.SetDefault("logging.level", "info")
}

// PatchProfile converts the profile section into the patch input.
func (c *Config) PatchProfile() patch.Profile {
	return patch.Profile{
		Languages:           c.Profile.Languages,
		HardwareConcurrency: c.Profile.HardwareConcurrency,
		DeviceMemory:        c.Profile.DeviceMemory,
		SpoofWebGL:          c.Profile.SpoofWebGL,
		WebGLVendor:         c.Profile.WebGLVendor,
		WebGLRenderer:       c.Profile.WebGLRenderer,
	}
}

func (c *Config) validate() error {
	if err := c.PatchProfile().Validate(); err != nil {
		return err
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser.width and browser.height must be positive")
	}
	if c.Browser.UserAgent == "" {
		return fmt.Errorf("browser.user_agent must not be empty")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)

	return nil
}
