package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvServerURL overrides server.url when set
const EnvServerURL = "MATRIXPUSH_URL"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
	Limits  LimitsConfig  `yaml:"limits"`
	Raster  RasterConfig  `yaml:"raster"`
	Text    TextConfig    `yaml:"text"`
	Watch   WatchConfig   `yaml:"watch"`
}

type ServerConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// DisplayConfig is only consulted when the server cannot report its size
type DisplayConfig struct {
	FallbackWidth  int `yaml:"fallback_width"`
	FallbackHeight int `yaml:"fallback_height"`
}

type LimitsConfig struct {
	MaxImages  int `yaml:"max_images"`
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

type RasterConfig struct {
	Backend string `yaml:"backend"`
	Kernel  string `yaml:"kernel"`
}

type TextConfig struct {
	DefaultColor string `yaml:"default_color"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not
// exist. The server URL can be overridden from the environment.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if u := os.Getenv(EnvServerURL); u != "" {
		cfg.Server.URL = u
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Server.TimeoutMs < 0 {
		return fmt.Errorf("server.timeout_ms must not be negative")
	}
	if c.Display.FallbackWidth < 0 || c.Display.FallbackHeight < 0 {
		return fmt.Errorf("display fallback size must be positive")
	}
	if c.Limits.MaxImages < 1 {
		return fmt.Errorf("limits.max_images must be at least 1")
	}
	if c.Limits.MinDelayMs > c.Limits.MaxDelayMs {
		return fmt.Errorf("limits.min_delay_ms (%d) exceeds limits.max_delay_ms (%d)",
			c.Limits.MinDelayMs, c.Limits.MaxDelayMs)
	}
	if !hexColor.MatchString(c.Text.DefaultColor) {
		return fmt.Errorf("text.default_color must be #RRGGBB, got %q", c.Text.DefaultColor)
	}

	return nil
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = "http://matrix.local"
	}
	if c.Display.FallbackWidth == 0 {
		c.Display.FallbackWidth = 64
	}
	if c.Display.FallbackHeight == 0 {
		c.Display.FallbackHeight = 32
	}
	if c.Limits.MaxImages == 0 {
		c.Limits.MaxImages = 3
	}
	if c.Limits.MinDelayMs == 0 {
		c.Limits.MinDelayMs = 200
	}
	if c.Limits.MaxDelayMs == 0 {
		c.Limits.MaxDelayMs = 2000
	}
	if c.Raster.Backend == "" {
		c.Raster.Backend = "xdraw"
	}
	if c.Raster.Kernel == "" {
		c.Raster.Kernel = "linear"
	}
	if c.Text.DefaultColor == "" {
		c.Text.DefaultColor = "#ff0000"
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = 250
	}
}

// UpdateServerURL updates server.url in a config file while preserving the
// rest of the file structure and comments
func UpdateServerURL(path, url string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	urlRegex := regexp.MustCompile(`(?m)^(\s*url:\s*).*$`)
	if !urlRegex.MatchString(content) {
		return fmt.Errorf("no server url entry in %s", path)
	}
	content = urlRegex.ReplaceAllStringFunc(content, func(line string) string {
		m := urlRegex.FindStringSubmatch(line)
		return m[1] + fmt.Sprintf("%q", url)
	})

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig creates a new config file with default values and the specified server
func CreateDefaultConfig(path, url string) error {
	content := fmt.Sprintf(`# matrixpush configuration

server:
  url: %q
  timeout_ms: 0          # 0 waits forever

# Used when the display does not answer GET /size
display:
  fallback_width: 64
  fallback_height: 32

limits:
  max_images: 3
  min_delay_ms: 200
  max_delay_ms: 2000

raster:
  backend: xdraw         # xdraw, gift, nfnt, bild, imaging
  kernel: linear         # nearest, linear, cubic, lanczos

text:
  default_color: "#ff0000"

watch:
  debounce_ms: 250
`, url)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
