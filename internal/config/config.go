// Package config loads settings shared by the meme client hosts.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mumugogoing/meme-bot/logging"
)

// EnvPrefix prefixes every environment override, e.g. MEME_BACKEND_URL.
const EnvPrefix = "MEME"

// ServerConfig configures the UI server listener and the files it serves.
type ServerConfig struct {
	Listen    string `mapstructure:"listen"`
	Assets    string `mapstructure:"assets"`
	Templates string `mapstructure:"templates"`
}

// BackendConfig points at the template catalog and rendering service.
type BackendConfig struct {
	URL            string        `mapstructure:"url"`
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the full host configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("server.assets", "ui")
	v.SetDefault("server.templates", "ui/templates")
	v.SetDefault("backend.url", "http://localhost:8080")
	v.SetDefault("backend.catalog_timeout", 8*time.Second)
	v.SetDefault("backend.render_timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "data/logs")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_files", 3)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads configuration from path (any format viper understands), a .env
// file in the working directory and MEME_* environment variables, in
// increasing priority. An empty path skips the file; a missing .env is fine.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	normalise(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func normalise(cfg *Config) {
	cfg.Server.Listen = strings.TrimSpace(cfg.Server.Listen)
	cfg.Backend.URL = strings.TrimSuffix(strings.TrimSpace(cfg.Backend.URL), "/")
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		cfg.Metrics.Path = "/" + cfg.Metrics.Path
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q must be an absolute URL", c.Backend.URL)
	}
	if c.Backend.CatalogTimeout <= 0 || c.Backend.RenderTimeout <= 0 {
		return errors.New("backend timeouts must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.MaxSizeMB <= 0 || c.Log.MaxFiles <= 0 {
		return errors.New("log.max_size_mb and log.max_files must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New("metrics.path is required when metrics are enabled")
	}
	return nil
}
