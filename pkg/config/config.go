// Package config loads the callout configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/callout/config.toml
// (~/.config/callout/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error; every field has a default. Command-line flags
// override the file.
//
//	[render]
//	formats = ["svg", "png"]
//	steps = 20
//
//	[cache]
//	dir = "/var/cache/callout"
//
//	[server]
//	addr = ":8080"
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "callout"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/callout/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "callout"

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultMongoDatabase   = "callout"
	DefaultRedisPrefix     = "callout:"
	DefaultBrowseDuration  = 2 * time.Second
	DefaultPollingInterval = 5 * time.Millisecond
)

// Config is the full configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Browse BrowseConfig `toml:"browse"`
}

// RenderConfig holds defaults for `callout render`.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Steps    int      `toml:"steps"`
	Measurer string   `toml:"measurer"`
	Scale    float64  `toml:"scale"`
	Live     bool     `toml:"live"`
}

// CacheConfig locates the local artifact cache.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// ServerConfig configures `callout serve`. Empty Redis and Mongo settings
// select in-process backends.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	SceneDir      string `toml:"scene_dir"`
}

// BrowseConfig configures `callout browse`.
type BrowseConfig struct {
	Duration Duration `toml:"duration"`
	Interval Duration `toml:"interval"`
	ExecPath string   `toml:"exec_path"`
}

// Duration is a time.Duration written as a string ("2s", "5ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", string(b))
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Render: RenderConfig{Formats: []string{"svg"}},
		Server: ServerConfig{
			Addr:          DefaultAddr,
			RedisPrefix:   DefaultRedisPrefix,
			MongoDatabase: DefaultMongoDatabase,
		},
		Browse: BrowseConfig{
			Duration: Duration{DefaultBrowseDuration},
			Interval: Duration{DefaultPollingInterval},
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path selects
// Path(); a missing default file yields the defaults, a missing explicit
// file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a configuration over the defaults. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Render.Steps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.steps must not be negative")
	}
	if c.Render.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.scale must not be negative")
	}
	if c.Browse.Interval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "browse.interval must be positive")
	}
	if c.Browse.Duration.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "browse.duration must not be negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
