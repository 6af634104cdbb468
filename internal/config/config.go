// Package config loads boxp settings from a TOML file, a .env file and the
// environment, in increasing order of precedence.
//
// The file lives at $XDG_CONFIG_HOME/boxp/config.toml (default
// ~/.config/boxp/config.toml). A missing file is not an error; every
// setting has a default.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

const appName = "boxp"

// Environment variables that override the file.
const (
	EnvServerAddr     = "BOXP_SERVER_ADDR"
	EnvAllowedOrigins = "BOXP_ALLOWED_ORIGINS"
	EnvLayersMode     = "BOXP_LAYERS_MODE"
	EnvPaletteSeed    = "BOXP_PALETTE_SEED"
)

// Config is the full set of settings.
type Config struct {
	Container ContainerConfig `toml:"container"`
	Layers    LayersConfig    `toml:"layers"`
	Palette   PaletteConfig   `toml:"palette"`
	Server    ServerConfig    `toml:"server"`
}

// ContainerConfig is the container new tasks start with.
type ContainerConfig struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	Z float64 `toml:"z"`
}

// LayersConfig selects how boxes are grouped into layers.
type LayersConfig struct {
	Mode      string `toml:"mode"` // "single" or "multi"
	KeepEmpty bool   `toml:"keep_empty"`
	MinLayers int    `toml:"min_layers"`
}

// PaletteConfig seeds box colors. Seed 0 picks a new seed on every run.
type PaletteConfig struct {
	Seed uint64 `toml:"seed"`
}

// ServerConfig configures "boxp serve".
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Rate           float64  `toml:"rate"`  // requests per second per client, 0 disables
	Burst          int      `toml:"burst"` // token bucket size
	SessionTTL     string   `toml:"session_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	c := geom.DefaultContainer()
	return Config{
		Container: ContainerConfig{X: c.X, Y: c.Y, Z: c.Z},
		Layers:    LayersConfig{Mode: stratify.ModeSingleLevel.String()},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			Rate:           20,
			Burst:          40,
			SessionTTL:     "24h",
		},
	}
}

// Path returns the config file location using the XDG standard.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path on top of the defaults, then applies .env and
// environment overrides, and validates the result. An empty path uses Path().
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if err := cfg.readFile(path); err != nil {
		return cfg, err
	}

	// .env values never override variables already set in the process.
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read .env")
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvAllowedOrigins); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	if v, ok := lookup(EnvLayersMode); ok && v != "" {
		c.Layers.Mode = v
	}
	if v, ok := lookup(EnvPaletteSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvPaletteSeed)
		}
		c.Palette.Seed = seed
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if err := c.ContainerValue().Validate(); err != nil {
		return err
	}
	if _, err := stratify.ParseMode(c.Layers.Mode); err != nil {
		return err
	}
	if c.Layers.MinLayers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layers.min_layers must not be negative")
	}
	if c.Server.Rate < 0 || c.Server.Burst < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.rate and server.burst must not be negative")
	}
	if c.Server.Rate > 0 && c.Server.Burst == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.burst must be positive when server.rate is set")
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	return nil
}

// ContainerValue returns the configured container.
func (c Config) ContainerValue() geom.Container {
	return geom.Container{X: c.Container.X, Y: c.Container.Y, Z: c.Container.Z}
}

// LayerOptions returns the configured stratify options.
func (c Config) LayerOptions() (stratify.Options, error) {
	mode, err := stratify.ParseMode(c.Layers.Mode)
	if err != nil {
		return stratify.Options{}, err
	}
	return stratify.Options{Mode: mode, KeepEmpty: c.Layers.KeepEmpty, MinLayers: c.Layers.MinLayers}, nil
}

// Seed returns the palette seed, picking a time-based one when unset.
func (c Config) Seed() uint64 {
	if c.Palette.Seed != 0 {
		return c.Palette.Seed
	}
	return uint64(time.Now().UnixNano())
}

// SessionTTL returns how long an idle server session is kept. Zero keeps
// sessions forever.
func (c Config) SessionTTL() (time.Duration, error) {
	if c.Server.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "server.session_ttl")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "server.session_ttl must not be negative")
	}
	return d, nil
}

// Write encodes c as TOML to path, creating parent directories.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
