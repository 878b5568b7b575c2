package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isqad/livelook-grid/internal/core"
	"github.com/isqad/livelook-grid/internal/engine"
	"github.com/isqad/livelook-grid/internal/layout"
	"github.com/spf13/viper"
)

const envPrefix = "LIVELOOK"

type BusBackend string

const (
	RedisBackend BusBackend = "redis"
	NatsBackend  BusBackend = "nats"
)

var (
	errUnknownBusBackend = errors.New("unknown bus backend")
	errWindowSize        = errors.New("layout.window_size must be positive")
	errChrome            = errors.New("layout chrome can not be negative")
	errDebounce          = errors.New("layout.resize_debounce can not be negative")
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Address  string         `mapstructure:"address"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	Bus      BusConfig      `mapstructure:"bus"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Nats     NatsConfig     `mapstructure:"nats"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type ChromeConfig struct {
	FullScreen float64 `mapstructure:"full_screen"`
	Normal     float64 `mapstructure:"normal"`
	SideRail   float64 `mapstructure:"side_rail"`
}

type LayoutConfig struct {
	ChromeSizes       ChromeConfig  `mapstructure:"chrome"`
	WindowSize        int           `mapstructure:"window_size"`
	RowGap            float64       `mapstructure:"row_gap"`
	SpeakerBorder     float64       `mapstructure:"speaker_border"`
	GeometryCacheSize int           `mapstructure:"geometry_cache_size"`
	ResizeDebounce    time.Duration `mapstructure:"resize_debounce"`
}

type BusConfig struct {
	Backend BusBackend `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	DB       int           `mapstructure:"db"`
	StateTTL time.Duration `mapstructure:"state_ttl"`
}

type NatsConfig struct {
	Addr string `mapstructure:"addr"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(core.DevelopmentEnv))
	v.SetDefault("address", ":80")

	v.SetDefault("layout.chrome.full_screen", layout.DefaultChrome.FullScreen)
	v.SetDefault("layout.chrome.normal", layout.DefaultChrome.Normal)
	v.SetDefault("layout.chrome.side_rail", layout.DefaultChrome.SideRail)
	v.SetDefault("layout.window_size", layout.DefaultWindowSize)
	v.SetDefault("layout.row_gap", layout.DefaultRowGap)
	v.SetDefault("layout.speaker_border", layout.DefaultSpeakerBorder)
	v.SetDefault("layout.geometry_cache_size", 1024)
	v.SetDefault("layout.resize_debounce", 100*time.Millisecond)

	v.SetDefault("bus.backend", string(RedisBackend))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.state_ttl", 24*time.Hour)
	v.SetDefault("nats.addr", "nats://localhost:4222")
	v.SetDefault("postgres.dsn", "")
}

// New returns a viper instance with the defaults and the LIVELOOK_ environment
// bound, e.g. LIVELOOK_REDIS_ADDR overrides redis.addr
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file on top of the defaults
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) Validate() error {
	if _, err := core.ParseEnvironment(c.Env); err != nil {
		return err
	}

	switch c.Bus.Backend {
	case RedisBackend, NatsBackend:
	default:
		return errUnknownBusBackend
	}

	if c.Layout.WindowSize <= 0 {
		return errWindowSize
	}
	ch := c.Layout.ChromeSizes
	if ch.FullScreen < 0 || ch.Normal < 0 || ch.SideRail < 0 {
		return errChrome
	}
	if c.Layout.ResizeDebounce < 0 {
		return errDebounce
	}

	return nil
}

func (c *Config) Environment() core.Environment {
	env, _ := core.ParseEnvironment(c.Env)
	return env
}

func (c LayoutConfig) Chrome() layout.Chrome {
	return layout.Chrome{
		FullScreen: c.ChromeSizes.FullScreen,
		Normal:     c.ChromeSizes.Normal,
		SideRail:   c.ChromeSizes.SideRail,
	}
}

// Engine builds the settings of the room engines
func (c LayoutConfig) Engine() engine.Config {
	return engine.Config{
		Chrome:            c.Chrome(),
		WindowSize:        c.WindowSize,
		RowGap:            c.RowGap,
		SpeakerBorder:     c.SpeakerBorder,
		GeometryCacheSize: c.GeometryCacheSize,
	}
}
