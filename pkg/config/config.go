// Package config loads bnbsearch settings from TOML files.
//
// A file may set any subset of keys; the rest keep their [Defaults]:
//
//	[solver]
//	solver = "lazy"          # lazy | eager
//	epsilon = 1e-5
//	timeout_seconds = 30
//	node_limit = 0
//	child_order = "lp-guided" # lp-guided | fixed
//
//	[orderer]
//	kind = "plunging-bfs"
//	min_plunge_depth_prop = 0.1
//	max_plunge_depth_prop = 0.5
//
//	[cache]
//	backend = "redis"        # file | redis | none
//	redis_addr = "localhost:6379"
//	ttl = "720h"
//
//	[history]
//	backend = "mongo"        # file | mongo | none
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// History backends.
const (
	HistoryFile  = "file"
	HistoryMongo = "mongo"
	HistoryNone  = "none"
)

// Config is the root of a configuration file.
type Config struct {
	Solver  Solver  `toml:"solver"`
	Orderer Orderer `toml:"orderer"`
	Cache   Cache   `toml:"cache"`
	History History `toml:"history"`
}

// Solver holds the search settings.
type Solver struct {
	Solver         string  `toml:"solver"`
	Epsilon        float64 `toml:"epsilon"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	NodeLimit      int     `toml:"node_limit"`
	ChildOrder     string  `toml:"child_order"`
	MemoSize       int     `toml:"memo_size"`
}

// Orderer selects and tunes the node orderer.
type Orderer struct {
	Kind               string  `toml:"kind"`
	MaxDepth           int     `toml:"max_depth"`
	MinPlungeDepthProp float64 `toml:"min_plunge_depth_prop"`
	MaxPlungeDepthProp float64 `toml:"max_plunge_depth_prop"`
	Seed               int64   `toml:"seed"`
}

// Cache selects the result cache.
type Cache struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
	// TTL is a Go duration string such as "24h".
	TTL string `toml:"ttl"`
}

// History selects where finished runs are recorded.
type History struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Defaults mirrors bnb.DefaultConfig with a file cache and file history.
func Defaults() *Config {
	d := bnb.DefaultConfig()
	return &Config{
		Solver: Solver{
			Solver:     string(d.Solver),
			Epsilon:    d.Epsilon,
			ChildOrder: string(d.ChildOrder),
		},
		Orderer: Orderer{
			Kind:               string(d.Orderer.Kind),
			MaxDepth:           d.Orderer.MaxDepth,
			MinPlungeDepthProp: d.Orderer.MinPlungeDepthProp,
			MaxPlungeDepthProp: d.Orderer.MaxPlungeDepthProp,
		},
		Cache: Cache{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       "720h",
		},
		History: History{
			Backend:  HistoryFile,
			Database: "bnbsearch",
		},
	}
}

// Load reads path on top of Defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML data on top of Defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.ToSolverConfig(); err != nil {
		return err
	}
	if c.Solver.MemoSize < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "memo_size must not be negative")
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "redis cache needs redis_addr")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	switch c.History.Backend {
	case HistoryFile, HistoryNone:
	case HistoryMongo:
		if c.History.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "mongo history needs mongo_uri")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown history backend %q", c.History.Backend)
	}
	return nil
}

// CacheTTL parses the cache entry lifetime. An empty TTL is zero.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid cache ttl")
	}
	if d < 0 {
		return 0, errs.New(errs.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return d, nil
}

// ToSolverConfig converts the solver and orderer sections.
func (c *Config) ToSolverConfig() (bnb.Config, error) {
	if err := errs.ValidateNonNegative("timeout_seconds", c.Solver.TimeoutSeconds); err != nil {
		return bnb.Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid solver timeout")
	}
	kind, err := bnb.ParseOrdererKind(c.Orderer.Kind)
	if err != nil {
		return bnb.Config{}, err
	}
	cfg := bnb.Config{
		Solver:     bnb.SolverKind(c.Solver.Solver),
		Epsilon:    c.Solver.Epsilon,
		Timeout:    time.Duration(c.Solver.TimeoutSeconds * float64(time.Second)),
		NodeLimit:  c.Solver.NodeLimit,
		ChildOrder: bnb.ChildOrderKind(c.Solver.ChildOrder),
		Orderer: bnb.OrdererConfig{
			Kind:               kind,
			MaxDepth:           c.Orderer.MaxDepth,
			MinPlungeDepthProp: c.Orderer.MinPlungeDepthProp,
			MaxPlungeDepthProp: c.Orderer.MaxPlungeDepthProp,
			Seed:               c.Orderer.Seed,
		},
	}
	if err := cfg.Validate(); err != nil {
		return bnb.Config{}, err
	}
	return cfg, nil
}
