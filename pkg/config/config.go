// Package config loads Journeyline settings from a TOML file.
//
// A configuration file has four optional sections:
//
//	[layout]   # geometry, see position.Config
//	node_width = 220
//	orientation = "vertical"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// Keys left out keep their defaults. See [Resolve] for where the file is
// looked up.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/journeyline/journeyline/pkg/cache"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/store"
)

const appName = "journeyline"

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "JOURNEYLINE_CONFIG"

// ErrInvalid is returned by [Config.Validate].
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	Layout position.Config `toml:"layout"`
	Cache  CacheConfig     `toml:"cache"`
	Store  StoreConfig     `toml:"store"`
	Server ServerConfig    `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
	// Unknown lists keys present in the file that no field consumed.
	Unknown []string `toml:"-"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"`
	TTL           time.Duration `toml:"ttl"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	SeedFile   string `toml:"seed_file"`
	SeedUser   string `toml:"seed_user"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: position.DefaultConfig(),
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Prefix:  appName + ":",
			TTL:     cache.TTLLayout,
		},
		Store: StoreConfig{
			Backend:    store.BackendMemory,
			Database:   store.DefaultMongoDatabase,
			Collection: store.DefaultMongoCollection,
			SeedUser:   "default",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Resolve returns the config file to read. An explicit path wins, then
// $JOURNEYLINE_CONFIG, then the XDG default location. explicit reports
// whether the path came from the caller or the environment, in which case a
// missing file is an error.
func Resolve(flagPath string) (path string, explicit bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	return defaultPath(), false
}

func defaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load resolves and reads the configuration. Fields absent from the file
// keep their defaults. The result is validated.
func Load(flagPath string) (Config, error) {
	path, explicit := Resolve(flagPath)

	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	for _, k := range md.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, k.String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: cache.redis_addr is required for the redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown cache.backend %q", ErrInvalid, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}

	switch c.Store.Backend {
	case "", store.BackendMemory:
	case store.BackendMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("%w: store.mongo_uri is required for the mongo backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open]. defaultDir is
// used when no directory is configured.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		},
	}
}

// StoreOptions converts the store section for [store.Open].
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Store.Backend,
		Mongo: store.MongoOptions{
			URI:        c.Store.MongoURI,
			Database:   c.Store.Database,
			Collection: c.Store.Collection,
		},
		SeedFile: c.Store.SeedFile,
		SeedUser: c.Store.SeedUser,
	}
}
