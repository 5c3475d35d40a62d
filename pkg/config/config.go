// Package config loads datamapper settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/datamapper/config.toml
// (~/.config/datamapper/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error: every setting has a default.
//
//	[store]
//	backend = "redis"
//
//	[store.redis]
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
//	[render]
//	format = "svg"
//	detailed = true
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/datamapper/pkg/cache"
	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/pipeline"
	"github.com/matzehuels/datamapper/pkg/store"
)

const appName = "datamapper"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the root of the TOML document.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
}

// StoreConfig selects the snapshot store.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures a redis connection.
type RedisConfig struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

// MongoConfig configures a mongo connection.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// RenderConfig holds rendering defaults for the CLI and server.
type RenderConfig struct {
	Format   string `toml:"format"`
	Detailed bool   `toml:"detailed"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	Redis   RedisConfig   `toml:"redis"`
	TTL     time.Duration `toml:"ttl"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Redis.URL == "" {
		c.Store.Redis.URL = "redis://localhost:6379/0"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = store.DefaultRedisPrefix
	}
	if c.Store.Mongo.URI == "" {
		c.Store.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = store.DefaultMongoDatabase
	}
	if c.Store.Mongo.Collection == "" {
		c.Store.Mongo.Collection = store.DefaultMongoCollection
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Render.Format == "" {
		c.Render.Format = pipeline.FormatSVG
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Redis.URL == "" {
		c.Cache.Redis.URL = c.Store.Redis.URL
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = appName + ":cache:"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = cache.ArtifactTTL
	}
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendRedis, store.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend: unknown backend %q", c.Store.Backend)
	}
	if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.format")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	return nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path, or at [DefaultPath] when path is empty.
// A missing default file yields the defaults; a missing explicit file is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML document, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// StoreOptions converts the store section for [store.Open].
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:         c.Store.Backend,
		Dir:             c.Store.Dir,
		RedisURL:        c.Store.Redis.URL,
		RedisPrefix:     c.Store.Redis.Prefix,
		MongoURI:        c.Store.Mongo.URI,
		MongoDatabase:   c.Store.Mongo.Database,
		MongoCollection: c.Store.Mongo.Collection,
	}
}

// OpenCache creates the configured artifact cache.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, c.Cache.Redis.URL, c.Cache.Redis.Prefix)
	}
	dir := c.Cache.Dir
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// DefaultCacheDir returns the XDG cache directory (~/.cache/datamapper).
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}
