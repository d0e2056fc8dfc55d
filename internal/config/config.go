// Package config loads busarchive settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. The TOML config file, by default $XDG_CONFIG_HOME/busarchive/config.toml
//  3. A .env file in the working directory (joho/godotenv format)
//  4. BUSARCHIVE_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example config.toml:
//
//	log_level = "debug"
//	metrics_file = "/var/lib/node_exporter/busarchive.prom"
//
//	[store]
//	backend = "redis"
//	ttl = "72h"
//
//	[store.redis]
//	addr = "localhost:6379"
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/store"
)

const appName = "busarchive"

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config holds all settings.
type Config struct {
	LogLevel    string      `toml:"log_level"`
	MetricsFile string      `toml:"metrics_file"`
	Store       StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the archive store.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     string      `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in settings: info logging and a file store in
// the XDG data directory without expiry.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     dataDir(),
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "archives",
			},
		},
	}
}

// Options controls where [Load] looks.
type Options struct {
	// Path is the config file. Empty uses [DefaultPath], which may be absent.
	// An explicit path must exist.
	Path string

	// EnvFile is the dotenv file. Empty uses ".env", which may be absent.
	EnvFile string

	// LookupEnv reads the process environment. Nil uses os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from defaults, the config file, the
// dotenv file and the environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path, required := opts.Path, true
	if path == "" {
		path, required = DefaultPath(), false
	}
	if err := cfg.decodeFile(path, required); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, aerrors.Wrap(aerrors.ErrCodeInvalidInput, err, "read %s", envFile)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return aerrors.Wrap(aerrors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil
	}
	if err != nil {
		return aerrors.Wrap(aerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return aerrors.New(aerrors.ErrCodeInvalidInput, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	strs := map[string]*string{
		"BUSARCHIVE_LOG_LEVEL":        &c.LogLevel,
		"BUSARCHIVE_METRICS_FILE":     &c.MetricsFile,
		"BUSARCHIVE_STORE_BACKEND":    &c.Store.Backend,
		"BUSARCHIVE_STORE_DIR":        &c.Store.Dir,
		"BUSARCHIVE_STORE_TTL":        &c.Store.TTL,
		"BUSARCHIVE_REDIS_ADDR":       &c.Store.Redis.Addr,
		"BUSARCHIVE_REDIS_PASSWORD":   &c.Store.Redis.Password,
		"BUSARCHIVE_MONGO_URI":        &c.Store.Mongo.URI,
		"BUSARCHIVE_MONGO_DATABASE":   &c.Store.Mongo.Database,
		"BUSARCHIVE_MONGO_COLLECTION": &c.Store.Mongo.Collection,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := env("BUSARCHIVE_REDIS_DB"); ok {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || db < 0 {
			return aerrors.New(aerrors.ErrCodeInvalidInput, "invalid BUSARCHIVE_REDIS_DB: %q", v)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return aerrors.New(aerrors.ErrCodeInvalidInput, "invalid log level %q", c.LogLevel)
	}
	switch c.Store.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return aerrors.New(aerrors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.Store.TTLDuration(); err != nil {
		return err
	}
	return nil
}

// TTLDuration parses the store TTL. An empty TTL means no expiry.
func (s StoreConfig) TTLDuration() (time.Duration, error) {
	if s.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.TTL)
	if err != nil || d < 0 {
		return 0, aerrors.New(aerrors.ErrCodeInvalidInput, "invalid store ttl %q", s.TTL)
	}
	return d, nil
}

// OpenStore connects to the configured backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendRedis:
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMongo:
		s, err := store.NewMongoStore(ctx, store.MongoOptions{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendNone:
		return store.NewNullStore(), nil
	default:
		s, err := store.NewFileStore(c.Store.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard
// (~/.config/busarchive/config.toml).
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// dataDir returns the store directory using the XDG standard
// (~/.local/share/busarchive/archives).
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "archives")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName, "archives")
	}
	return filepath.Join(home, ".local", "share", appName, "archives")
}
