package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. PROXYBID_REDIS_ADDR sets redis.addr.
const EnvPrefix = "PROXYBID_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Storage   StorageConfig   `koanf:"storage"`
	NATS      NATSConfig      `koanf:"nats"`
	Redis     RedisConfig     `koanf:"redis"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Auction   AuctionConfig   `koanf:"auction"`
	Auth      AuthConfig      `koanf:"auth"`
}

type ServerConfig struct {
	Port     int           `koanf:"port" validate:"min=1,max=65535"`
	Shutdown time.Duration `koanf:"shutdown" validate:"min=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	// File enables rotated file output in addition to stdout
	File string `koanf:"file"`
}

type StorageConfig struct {
	// Path of the SQLite bid journal; empty keeps everything in memory
	Path string `koanf:"path"`
}

type NATSConfig struct {
	URL string `koanf:"url" validate:"omitempty,url"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr" validate:"omitempty,hostname_port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"min=0"`
	TTL      time.Duration `koanf:"ttl" validate:"min=0"`
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" validate:"min=0"`
	Burst int     `koanf:"burst" validate:"min=0"`
}

type AuctionConfig struct {
	// Increment used when a create request leaves min_increment unset
	Increment int64 `koanf:"increment" validate:"gt=0"`
}

type AuthConfig struct {
	// Secret signs bidder tokens; empty disables the owner view of bids
	Secret string `koanf:"secret" validate:"omitempty,min=32"`
	Issuer string `koanf:"issuer"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() Config {
	return Config{
		Server:    ServerConfig{Port: 8080, Shutdown: 10 * time.Second},
		Log:       LogConfig{Level: "info"},
		Storage:   StorageConfig{Path: "data/proxybid.db"},
		Redis:     RedisConfig{TTL: 24 * time.Hour},
		RateLimit: RateLimitConfig{RPS: 50, Burst: 100},
		Auction:   AuctionConfig{Increment: 100},
		Auth:      AuthConfig{Issuer: "proxy-bidding"},
	}
}

// Load layers struct defaults, the optional YAML file at path and PROXYBID_ environment
// variables, then validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}
